package ImgHandler

import (
	"image"
	"image/draw"
)

// Position is where an inset sits on the base image.
type Position int

const (
	PositionTopLeft Position = iota
	PositionTopRight
	PositionBottomLeft
	PositionBottomRight
)

// EmbedInset draws inset over base. scale is the inset width as a fraction of
// the base width; padding is in pixels from the chosen corner.
func EmbedInset(base, inset image.Image, scale float64, padding int, position Position) *image.RGBA {
	bb := base.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bb.Dx(), bb.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, bb.Min, draw.Src)

	ib := inset.Bounds()
	w := int(float64(bb.Dx()) * scale)
	if w < 1 || ib.Dx() == 0 {
		return canvas
	}
	h := ib.Dy() * w / ib.Dx()
	if h < 1 {
		h = 1
	}
	scaled := resizeImage(inset, w, h)

	x, y := calculatePosition(bb.Dx(), bb.Dy(), w, h, padding, position)
	if x+w > bb.Dx() {
		x = bb.Dx() - w
	}
	if y+h > bb.Dy() {
		y = bb.Dy() - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	draw.Draw(canvas, image.Rect(x, y, x+w, y+h), scaled, image.Point{}, draw.Over)
	return canvas
}

func calculatePosition(baseW, baseH, w, h, padding int, position Position) (int, int) {
	switch position {
	case PositionTopLeft:
		return padding, padding
	case PositionTopRight:
		return baseW - w - padding, padding
	case PositionBottomLeft:
		return padding, baseH - h - padding
	default:
		return baseW - w - padding, baseH - h - padding
	}
}

// resizeImage uses nearest-neighbour sampling.
func resizeImage(img image.Image, newWidth, newHeight int) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xRatio := float64(b.Dx()) / float64(newWidth)
	yRatio := float64(b.Dy()) / float64(newHeight)
	for y := 0; y < newHeight; y++ {
		sy := int(float64(y) * yRatio)
		if sy >= b.Dy() {
			sy = b.Dy() - 1
		}
		for x := 0; x < newWidth; x++ {
			sx := int(float64(x) * xRatio)
			if sx >= b.Dx() {
				sx = b.Dx() - 1
			}
			out.Set(x, y, img.At(sx+b.Min.X, sy+b.Min.Y))
		}
	}
	return out
}
