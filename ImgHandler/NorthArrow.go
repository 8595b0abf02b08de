package ImgHandler

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const northArrowSize = 120

var (
	fontOnce sync.Once
	ttfFont  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		ttfFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return ttfFont, fontErr
}

func drawText(img *image.RGBA, x, y int, text string, fontSize float64, fontColor color.Color, f *truetype.Font) error {
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(fontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(fontColor))
	c.SetHinting(font.HintingFull)
	_, err := c.DrawString(text, freetype.Pt(x, y))
	return err
}

func textWidth(text string, fontSize float64, f *truetype.Font) int {
	face := truetype.NewFace(f, &truetype.Options{Size: fontSize, DPI: 72})
	defer face.Close()
	width := 0
	for _, r := range text {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			width += int(fontSize)
			continue
		}
		width += adv.Round()
	}
	return width
}

// NorthArrow renders a square north arrow glyph: an "N" over a split arrowhead
// on a translucent white plate.
func NorthArrow() *image.RGBA {
	s := northArrowSize
	img := image.NewRGBA(image.Rect(0, 0, s, s))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA{255, 255, 255, 200}}, image.Point{}, draw.Src)

	tipX, tipY := s/2, s*2/5
	baseY := s - s/10
	halfW := s / 5
	for y := tipY; y <= baseY; y++ {
		span := halfW * (y - tipY) / (baseY - tipY)
		for x := tipX - span; x <= tipX+span; x++ {
			if x < tipX {
				img.Set(x, y, color.Black)
			} else if x == tipX+span || y == baseY {
				img.Set(x, y, color.Black)
			}
		}
	}

	f, err := loadFont()
	if err != nil {
		log.Printf("north arrow font: %v", err)
		return img
	}
	size := float64(s) / 3
	if err := drawText(img, tipX-textWidth("N", size, f)/2, tipY-s/20, "N", size, color.Black, f); err != nil {
		log.Printf("north arrow text: %v", err)
	}
	return img
}

// StampNorthArrow places the north arrow in the top-left corner of a snapshot.
func StampNorthArrow(img image.Image) *image.RGBA {
	b := img.Bounds()
	pad := b.Dx() / 50
	return EmbedInset(img, NorthArrow(), 0.06, pad, PositionTopLeft)
}
