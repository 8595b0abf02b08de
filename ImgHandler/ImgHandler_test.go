package ImgHandler

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecodeCapturePNGAndJPEG(t *testing.T) {
	var pngBuf, jpgBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, solid(40, 20, color.White)))
	require.NoError(t, jpeg.Encode(&jpgBuf, solid(40, 20, color.White), nil))

	img, format, err := DecodeCapture(pngBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 40, img.Bounds().Dx())

	_, format, err = DecodeCapture(jpgBuf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestDecodeCaptureDataURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(8, 8, color.Black)))
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	img, _, err := DecodeCapture([]byte(url))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestDecodeCaptureRejectsGarbage(t *testing.T) {
	_, _, err := DecodeCapture(nil)
	assert.ErrorIs(t, err, ErrEmptyCapture)
	_, _, err = DecodeCapture([]byte("not an image"))
	assert.Error(t, err)
	_, _, err = DecodeCapture([]byte("data:image/png,plain"))
	assert.Error(t, err)
}

func TestStampNorthArrowKeepsSizeAndMarksCorner(t *testing.T) {
	base := solid(500, 300, color.RGBA{0, 128, 0, 255})
	out := StampNorthArrow(base)
	assert.Equal(t, base.Bounds(), out.Bounds())

	changed := false
	for y := 0; y < 60 && !changed; y++ {
		for x := 0; x < 60; x++ {
			if out.RGBAAt(x, y) != base.RGBAAt(x, y) {
				changed = true
				break
			}
		}
	}
	assert.True(t, changed, "top-left corner should carry the arrow")
	assert.Equal(t, base.RGBAAt(499, 299), out.RGBAAt(499, 299))
}

func TestEmbedInsetClampsToBase(t *testing.T) {
	base := solid(10, 10, color.White)
	out := EmbedInset(base, solid(50, 50, color.Black), 2, 0, PositionBottomRight)
	assert.Equal(t, base.Bounds(), out.Bounds())
}

func TestFlattenRemovesAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	out := Flatten(img)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(0, 0))
}
