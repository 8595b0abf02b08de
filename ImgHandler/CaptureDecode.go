package ImgHandler

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "github.com/chai2010/webp"
)

var ErrEmptyCapture = errors.New("empty capture")

// DecodeCapture decodes a map snapshot given as raw png/jpeg/webp bytes or as
// a data URL such as canvas.toDataURL produces.
func DecodeCapture(data []byte) (image.Image, string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, "", ErrEmptyCapture
	}
	if bytes.HasPrefix(data, []byte("data:")) {
		raw, err := decodeDataURL(string(data))
		if err != nil {
			return nil, "", err
		}
		data = raw
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode capture: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", ErrEmptyCapture
	}
	return img, format, nil
}

func decodeDataURL(s string) ([]byte, error) {
	comma := strings.IndexByte(s, ',')
	if comma < 0 || !strings.Contains(s[:comma], ";base64") {
		return nil, fmt.Errorf("decode capture: unsupported data url")
	}
	raw, err := base64.StdEncoding.DecodeString(s[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return raw, nil
}

// Flatten composites img over white, since report backends have no alpha.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
