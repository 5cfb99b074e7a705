package utils

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"essdump/types"
)

// Screenshot_image turns the raw RGB screenshot into an image
func Screenshot_image(shot *types.Screenshot) (*image.RGBA, error) {
	w, h := int(shot.Width), int(shot.Height)
	if uint64(len(shot.Pixels)) != uint64(shot.Width)*uint64(shot.Height)*3 {
		return nil, fmt.Errorf("%vx%v screenshot has %v bytes: %w", w, h, len(shot.Pixels), types.ErrValueOutOfRange)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < len(shot.Pixels); i, j = i+3, j+4 {
		img.Pix[j] = shot.Pixels[i]
		img.Pix[j+1] = shot.Pixels[i+1]
		img.Pix[j+2] = shot.Pixels[i+2]
		img.Pix[j+3] = 0xFF
	}
	return img, nil
}

// Screenshot_from_image is the inverse of Screenshot_image.  Alpha is thrown away.
func Screenshot_from_image(img image.Image) types.Screenshot {
	b := img.Bounds()
	shot := types.Screenshot{Width: uint32(b.Dx()), Height: uint32(b.Dy())}
	shot.Pixels = make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			shot.Pixels = append(shot.Pixels, uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}
	return shot
}

// Thumbnail scales an image down to fit in max_w x max_h, keeping the aspect ratio.
// Images that already fit are returned as they are.
func Thumbnail(img image.Image, max_w, max_h int) image.Image {
	b := img.Bounds()
	if b.Dx() <= max_w && b.Dy() <= max_h || b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	w, h := max_w, b.Dy()*max_w/b.Dx()
	if h > max_h {
		w, h = b.Dx()*max_h/b.Dy(), max_h
	}
	w, h = max(w, 1), max(h, 1)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// Write_image encodes as BMP or PNG, going by the file name
func Write_image(out io.Writer, filename string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".bmp":
		return bmp.Encode(out, img)
	case ".png":
		return png.Encode(out, img)
	}
	return fmt.Errorf("don't know how to write %v (try .bmp or .png)", filename)
}

// Read_image decodes a BMP or PNG
func Read_image(in io.Reader) (image.Image, error) {
	img, _, err := image.Decode(in)
	return img, err
}
