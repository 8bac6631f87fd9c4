// Package texture loads the map image draped over the terrain.
package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"math"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Texture is a decoded RGBA image addressed by texture coordinates.
type Texture struct {
	img *image.RGBA
}

// Load decodes the image at path. When maxSize is positive, images whose
// width or height exceeds it are scaled down to fit, keeping the aspect ratio.
func Load(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, maxSize)
}

// Decode reads an image in any registered format.
func Decode(r io.Reader, maxSize int) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("texture (%s) is empty", format)
	}
	return FromImage(img, maxSize), nil
}

// FromImage wraps img, downscaling it as Load does.
func FromImage(img image.Image, maxSize int) *Texture {
	b := img.Bounds()
	if maxSize > 0 && (b.Dx() > maxSize || b.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.MitchellNetravali)
		b = img.Bounds()
	}

	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Texture{img: rgba}
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the texel at (u, v). Coordinates are clamped to the unit
// square, so the image never repeats; v = 0 is the bottom row.
func (t *Texture) Sample(u, v float64) color.RGBA {
	w, h := t.Size()
	x := min(w-1, int(clampUnit(u)*float64(w)))
	y := min(h-1, int((1-clampUnit(v))*float64(h)))
	return t.img.RGBAAt(x, y)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(1, max(0, v))
}

// EncodeJPEG writes the texture as a JPEG.
func (t *Texture) EncodeJPEG(w io.Writer, quality int) error {
	if err := jpeg.Encode(w, t.img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode texture: %w", err)
	}
	return nil
}
