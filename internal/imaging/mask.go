package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/segment"
)

// Mask is a binary raster with one byte per pixel. A value of 1 marks a
// foreground pixel; every other byte is 0.
//
// Coordinates are 0-based with (0,0) at the top-left. Reads outside the mask
// report background, so neighborhood scans need no bounds checks.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// Size returns the mask dimensions.
func (m *Mask) Size() (int, int) {
	return m.Width, m.Height
}

// On reports whether (x, y) is a foreground pixel.
func (m *Mask) On(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] == 1
}

// Set marks or clears (x, y). Out-of-range writes are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if on {
		m.Pix[y*m.Width+x] = 1
	} else {
		m.Pix[y*m.Width+x] = 0
	}
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == 1 {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// ClearRect clears every pixel inside r, clipped to the mask.
func (m *Mask) ClearRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, m.Width, m.Height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = 0
		}
	}
}

// Gray renders the mask as an 8-bit image with foreground in white.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v == 1 {
			img.Pix[i] = 0xFF
		}
	}
	return img
}

// MaskFromImage thresholds img at level. Pixels whose luminance is at or above
// level become foreground.
func MaskFromImage(img image.Image, level uint8) *Mask {
	th := segment.Threshold(img, level)
	b := th.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if th.Pix[y*th.Stride+x] == 0xFF {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// maskFromRGBA reads the red channel of a 0/255 binary RGBA raster.
func maskFromRGBA(img *image.RGBA) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if img.Pix[y*img.Stride+x*4] >= 0x80 {
				m.Pix[y*m.Width+x] = 1
			}
		}
	}
	return m
}

// rgba renders the mask as an opaque black and white RGBA image.
func (m *Mask) rgba() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.RGBA{A: 0xFF}
			if m.Pix[y*m.Width+x] == 1 {
				c = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
