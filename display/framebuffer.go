// Package display turns render draw intents into pixels on an RGB565
// framebuffer through the tinygo display driver interface.
package display

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

// Flusher receives the framebuffer every time it is displayed.
type Flusher interface {
	Flush(buf []byte, width, height int16) error
}

// Framebuffer is an in-memory RGB565 little-endian panel. It implements
// drivers.Displayer.
type Framebuffer struct {
	width, height int16
	buf           []byte
	out           Flusher
	frames        int
}

func NewFramebuffer(width, height int16) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		buf:    make([]byte, int(width)*int(height)*2),
	}
}

// SetFlusher sets where Display sends the pixels.
func (fb *Framebuffer) SetFlusher(out Flusher) {
	fb.out = out
}

func (fb *Framebuffer) Size() (x, y int16) {
	return fb.width, fb.height
}

func (fb *Framebuffer) offset(x, y int16) (int, bool) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return 0, false
	}
	return (int(y)*int(fb.width) + int(x)) * 2, true
}

func (fb *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	off, ok := fb.offset(x, y)
	if !ok {
		return
	}
	p := rgb565(c)
	fb.buf[off] = byte(p)
	fb.buf[off+1] = byte(p >> 8)
}

// Pixel returns the color at x, y expanded back to 8 bits per channel.
func (fb *Framebuffer) Pixel(x, y int16) color.RGBA {
	off, ok := fb.offset(x, y)
	if !ok {
		return color.RGBA{}
	}
	p := uint16(fb.buf[off]) | uint16(fb.buf[off+1])<<8
	r := uint8(p>>11) & 0x1f
	g := uint8(p>>5) & 0x3f
	b := uint8(p) & 0x1f
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xff}
}

// FillRectangle fills the part of the rectangle that is on screen.
func (fb *Framebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if width < 0 || height < 0 {
		return errors.Errorf("invalid rectangle size %dx%d", width, height)
	}
	x0, y0 := clamp(int(x), int(fb.width)), clamp(int(y), int(fb.height))
	x1, y1 := clamp(int(x)+int(width), int(fb.width)), clamp(int(y)+int(height), int(fb.height))
	p := rgb565(c)
	lo, hi := byte(p), byte(p>>8)
	for py := y0; py < y1; py++ {
		row := py * int(fb.width) * 2
		for px := x0; px < x1; px++ {
			fb.buf[row+px*2] = lo
			fb.buf[row+px*2+1] = hi
		}
	}
	return nil
}

func (fb *Framebuffer) Display() error {
	fb.frames++
	if fb.out == nil {
		return nil
	}
	return errors.Wrap(fb.out.Flush(fb.buf, fb.width, fb.height), "unable to flush framebuffer")
}

// Frames returns how many times Display was called.
func (fb *Framebuffer) Frames() int {
	return fb.frames
}

// Image copies the framebuffer into an RGBA image.
func (fb *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(fb.width), int(fb.height)))
	for y := int16(0); y < fb.height; y++ {
		for x := int16(0); x < fb.width; x++ {
			img.SetRGBA(int(x), int(y), fb.Pixel(x, y))
		}
	}
	return img
}

// WritePNG encodes the current screen as PNG.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return errors.Wrap(png.Encode(w, fb.Image()), "unable to encode png")
}

func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
