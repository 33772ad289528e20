// Package render implements the persistent framebuffer: whole-buffer
// multiplicative fade for the trail effect, additive soft-sprite
// compositing, and bulk transfer to the display.
package render

import (
	"github.com/pkg/errors"

	"github.com/Loviti/AdaDesktopCompanion/display"
	"github.com/Loviti/AdaDesktopCompanion/sprite"
)

// RGB is re-exported from display so rendering code does not need both
// imports for a pixel type.
type RGB = display.RGB

// FrameBuffer is a mutable pixel grid at display resolution. It is the
// only component that hands raw frames to the display.
type FrameBuffer struct {
	pixels []RGB
	width  int
	height int
}

// NewFrameBuffer allocates the buffer. Callers may treat failure as
// degradable: the engine falls back to direct drawing without one.
func NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	return &FrameBuffer{
		pixels: make([]RGB, width*height),
		width:  width,
		height: height,
	}, nil
}

func (f *FrameBuffer) Width() int  { return f.width }
func (f *FrameBuffer) Height() int { return f.height }

// Pixels exposes the backing slice for bulk transfer; callers must not
// hold it across frames.
func (f *FrameBuffer) Pixels() []RGB { return f.pixels }

func (f *FrameBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// Clear fills the whole buffer with one color.
func (f *FrameBuffer) Clear(c RGB) {
	if len(f.pixels) == 0 {
		return
	}
	f.pixels[0] = c
	for filled := 1; filled < len(f.pixels); filled *= 2 {
		copy(f.pixels[filled:], f.pixels[:filled])
	}
}

// Fade multiplies every channel by factor256/256. Undrawn regions decay
// toward black asymptotically, which is what produces the trails.
// Already-black pixels skip the channel math.
func (f *FrameBuffer) Fade(factor256 uint8) {
	fac := uint16(factor256)
	for i := range f.pixels {
		p := &f.pixels[i]
		if p.R == 0 && p.G == 0 && p.B == 0 {
			continue
		}
		p.R = uint8(uint16(p.R) * fac >> 8)
		p.G = uint8(uint16(p.G) * fac >> 8)
		p.B = uint8(uint16(p.B) * fac >> 8)
	}
}

// FadeToward decays every pixel toward a base color instead of black,
// used when a background color is configured.
func (f *FrameBuffer) FadeToward(base RGB, factor256 uint8) {
	if base == (RGB{}) {
		f.Fade(factor256)
		return
	}
	fac := int32(factor256)
	for i := range f.pixels {
		p := &f.pixels[i]
		p.R = uint8(int32(base.R) + (int32(p.R)-int32(base.R))*fac>>8)
		p.G = uint8(int32(base.G) + (int32(p.G)-int32(base.G))*fac>>8)
		p.B = uint8(int32(base.B) + (int32(p.B)-int32(base.B))*fac>>8)
	}
}

// SetPixel writes a pixel, replacing the existing value.
func (f *FrameBuffer) SetPixel(x, y int, c RGB) {
	if !f.inBounds(x, y) {
		return
	}
	f.pixels[y*f.width+x] = c
}

// PixelAt reads a pixel; ok is false out of bounds.
func (f *FrameBuffer) PixelAt(x, y int) (RGB, bool) {
	if !f.inBounds(x, y) {
		return RGB{}, false
	}
	return f.pixels[y*f.width+x], true
}

func addClamp(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// AddPixel additively blends a contribution into the buffer, clamping
// each channel. Overlapping contributions brighten rather than
// overwrite, producing the glow where particle density is high.
func (f *FrameBuffer) AddPixel(x, y int, c RGB) {
	if !f.inBounds(x, y) {
		return
	}
	p := &f.pixels[y*f.width+x]
	p.R = addClamp(p.R, c.R)
	p.G = addClamp(p.G, c.G)
	p.B = addClamp(p.B, c.B)
}

// DrawSoftParticle stamps a sprite centered at (cx, cy): sprite alpha
// combines with brightness and the base color, then blends additively.
func (f *FrameBuffer) DrawSoftParticle(cx, cy int, spr *sprite.Sprite, color RGB, brightness uint8) {
	if spr == nil {
		return
	}
	size := spr.Diameter
	half := size / 2

	for sy := 0; sy < size; sy++ {
		screenY := cy - half + sy
		if screenY < 0 || screenY >= f.height {
			continue
		}
		rowBase := screenY * f.width
		sprRow := spr.Alpha[sy*size:]

		for sx := 0; sx < size; sx++ {
			screenX := cx - half + sx
			if screenX < 0 || screenX >= f.width {
				continue
			}

			alpha := sprRow[sx]
			if alpha == 0 {
				continue
			}
			combined := uint16(alpha) * uint16(brightness) >> 8
			if combined == 0 {
				continue
			}

			p := &f.pixels[rowBase+screenX]
			p.R = addClamp(p.R, uint8(uint16(color.R)*combined>>8))
			p.G = addClamp(p.G, uint8(uint16(color.G)*combined>>8))
			p.B = addClamp(p.B, uint8(uint16(color.B)*combined>>8))
		}
	}
}

// FillRectAdditive blends a filled axis-aligned rectangle, for the
// square particle shape.
func (f *FrameBuffer) FillRectAdditive(x0, y0, w, h int, color RGB, brightness uint8) {
	c := RGB{
		R: uint8(uint16(color.R) * uint16(brightness) >> 8),
		G: uint8(uint16(color.G) * uint16(brightness) >> 8),
		B: uint8(uint16(color.B) * uint16(brightness) >> 8),
	}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			f.AddPixel(x, y, c)
		}
	}
}

// DrawLineAdditive blends a 1px Bresenham line, used for particle
// links.
func (f *FrameBuffer) DrawLineAdditive(x0, y0, x1, y1 int, color RGB) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		f.AddPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Push transfers the whole buffer to the display.
func (f *FrameBuffer) Push(d display.Display) error {
	return d.Blit(f.pixels, f.width, f.height)
}
