package display

import "github.com/pkg/errors"

// Memory is an in-process display for tests and headless runs. It
// retains the last blitted frame.
type Memory struct {
	width  int
	height int

	frame      []RGB
	blits      int
	brightness uint8
}

// NewMemory creates a memory display.
func NewMemory(width, height int) *Memory {
	return &Memory{
		width:      width,
		height:     height,
		frame:      make([]RGB, width*height),
		brightness: 255,
	}
}

// Size implements Display.
func (m *Memory) Size() (int, int) { return m.width, m.height }

// SetBrightness implements Display.
func (m *Memory) SetBrightness(level uint8) { m.brightness = level }

// Brightness returns the last level set.
func (m *Memory) Brightness() uint8 { return m.brightness }

// Blit implements Display.
func (m *Memory) Blit(pixels []RGB, width, height int) error {
	if width != m.width || height != m.height {
		return errors.Errorf("frame size %dx%d does not match display %dx%d",
			width, height, m.width, m.height)
	}
	if len(pixels) < width*height {
		return errors.Errorf("short frame: %d pixels", len(pixels))
	}
	copy(m.frame, pixels[:width*height])
	m.blits++
	return nil
}

// Frame returns the last blitted frame.
func (m *Memory) Frame() []RGB { return m.frame }

// Blits returns how many frames have been transferred.
func (m *Memory) Blits() int { return m.blits }

// PixelAt returns the pixel at (x, y) of the last frame.
func (m *Memory) PixelAt(x, y int) RGB {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return RGB{}
	}
	return m.frame[y*m.width+x]
}
