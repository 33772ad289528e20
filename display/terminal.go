package display

import (
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

// Terminal renders the pixel surface into a terminal using U+2580
// upper-half-block cells: each character cell carries two vertically
// stacked pixels (foreground = top, background = bottom), giving a
// square-ish aspect on common fonts.
type Terminal struct {
	screen tcell.Screen
	width  int
	height int

	brightness uint8
}

// NewTerminal creates a terminal display with the given pixel size.
// Height must be even (two pixels per cell row).
func NewTerminal(width, height int) (*Terminal, error) {
	if width <= 0 || height <= 0 || height%2 != 0 {
		return nil, errors.Errorf("invalid terminal display size %dx%d", width, height)
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "creating screen")
	}
	return &Terminal{
		screen:     screen,
		width:      width,
		height:     height,
		brightness: 255,
	}, nil
}

// Init takes over the terminal. Call Fini before exiting.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return errors.Wrap(err, "initializing screen")
	}
	t.screen.EnableMouse()
	t.screen.HideCursor()
	t.screen.Clear()
	return nil
}

// Fini restores the terminal.
func (t *Terminal) Fini() {
	t.screen.Fini()
}

// Size implements Display.
func (t *Terminal) Size() (int, int) {
	return t.width, t.height
}

// SetBrightness implements Display.
func (t *Terminal) SetBrightness(level uint8) {
	t.brightness = level
}

func (t *Terminal) scale(c RGB) tcell.Color {
	if t.brightness != 255 {
		b := uint16(t.brightness)
		c.R = uint8(uint16(c.R) * b / 255)
		c.G = uint8(uint16(c.G) * b / 255)
		c.B = uint8(uint16(c.B) * b / 255)
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Blit implements Display.
func (t *Terminal) Blit(pixels []RGB, width, height int) error {
	if width != t.width || height != t.height {
		return errors.Errorf("frame size %dx%d does not match display %dx%d",
			width, height, t.width, t.height)
	}
	if len(pixels) < width*height {
		return errors.Errorf("short frame: %d pixels for %dx%d", len(pixels), width, height)
	}

	// Center the surface in the terminal window
	termW, termH := t.screen.Size()
	offX := (termW - width) / 2
	offY := (termH - height/2) / 2

	for row := 0; row < height/2; row++ {
		top := pixels[(row*2)*width:]
		bottom := pixels[(row*2+1)*width:]
		for x := 0; x < width; x++ {
			style := tcell.StyleDefault.
				Foreground(t.scale(top[x])).
				Background(t.scale(bottom[x]))
			t.screen.SetContent(offX+x, offY+row, '▀', nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// PollEvent blocks for the next terminal event. Returns nil after Fini.
func (t *Terminal) PollEvent() tcell.Event {
	return t.screen.PollEvent()
}

// TranslateMouse converts terminal cell coordinates from a mouse event
// into pixel coordinates on the surface. ok is false outside it.
func (t *Terminal) TranslateMouse(cellX, cellY int) (px, py int, ok bool) {
	termW, termH := t.screen.Size()
	offX := (termW - t.width) / 2
	offY := (termH - t.height/2) / 2

	px = cellX - offX
	py = (cellY - offY) * 2
	if px < 0 || px >= t.width || py < 0 || py >= t.height {
		return 0, 0, false
	}
	return px, py, true
}

// EmergencyReset writes raw escape sequences restoring a sane terminal
// state, for panic paths where the screen object may be unusable.
func EmergencyReset(w io.Writer) {
	// Exit alt screen, show cursor, reset attributes, disable mouse
	fmt.Fprint(w, "\x1b[?1049l\x1b[?25h\x1b[0m\x1b[?1003l\x1b[?1006l")
}
