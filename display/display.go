// Package display abstracts the physical output surface. The engine
// renders into an RGB framebuffer and hands whole frames to a Display;
// the terminal implementation is the only place tcell is touched.
package display

// RGB is an 8-bit-per-channel pixel.
type RGB struct {
	R, G, B uint8
}

// Display receives whole frames. Partial updates are not part of the
// contract: the trail fade rewrites every pixel every frame anyway.
type Display interface {
	// Size returns the pixel dimensions of the surface.
	Size() (width, height int)

	// Blit transfers a full frame. The pixel slice is row-major and
	// must hold width*height entries; short frames are an error.
	Blit(pixels []RGB, width, height int) error

	// SetBrightness scales subsequent frames (255 = full).
	SetBrightness(level uint8)
}
