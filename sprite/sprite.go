// Package sprite generates the soft-glow alpha maps particles are
// stamped with. Generation runs once at startup; the maps are
// read-only afterwards.
package sprite

import (
	"math"

	"github.com/pkg/errors"
)

// NumSizes is the number of size classes (small, medium, large).
const NumSizes = 3

// Diameters and Gaussian sigmas per size class. Larger sprites get a
// larger sigma for an overall softer falloff.
var (
	diameters = [NumSizes]int{8, 16, 24}
	sigmas    = [NumSizes]float64{2.5, 4.0, 6.0}
)

// edgeFadePx is the linear fade band inside the nominal radius that
// removes the hard circular boundary a pure Gaussian cutoff leaves.
const edgeFadePx = 1.5

// Sprite is one immutable alpha map.
type Sprite struct {
	Diameter int
	Alpha    []uint8 // Diameter*Diameter, row-major
}

// Set holds the three generated sprites.
type Set struct {
	sprites [NumSizes]Sprite
}

// Generate builds all size classes. The renderer cannot operate
// without sprites, so any failure here is fatal to initialization.
func Generate() (*Set, error) {
	s := &Set{}
	for i := 0; i < NumSizes; i++ {
		spr, err := generateSprite(diameters[i], sigmas[i])
		if err != nil {
			return nil, errors.Wrapf(err, "generating sprite size %d", i)
		}
		s.sprites[i] = spr
	}
	return s, nil
}

func generateSprite(diameter int, sigma float64) (Sprite, error) {
	if diameter <= 0 || sigma <= 0 {
		return Sprite{}, errors.Errorf("invalid sprite parameters d=%d sigma=%f", diameter, sigma)
	}

	alpha := make([]uint8, diameter*diameter)
	radius := float64(diameter) / 2
	centerX := radius - 0.5
	centerY := radius - 0.5
	sigma2 := 2 * sigma * sigma

	for y := 0; y < diameter; y++ {
		dy := float64(y) - centerY
		for x := 0; x < diameter; x++ {
			dx := float64(x) - centerX

			distSq := dx*dx + dy*dy
			dist := math.Sqrt(distSq)

			intensity := math.Exp(-distSq / sigma2)

			// Soft cutoff inside the sprite boundary
			edgeDist := radius - dist
			if edgeDist < 0 {
				intensity = 0
			} else if edgeDist < edgeFadePx {
				intensity *= edgeDist / edgeFadePx
			}

			if intensity < 0 {
				intensity = 0
			} else if intensity > 1 {
				intensity = 1
			}
			alpha[y*diameter+x] = uint8(intensity * 255)
		}
	}

	return Sprite{Diameter: diameter, Alpha: alpha}, nil
}

// Get returns the sprite for a size index; out-of-range indices clamp
// to the largest class.
func (s *Set) Get(idx int) *Sprite {
	if idx < 0 {
		idx = 0
	}
	if idx >= NumSizes {
		idx = NumSizes - 1
	}
	return &s.sprites[idx]
}
