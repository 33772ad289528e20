package noise

import "testing"

// Coordinates that stress lattice boundaries: zero, cell edges, the
// signed/unsigned wraparound point, and arbitrary mid-cell values.
var probeCoords = []uint32{
	0, 1, 0xFFFF, 0x10000, 0x10001, 0x7FFFFFFF, 0x80000000,
	0x80000001, 0xFFFF0000, 0xFFFFFFFF, 123456, 98765432,
}

func TestNoise2DBounds(t *testing.T) {
	g := New(12345)
	for _, x := range probeCoords {
		for _, y := range probeCoords {
			v := g.Noise2D(x, y)
			if v > 65535 {
				t.Fatalf("Noise2D(%d, %d) = %d out of range", x, y, v)
			}
		}
	}
}

func TestNoise3DBounds(t *testing.T) {
	g := New(999)
	for _, x := range probeCoords {
		for _, y := range probeCoords {
			for _, z := range probeCoords[:6] {
				v := g.Noise3D(x, y, z)
				if v > 65535 {
					t.Fatalf("Noise3D(%d, %d, %d) = %d out of range", x, y, z, v)
				}
			}
		}
	}
}

func TestNoiseDense(t *testing.T) {
	// Sweep a dense patch; output must always honor the [0, 65535]
	// contract regardless of the internal scaling shifts.
	g := New(7)
	for x := uint32(0); x < 1<<20; x += 4093 {
		for y := uint32(0); y < 1<<20; y += 8191 {
			_ = g.Noise2D(x, y) // uint16 return already proves the bound
			if v := g.Noise3D(x, y, x^y); v > 65535 {
				t.Fatalf("out of range at (%d,%d)", x, y)
			}
		}
	}
}

func TestSeedDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	c := New(43)

	same := true
	differ := false
	for x := uint32(0); x < 1<<19; x += 30011 {
		va, vb := a.Noise2D(x, x*3), b.Noise2D(x, x*3)
		if va != vb {
			same = false
		}
		if va != c.Noise2D(x, x*3) {
			differ = true
		}
	}
	if !same {
		t.Error("Expected identical output for identical seeds")
	}
	if !differ {
		t.Error("Expected different seeds to produce different fields")
	}
}

func TestFractalBounds(t *testing.T) {
	g := New(5)
	for _, oct := range []int{-1, 0, 1, 2, 3, 4, 9} {
		for x := uint32(0); x < 1<<19; x += 65537 {
			v := g.Fractal(x, x/2, x/3, oct)
			if v > 65535 {
				t.Fatalf("Fractal octaves=%d out of range: %d", oct, v)
			}
		}
	}
}

func TestCurlAntisymmetry(t *testing.T) {
	// Curl output is the rotated gradient: vx = dN/dy, vy = -dN/dx.
	// Verify against directly computed differences.
	g := New(11)
	for x := uint32(1 << 14); x < 1<<20; x += 40961 {
		y := x * 2
		tt := x / 3
		vx, vy := g.Curl2D(x, y, tt)

		dndy := int32(g.Noise3D(x, y+curlEpsilon, tt)) - int32(g.Noise3D(x, y-curlEpsilon, tt))
		dndx := int32(g.Noise3D(x+curlEpsilon, y, tt)) - int32(g.Noise3D(x-curlEpsilon, y, tt))

		if vx != dndy || vy != -dndx {
			t.Fatalf("Curl mismatch at (%d, %d): got (%d, %d), want (%d, %d)",
				x, y, vx, vy, dndy, -dndx)
		}
	}
}

func TestCurlNonZero(t *testing.T) {
	g := New(3)
	nonZero := 0
	for x := uint32(0); x < 1<<20; x += 30013 {
		vx, vy := g.Curl2D(x, x*5, 77)
		if vx != 0 || vy != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("Expected a non-trivial curl field, got all zeros")
	}
}
