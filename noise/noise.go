// Package noise provides seeded integer simplex noise and a curl field
// derived from it. Coordinates and outputs are 16.16 fixed-point
// compatible: a step of 1<<16 moves one noise cell, and the scalar
// functions return values in [0, 65535] centered on 32768.
package noise

import "github.com/Loviti/AdaDesktopCompanion/fixmath"

const (
	fixedOne  = int32(1) << 16
	fixedHalf = int32(1) << 15

	// Finite-difference epsilon for the curl derivative.
	curlEpsilon = 1000
)

// Gradient tables: 8 directions for 2D, 12 for 3D.
var grad2 = [8][2]int32{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

var grad3 = [12][3]int32{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

// Generator holds a shuffled permutation table. Construct one per
// engine; there is no package-level state.
type Generator struct {
	perm [512]uint8
}

// New creates a generator whose gradient selection is keyed by seed.
// The 256-entry permutation is Fisher-Yates shuffled with an LCG and
// duplicated to 512 entries so corner hashing never needs a wrap check.
func New(seed uint64) *Generator {
	g := &Generator{}

	state := uint32(seed)
	for i := 0; i < 256; i++ {
		g.perm[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		state = state*1664525 + 1013904223
		j := int(state>>16) % (i + 1)
		g.perm[i], g.perm[j] = g.perm[j], g.perm[i]
	}
	for i := 0; i < 256; i++ {
		g.perm[256+i] = g.perm[i]
	}

	return g
}

// fastFloor extracts the integer lattice coordinate from a wrapped
// fixed-point coordinate; arithmetic shift handles the negative half.
func fastFloor(x uint32) int32 {
	return int32(x) >> 16
}

func grad2Dot(gi int, x, y int32) int64 {
	return int64(grad2[gi][0]*x + grad2[gi][1]*y)
}

func grad3Dot(gi int, x, y, z int32) int64 {
	return int64(grad3[gi][0]*x + grad3[gi][1]*y + grad3[gi][2]*z)
}

func clamp16(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

// Noise2D evaluates 2D simplex noise at a fixed-point coordinate.
func (g *Generator) Noise2D(x, y uint32) uint16 {
	// Skew constants in 16.16: F2 = (sqrt(3)-1)/2, G2 = (3-sqrt(3))/6
	const f2 = int64(23972)
	const g2 = int32(13853)

	s := int32((int64(x+y) * f2) >> 16)
	i := fastFloor(x + uint32(s))
	j := fastFloor(y + uint32(s))

	t := int32((int64(i+j) * int64(g2)) >> 16)
	x0 := int32(x) - (i<<16 - t)
	y0 := int32(y) - (j<<16 - t)

	// Lower or upper triangle of the skewed cell
	var i1, j1 int32
	if x0 > y0 {
		i1, j1 = 1, 0
	} else {
		i1, j1 = 0, 1
	}

	x1 := x0 - i1<<16 + g2
	y1 := y0 - j1<<16 + g2
	x2 := x0 - fixedOne + g2*2
	y2 := y0 - fixedOne + g2*2

	ii := int(i & 255)
	jj := int(j & 255)

	var n0, n1, n2 int64

	if t0 := int64(fixedHalf) - (int64(x0)*int64(x0)+int64(y0)*int64(y0))>>16; t0 > 0 {
		t0 = (t0 * t0) >> 16
		t0 = (t0 * t0) >> 16
		gi := int(g.perm[ii+int(g.perm[jj])] & 7)
		n0 = t0 * grad2Dot(gi, x0>>8, y0>>8)
	}
	if t1 := int64(fixedHalf) - (int64(x1)*int64(x1)+int64(y1)*int64(y1))>>16; t1 > 0 {
		t1 = (t1 * t1) >> 16
		t1 = (t1 * t1) >> 16
		gi := int(g.perm[ii+int(i1)+int(g.perm[jj+int(j1)])] & 7)
		n1 = t1 * grad2Dot(gi, x1>>8, y1>>8)
	}
	if t2 := int64(fixedHalf) - (int64(x2)*int64(x2)+int64(y2)*int64(y2))>>16; t2 > 0 {
		t2 = (t2 * t2) >> 16
		t2 = (t2 * t2) >> 16
		gi := int(g.perm[ii+1+int(g.perm[jj+1])] & 7)
		n2 = t2 * grad2Dot(gi, x2>>8, y2>>8)
	}

	// Empirically tuned scale; the clamp enforces the output contract
	return clamp16((n0+n1+n2)>>6 + 32768)
}

// Noise3D evaluates 3D simplex noise at a fixed-point coordinate.
func (g *Generator) Noise3D(x, y, z uint32) uint16 {
	// F3 = 1/3, G3 = 1/6 in 16.16
	const f3 = int64(21845)
	const g3 = int32(10923)

	s := int32((int64(x+y+z) * f3) >> 16)
	i := fastFloor(x + uint32(s))
	j := fastFloor(y + uint32(s))
	k := fastFloor(z + uint32(s))

	t := int32((int64(i+j+k) * int64(g3)) >> 16)
	x0 := int32(x) - (i<<16 - t)
	y0 := int32(y) - (j<<16 - t)
	z0 := int32(z) - (k<<16 - t)

	var i1, j1, k1, i2, j2, k2 int32
	if x0 >= y0 {
		switch {
		case y0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
		case x0 >= z0:
			i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
		}
	} else {
		switch {
		case y0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
		case x0 < z0:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
		default:
			i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
		}
	}

	x1 := x0 - i1<<16 + g3
	y1 := y0 - j1<<16 + g3
	z1 := z0 - k1<<16 + g3
	x2 := x0 - i2<<16 + g3*2
	y2 := y0 - j2<<16 + g3*2
	z2 := z0 - k2<<16 + g3*2
	x3 := x0 - fixedOne + g3*3
	y3 := y0 - fixedOne + g3*3
	z3 := z0 - fixedOne + g3*3

	ii := int(i & 255)
	jj := int(j & 255)
	kk := int(k & 255)

	// Corner attenuation radius 0.6*0.5 per the reference tuning
	attn := int64(fixedHalf) * 6 / 10

	var n0, n1, n2, n3 int64

	if t0 := attn - (int64(x0)*int64(x0)+int64(y0)*int64(y0)+int64(z0)*int64(z0))>>16; t0 > 0 {
		t0 = (t0 * t0) >> 16
		t0 = (t0 * t0) >> 16
		gi := int(g.perm[ii+int(g.perm[jj+int(g.perm[kk])])]) % 12
		n0 = t0 * grad3Dot(gi, x0>>8, y0>>8, z0>>8)
	}
	if t1 := attn - (int64(x1)*int64(x1)+int64(y1)*int64(y1)+int64(z1)*int64(z1))>>16; t1 > 0 {
		t1 = (t1 * t1) >> 16
		t1 = (t1 * t1) >> 16
		gi := int(g.perm[ii+int(i1)+int(g.perm[jj+int(j1)+int(g.perm[kk+int(k1)])])]) % 12
		n1 = t1 * grad3Dot(gi, x1>>8, y1>>8, z1>>8)
	}
	if t2 := attn - (int64(x2)*int64(x2)+int64(y2)*int64(y2)+int64(z2)*int64(z2))>>16; t2 > 0 {
		t2 = (t2 * t2) >> 16
		t2 = (t2 * t2) >> 16
		gi := int(g.perm[ii+int(i2)+int(g.perm[jj+int(j2)+int(g.perm[kk+int(k2)])])]) % 12
		n2 = t2 * grad3Dot(gi, x2>>8, y2>>8, z2>>8)
	}
	if t3 := attn - (int64(x3)*int64(x3)+int64(y3)*int64(y3)+int64(z3)*int64(z3))>>16; t3 > 0 {
		t3 = (t3 * t3) >> 16
		t3 = (t3 * t3) >> 16
		gi := int(g.perm[ii+1+int(g.perm[jj+1+int(g.perm[kk+1])])]) % 12
		n3 = t3 * grad3Dot(gi, x3>>8, y3>>8, z3>>8)
	}

	return clamp16((n0+n1+n2+n3)>>5 + 32768)
}

// Fractal combines 1-4 octaves of Noise3D with persistence 0.5 and
// lacunarity 2, normalized by the accumulated amplitude.
func (g *Generator) Fractal(x, y, z uint32, octaves int) uint16 {
	if octaves < 1 {
		octaves = 1
	}
	if octaves > 4 {
		octaves = 4
	}

	var total, maxValue int64
	amplitude := int64(fixedOne)
	frequency := uint64(fixedOne)

	for o := 0; o < octaves; o++ {
		sx := uint32((uint64(x) * frequency) >> 16)
		sy := uint32((uint64(y) * frequency) >> 16)
		sz := uint32((uint64(z) * frequency) >> 16)

		n := int64(g.Noise3D(sx, sy, sz)) - 32768
		total += (n * amplitude) >> 16

		maxValue += amplitude
		amplitude >>= 1
		frequency <<= 1
	}

	return clamp16((total<<16)/maxValue + 32768)
}

// Curl2D returns a divergence-free velocity at (x, y) for noise time t:
// the 3D field's gradient estimated by central differences and rotated
// a quarter turn. Particles circulate around noise extrema instead of
// piling up on them, which is the whole point of using curl here.
func (g *Generator) Curl2D(x, y, t uint32) (vx, vy fixmath.T) {
	npx := g.Noise3D(x+curlEpsilon, y, t)
	nmx := g.Noise3D(x-curlEpsilon, y, t)
	npy := g.Noise3D(x, y+curlEpsilon, t)
	nmy := g.Noise3D(x, y-curlEpsilon, t)

	dndx := int32(npx) - int32(nmx)
	dndy := int32(npy) - int32(nmy)

	return dndy, -dndx
}
