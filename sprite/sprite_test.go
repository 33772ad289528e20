package sprite

import "testing"

func TestGenerate(t *testing.T) {
	set, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := 0; i < NumSizes; i++ {
		spr := set.Get(i)
		if spr.Diameter != diameters[i] {
			t.Errorf("Sprite %d: expected diameter %d, got %d", i, diameters[i], spr.Diameter)
		}
		if len(spr.Alpha) != spr.Diameter*spr.Diameter {
			t.Errorf("Sprite %d: alpha map has %d entries for diameter %d",
				i, len(spr.Alpha), spr.Diameter)
		}
	}
}

func TestCenterBrightest(t *testing.T) {
	set, _ := Generate()
	for i := 0; i < NumSizes; i++ {
		spr := set.Get(i)
		d := spr.Diameter
		center := spr.Alpha[(d/2-1)*d+(d/2-1)] // center sits between pixels; this is adjacent
		for _, a := range spr.Alpha {
			if a > center {
				t.Errorf("Sprite %d: alpha %d exceeds near-center %d", i, a, center)
			}
		}
		if center < 200 {
			t.Errorf("Sprite %d: expected bright center, got %d", i, center)
		}
	}
}

func TestRadialFalloff(t *testing.T) {
	set, _ := Generate()
	for i := 0; i < NumSizes; i++ {
		spr := set.Get(i)
		d := spr.Diameter
		row := spr.Alpha[(d/2-1)*d:]

		// Monotone non-increasing from near-center rightward
		for x := d/2 - 1; x < d-1; x++ {
			if row[x+1] > row[x] {
				t.Errorf("Sprite %d: falloff not monotone at x=%d (%d -> %d)",
					i, x, row[x], row[x+1])
			}
		}
	}
}

func TestCornersTransparent(t *testing.T) {
	set, _ := Generate()
	for i := 0; i < NumSizes; i++ {
		spr := set.Get(i)
		d := spr.Diameter
		corners := []int{0, d - 1, (d - 1) * d, d*d - 1}
		for _, c := range corners {
			if spr.Alpha[c] != 0 {
				t.Errorf("Sprite %d: corner alpha %d, expected 0", i, spr.Alpha[c])
			}
		}
	}
}

func TestGetClamps(t *testing.T) {
	set, _ := Generate()
	if set.Get(-5) != set.Get(0) {
		t.Error("Expected negative index to clamp to smallest")
	}
	if set.Get(99) != set.Get(NumSizes-1) {
		t.Error("Expected oversized index to clamp to largest")
	}
}
