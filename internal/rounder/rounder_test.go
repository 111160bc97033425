package rounder

import "testing"

func TestHeaderAlign_Round(t *testing.T) {
	r := NewHeaderAlign(12)
	cases := []struct {
		x    float64
		want int32
	}{
		{0, 4},  // 12+4=16, smallest n>=1 with (12+n)%8==0
		{1, 4},
		{4, 4},
		{5, 12}, // next n ≡ 4 (mod 8) that is >= 5
		{20, 20},
	}
	for _, c := range cases {
		if got := r.Round(c.x); got != c.want {
			t.Errorf("Round(%v) = %d, want %d", c.x, got, c.want)
		}
		if (int64(r.HeaderSize)+int64(r.Round(c.x)))%8 != 0 {
			t.Errorf("Round(%v) = %d does not align header+n to 8", c.x, r.Round(c.x))
		}
	}
}

func TestHeaderAlign_DefaultHeader(t *testing.T) {
	r := NewHeaderAlign(0)
	if r.HeaderSize != 12 {
		t.Errorf("HeaderSize = %d, want default 12", r.HeaderSize)
	}
}

func TestMultipleOfLen_Round(t *testing.T) {
	r := NewMultipleOfLen(3)
	cases := []struct {
		x    float64
		want int32
	}{
		{0, 3},
		{1, 3},
		{3, 3},
		{4, 6},
		{10, 12},
	}
	for _, c := range cases {
		if got := r.Round(c.x); got != c.want {
			t.Errorf("Round(%v) = %d, want %d", c.x, got, c.want)
		}
		if r.Round(c.x)%3 != 0 {
			t.Errorf("Round(%v) = %d is not a multiple of 3", c.x, r.Round(c.x))
		}
	}
}

func TestMultipleOfLen_AlwaysPositiveMultipleOfL(t *testing.T) {
	for _, length := range []int32{1, 2, 5, 17} {
		r := NewMultipleOfLen(length)
		for x := -5.0; x < 100; x += 3.3 {
			got := r.Round(x)
			if got <= 0 {
				t.Fatalf("Round(%v) with len=%d returned non-positive %d", x, length, got)
			}
			if got%length != 0 {
				t.Fatalf("Round(%v) with len=%d = %d, not a multiple of len", x, length, got)
			}
			if got < length {
				t.Fatalf("Round(%v) with len=%d = %d, smaller than len", x, length, got)
			}
		}
	}
}

func TestMultipleOfLen_NonPositiveLenFallsBackToOne(t *testing.T) {
	r := NewMultipleOfLen(-3)
	if r.Len != 1 {
		t.Errorf("Len = %d, want fallback of 1", r.Len)
	}
}

func TestElementScaled_Round(t *testing.T) {
	// 8-byte pointer-sized elements, rounding the byte budget to a multiple of 64.
	inner := NewMultipleOfLen(64)
	scaled := ElementScaled{Inner: inner, ElementSize: 8}

	got := scaled.Round(10) // 10 elems * 8 bytes = 80 bytes -> rounds up to 128 bytes -> 16 elems
	want := int32(16)
	if got != want {
		t.Errorf("Round(10) = %d, want %d", got, want)
	}
}

func TestElementScaled_NeverBelowOne(t *testing.T) {
	scaled := ElementScaled{Inner: NewMultipleOfLen(1), ElementSize: 0}
	if got := scaled.Round(0); got < 1 {
		t.Errorf("Round(0) = %d, want >= 1", got)
	}
}
