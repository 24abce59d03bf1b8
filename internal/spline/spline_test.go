package spline

import (
	"math"
	"testing"
)

func testParams() (widths, heights, derivs []float32) {
	widths = []float32{0.3, -0.5, 0.8, 0.1, -0.2, 0.6, -0.7, 0.4, 0.0, 0.2}
	heights = []float32{-0.1, 0.4, -0.6, 0.3, 0.7, -0.3, 0.2, -0.4, 0.5, 0.1}
	derivs = []float32{0.2, -0.3, 0.5, -0.1, 0.4, 0.0, -0.5, 0.3, 0.1}
	return widths, heights, derivs
}

func TestIdentityTails(t *testing.T) {
	widths, heights, derivs := testParams()
	opts := DefaultOptions()

	for _, x := range []float32{-100, -5.01, 5.01, 42} {
		y, ld := Transform(x, widths, heights, derivs, false, opts)
		if y != x || ld != 0 {
			t.Errorf("Transform(%v) = (%v, %v), want identity with zero logdet", x, y, ld)
		}
		xi, ldi := Transform(x, widths, heights, derivs, true, opts)
		if xi != x || ldi != 0 {
			t.Errorf("inverse Transform(%v) = (%v, %v), want identity with zero logdet", x, xi, ldi)
		}
	}
}

func TestRoundtrip(t *testing.T) {
	widths, heights, derivs := testParams()
	opts := DefaultOptions()

	for x := float32(-4.9); x <= 4.9; x += 0.37 {
		y, ldFwd := Transform(x, widths, heights, derivs, false, opts)
		back, ldInv := Transform(y, widths, heights, derivs, true, opts)

		if diff := abs(back - x); diff > 1e-4 {
			t.Errorf("roundtrip at %v: got %v (diff %v)", x, back, diff)
		}
		if diff := abs(ldFwd + ldInv); diff > 1e-4 {
			t.Errorf("logdet at %v does not cancel: fwd=%v inv=%v", x, ldFwd, ldInv)
		}
	}
}

func TestMonotonic(t *testing.T) {
	widths, heights, derivs := testParams()
	opts := DefaultOptions()

	prev := float32(math.Inf(-1))
	for x := float32(-5); x <= 5; x += 0.05 {
		y, _ := Transform(x, widths, heights, derivs, false, opts)
		if y <= prev {
			t.Fatalf("not strictly increasing at %v: %v <= %v", x, y, prev)
		}
		prev = y
	}
}

func TestLogDetMatchesNumericalDerivative(t *testing.T) {
	widths, heights, derivs := testParams()
	opts := DefaultOptions()

	const h = 1e-3
	for _, x := range []float32{-3.7, -1.2, 0.4, 2.9} {
		_, ld := Transform(x, widths, heights, derivs, false, opts)
		yPlus, _ := Transform(x+h, widths, heights, derivs, false, opts)
		yMinus, _ := Transform(x-h, widths, heights, derivs, false, opts)

		numerical := float64(yPlus-yMinus) / (2 * h)
		analytic := math.Exp(float64(ld))
		if diff := math.Abs(numerical-analytic) / analytic; diff > 2e-2 {
			t.Errorf("derivative at %v: numerical=%v analytic=%v", x, numerical, analytic)
		}
	}
}

func TestZeroParamsNearIdentity(t *testing.T) {
	widths := make([]float32, 10)
	heights := make([]float32, 10)
	derivs := make([]float32, 9)
	opts := DefaultOptions()

	// Zero logits give uniform bins with unit slope on average; the map
	// stays close to the identity across the whole interval.
	for x := float32(-5); x <= 5; x += 0.25 {
		y, _ := Transform(x, widths, heights, derivs, false, opts)
		if diff := abs(y - x); diff > 0.1 {
			t.Errorf("zero-param spline far from identity at %v: y=%v", x, y)
		}
	}
}

func TestBoundaryJoinsTails(t *testing.T) {
	widths, heights, derivs := testParams()
	opts := DefaultOptions()

	// The transform is pinned to the interval ends.
	for _, x := range []float32{-5, 5} {
		y, _ := Transform(x, widths, heights, derivs, false, opts)
		if diff := abs(y - x); diff > 1e-5 {
			t.Errorf("boundary %v maps to %v, want fixed point", x, y)
		}
	}
}

func TestInconsistentLengthsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mismatched parameter lengths did not panic")
		}
	}()
	Transform(0, make([]float32, 10), make([]float32, 10), make([]float32, 5), false, DefaultOptions())
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
