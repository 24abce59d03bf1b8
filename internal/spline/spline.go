// Package spline implements monotonic rational-quadratic splines with
// linear tails, the invertible scalar transform used inside coupling flows.
//
// A spline is parameterized per element by unnormalized bin widths and
// heights (numBins each) and interior knot derivatives (numBins-1). Inside
// the interval [-TailBound, TailBound] the transform is a strictly
// increasing piecewise rational quadratic; outside it is the identity, and
// the boundary derivatives are pinned to 1 so the two regions join with
// matching slope.
package spline

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Options holds the numerical floors of the spline parameterization.
type Options struct {
	// TailBound is the half-width of the spline interval.
	TailBound float32

	// MinBinWidth and MinBinHeight keep every bin strictly positive after
	// the softmax normalization.
	MinBinWidth  float32
	MinBinHeight float32

	// MinDerivative keeps knot derivatives strictly positive after the
	// softplus transform.
	MinDerivative float32
}

// DefaultOptions returns the standard floors.
func DefaultOptions() Options {
	return Options{
		TailBound:     5.0,
		MinBinWidth:   1e-3,
		MinBinHeight:  1e-3,
		MinDerivative: 1e-3,
	}
}

// Transform maps a single value through the spline. With inverse
// false it maps x to y and returns log|dy/dx|; with inverse true it maps
// y back to x and returns the negated log-derivative, so a forward pass
// followed by an inverse pass sums to zero.
//
// widths and heights must have numBins elements, derivs numBins-1.
func Transform(x float32, widths, heights, derivs []float32, inverse bool, opts Options) (float32, float32) {
	numBins := len(widths)
	if numBins == 0 || len(heights) != numBins || len(derivs) != numBins-1 {
		panic(fmt.Sprintf("spline: inconsistent parameter lengths: widths=%d heights=%d derivatives=%d",
			len(widths), len(heights), len(derivs)))
	}

	bound := opts.TailBound
	if x < -bound || x > bound {
		// Identity tails.
		return x, 0
	}

	cumWidths, binWidths := normalizeBins(widths, opts.MinBinWidth, bound)
	cumHeights, binHeights := normalizeBins(heights, opts.MinBinHeight, bound)
	d := normalizeDerivatives(derivs, opts.MinDerivative)

	var k int
	if inverse {
		k = locateBin(cumHeights, x)
	} else {
		k = locateBin(cumWidths, x)
	}

	delta := binHeights[k] / binWidths[k]
	dLo, dHi := d[k], d[k+1]

	if !inverse {
		theta := (x - cumWidths[k]) / binWidths[k]
		thetaOneMinus := theta * (1 - theta)

		numerator := binHeights[k] * (delta*theta*theta + dLo*thetaOneMinus)
		denominator := delta + (dLo+dHi-2*delta)*thetaOneMinus
		y := cumHeights[k] + numerator/denominator

		derivNumerator := delta * delta * (dHi*theta*theta + 2*delta*thetaOneMinus + dLo*(1-theta)*(1-theta))
		logabsdet := math32.Log(derivNumerator) - 2*math32.Log(denominator)
		return y, logabsdet
	}

	// Invert the rational quadratic on bin k by solving for theta.
	dy := x - cumHeights[k]
	cross := dLo + dHi - 2*delta

	a := binHeights[k]*(delta-dLo) + dy*cross
	b := binHeights[k]*dLo - dy*cross
	c := -delta * dy

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		panic(fmt.Sprintf("spline: negative discriminant %v inverting value %v", discriminant, x))
	}

	theta := 2 * c / (-b - math32.Sqrt(discriminant))
	thetaOneMinus := theta * (1 - theta)
	out := theta*binWidths[k] + cumWidths[k]

	denominator := delta + cross*thetaOneMinus
	derivNumerator := delta * delta * (dHi*theta*theta + 2*delta*thetaOneMinus + dLo*(1-theta)*(1-theta))
	logabsdet := -(math32.Log(derivNumerator) - 2*math32.Log(denominator))
	return out, logabsdet
}

// normalizeBins turns unnormalized logits into bin edges over
// [-bound, bound]. A softmax gives the proportions, each floored at
// minBin, and the edges are pinned to the interval ends so float error
// cannot leave a gap at the boundary.
func normalizeBins(logits []float32, minBin, bound float32) (cum, bins []float32) {
	numBins := len(logits)

	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float32
	exps := make([]float32, numBins)
	for i, v := range logits {
		e := math32.Exp(v - maxLogit)
		exps[i] = e
		sum += e
	}

	fill := 1 - minBin*float32(numBins)
	cum = make([]float32, numBins+1)
	var acc float32
	for i, e := range exps {
		acc += minBin + fill*(e/sum)
		cum[i+1] = acc
	}

	for i := range cum {
		cum[i] = 2*bound*cum[i] - bound
	}
	cum[0] = -bound
	cum[numBins] = bound

	bins = make([]float32, numBins)
	for i := range bins {
		bins[i] = cum[i+1] - cum[i]
	}
	return cum, bins
}

// normalizeDerivatives maps interior knot logits through a floored
// softplus and pads both boundary knots with the constant whose softplus
// lands exactly at slope 1, joining the linear tails smoothly.
func normalizeDerivatives(derivs []float32, minDerivative float32) []float32 {
	boundary := math32.Log(math32.Exp(1-minDerivative) - 1)

	d := make([]float32, len(derivs)+2)
	d[0] = minDerivative + softplus(boundary)
	d[len(d)-1] = d[0]
	for i, v := range derivs {
		d[i+1] = minDerivative + softplus(v)
	}
	return d
}

// softplus computes log(1 + exp(x)) with a linear approximation above 20,
// where the exact form overflows float32.
func softplus(x float32) float32 {
	if x > 20 {
		return x
	}
	return math32.Log(1 + math32.Exp(x))
}

// locateBin returns the index of the bin containing v: the largest k with
// cum[k] <= v, clamped to the last bin so v at the upper boundary stays
// in range. Bin counts are small, so a linear scan beats binary search.
func locateBin(cum []float32, v float32) int {
	k := 0
	for k+1 < len(cum)-1 && cum[k+1] <= v {
		k++
	}
	return k
}
