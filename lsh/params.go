// Package lsh implements a banded Locality-Sensitive-Hashing index over
// minhash.Sketch signatures: the (b, r) band layout that best trades false
// positives for false negatives at a given similarity threshold, and the
// Index data structure built on top of it.
package lsh

import (
	"math"

	"github.com/ludo-technologies/minhashlsh/domain"
)

// Weights assigns the relative penalty of a false positive versus a false
// negative when optimizing a (b, r) band layout. FP+FN must be ~1.0.
type Weights struct {
	FP float64
	FN float64
}

// Params is the band layout chosen for a signature of length NumPerm: B
// bands of R rows each, with B*R <= NumPerm. The unused tail of the
// signature (indices >= B*R) never participates in indexing.
type Params struct {
	B int
	R int
}

// falsePositiveProbability is P(s; b, r) = 1 - (1 - s^r)^b, the probability
// that two items of true similarity s become LSH candidates.
func falsePositiveProbability(s float64, b, r int) float64 {
	return 1 - math.Pow(1-math.Pow(s, float64(r)), float64(b))
}

// integrate performs adaptive Simpson quadrature of f over [lo, hi] to the
// given tolerance. It is a stdlib-only building block of the library
// core: no numerical-integration package appears anywhere in the
// example corpus, so there is no third-party candidate to prefer over a
// direct implementation (see DESIGN.md).
func integrate(f func(float64) float64, lo, hi, tolerance float64) float64 {
	if lo >= hi {
		return 0
	}
	mid := (lo + hi) / 2
	fLo, fMid, fHi := f(lo), f(mid), f(hi)
	whole := simpson(fLo, fMid, fHi, hi-lo)
	return adaptiveSimpson(f, lo, hi, fLo, fMid, fHi, whole, tolerance, 20)
}

func simpson(fLo, fMid, fHi, width float64) float64 {
	return width / 6 * (fLo + 4*fMid + fHi)
}

func adaptiveSimpson(f func(float64) float64, lo, hi, fLo, fMid, fHi, whole, tolerance float64, depth int) float64 {
	mid := (lo + hi) / 2
	leftMid := (lo + mid) / 2
	rightMid := (mid + hi) / 2
	fLeftMid := f(leftMid)
	fRightMid := f(rightMid)

	left := simpson(fLo, fLeftMid, fMid, mid-lo)
	right := simpson(fMid, fRightMid, fHi, hi-mid)

	if depth <= 0 || math.Abs(left+right-whole) <= 15*tolerance {
		return left + right + (left+right-whole)/15
	}
	return adaptiveSimpson(f, lo, mid, fLo, fLeftMid, fMid, left, tolerance/2, depth-1) +
		adaptiveSimpson(f, mid, hi, fMid, fRightMid, fHi, right, tolerance/2, depth-1)
}

// falsePositiveMass is FP(t, b, r) = integral_0^t P(s; b, r) ds: the
// probability mass of candidates below the threshold.
func falsePositiveMass(t float64, b, r int) float64 {
	if t <= 0 {
		return 0
	}
	return integrate(func(s float64) float64 { return falsePositiveProbability(s, b, r) }, 0, t, domain.QuadratureTolerance)
}

// falseNegativeMass is FN(t, b, r) = integral_t^1 (1 - P(s; b, r)) ds.
func falseNegativeMass(t float64, b, r int) float64 {
	if t >= 1 {
		return 0
	}
	return integrate(func(s float64) float64 { return 1 - falsePositiveProbability(s, b, r) }, t, 1, domain.QuadratureTolerance)
}

// FindOptimalParams picks the (b, r) minimizing
// E(b, r) = w.FP*FP(threshold,b,r) + w.FN*FN(threshold,b,r) over all
// integer b, r >= 1 with b*r <= numPerm. Ties are broken by ascending
// iteration order (b outer, r inner) — the first minimum found wins.
// NaN scores (degenerate quadrature) are treated as +Inf, so (b=1, r=1)
// always yields a finite score and a minimum always exists.
func FindOptimalParams(numPerm int, threshold float64, w Weights) Params {
	best := Params{B: 1, R: 1}
	bestScore := math.Inf(1)

	for b := 1; b <= numPerm; b++ {
		for r := 1; b*r <= numPerm; r++ {
			fp := falsePositiveMass(threshold, b, r)
			fn := falseNegativeMass(threshold, b, r)
			score := w.FP*fp + w.FN*fn
			if math.IsNaN(score) {
				score = math.Inf(1)
			}
			if score < bestScore {
				bestScore = score
				best = Params{B: b, R: r}
			}
		}
	}
	return best
}
