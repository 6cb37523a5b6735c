package domain

// MaxHash is the inclusive upper bound for a signature slot and for the
// permutation coefficients: every slot lies in [0, MaxHash].
const MaxHash uint64 = (1 << 32) - 1

// MersennePrime is the modulus used by the universal hash family
// p_i = ((a_i*h + b_i) mod MersennePrime) & MaxHash. 2^61-1 is prime and
// large enough that a_i*h never overflows a uint64 for h, a_i <= MaxHash.
const MersennePrime uint64 = (1 << 61) - 1

// Index construction defaults (spec §4.3).
const (
	DefaultThreshold = 0.9
	DefaultWeightFP  = 0.5
	DefaultWeightFN  = 0.5
	DefaultNumPerm   = 128
)

// WeightSumTolerance bounds how far w_fp+w_fn may drift from 1.0 and still
// be accepted; set a little above 2 ULP of 1.0 to absorb accumulated
// floating point error from repeated weight arithmetic, not just a single
// addition.
const WeightSumTolerance = 1e-15

// QuadratureTolerance is the convergence tolerance for the adaptive
// integration used to score candidate (b, r) band layouts.
const QuadratureTolerance = 1e-3
