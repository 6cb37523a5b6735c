// Package minhash implements MinHash sketches: fixed-length signatures
// whose pairwise equality rate approximates the Jaccard similarity of the
// sets they summarize.
package minhash

import (
	"math/rand"

	"github.com/ludo-technologies/minhashlsh/domain"
)

// permutation holds the coefficients of one universal hash
// h(x) = (a*x + b) mod MersennePrime used to realize one signature slot.
type permutation struct {
	a, b uint64
}

// Sketch maintains a length-NumPerm MinHash signature over an unbounded
// stream of elements fed through Update. It is not safe for concurrent
// mutation; concurrent reads of a Sketch that is no longer being updated
// are safe.
type Sketch struct {
	seed         *uint64
	numPerm      int
	signature    []uint64
	permutations []permutation
}

// New creates a Sketch with the given signature length. If seed is nil,
// the permutation family is drawn from system entropy and is therefore
// not reproducible; if seed is non-nil, two Sketches built with the same
// (numPerm, *seed) have bit-identical permutations and initial signature.
func New(numPerm int, seed *uint64) (*Sketch, error) {
	if numPerm < 2 {
		return nil, domain.NewNumPermTooLowError(numPerm)
	}

	s := &Sketch{
		numPerm:      numPerm,
		signature:    make([]uint64, numPerm),
		permutations: make([]permutation, numPerm),
	}
	for i := range s.signature {
		s.signature[i] = domain.MaxHash
	}

	var rngSeed int64
	if seed != nil {
		v := *seed
		s.seed = &v
		rngSeed = int64(v)
	} else {
		rngSeed = rand.Int63()
	}

	rng := rand.New(rand.NewSource(rngSeed))
	for i := 0; i < numPerm; i++ {
		s.permutations[i] = permutation{
			a: uint64(rng.Int63n(int64(domain.MaxHash) + 1)),
			b: uint64(rng.Int63n(int64(domain.MaxHash) + 1)),
		}
	}
	return s, nil
}

// NumPerm returns the signature length.
func (s *Sketch) NumPerm() int { return s.numPerm }

// Seed returns the seed used to construct the sketch and whether one was
// supplied.
func (s *Sketch) Seed() (seed uint64, ok bool) {
	if s.seed == nil {
		return 0, false
	}
	return *s.seed, true
}

// Signature returns the current signature. The returned slice is owned by
// the Sketch and must not be mutated by the caller.
func (s *Sketch) Signature() []uint64 { return s.signature }

// Update folds one element into the signature. Every slot is
// non-increasing across successive calls: signature[i] = min(signature[i],
// p_i) where p_i = ((a_i*h + b_i) mod MersennePrime) & MaxHash and
// h = H(x) mod 2^32.
func (s *Sketch) Update(x any) {
	h := hashElement(x)
	for i, p := range s.permutations {
		v := ((p.a*h + p.b) % domain.MersennePrime) & domain.MaxHash
		if v < s.signature[i] {
			s.signature[i] = v
		}
	}
}

// Jaccard estimates the Jaccard similarity between two sketches as the
// fraction of signature slots that agree. It fails if the sketches were
// built with different seeds or signature lengths, since only sketches
// sharing a permutation family produce comparable estimates.
func (s *Sketch) Jaccard(other *Sketch) (float64, error) {
	sSeed, sOK := s.Seed()
	oSeed, oOK := other.Seed()
	if sOK != oOK || (sOK && sSeed != oSeed) {
		return 0, domain.NewDifferentSeedsError()
	}
	if s.numPerm != other.numPerm {
		return 0, domain.NewDifferentNumPermError(other.numPerm, s.numPerm)
	}

	matches := 0
	for i := range s.signature {
		if s.signature[i] == other.signature[i] {
			matches++
		}
	}
	return float64(matches) / float64(s.numPerm), nil
}
