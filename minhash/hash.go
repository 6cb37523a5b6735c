package minhash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// hashElement is the one fixed element hasher H described in spec §6. It
// must never change: two sketches built from the same seed over the same
// elements are only bit-identical if every implementation agrees on H.
// We use xxHash (64-bit) and keep only its low 32 bits, matching MaxHash.
//
// fmt.Sprint is used to turn an arbitrary hashable value into bytes rather
// than requiring callers to pre-serialize; this mirrors how the teacher's
// MinHasher.computeBaseHash accepts a bare string and hashes its bytes
// directly.
func hashElement(x any) uint64 {
	var data []byte
	if s, ok := x.(string); ok {
		data = []byte(s)
	} else if b, ok := x.([]byte); ok {
		data = b
	} else {
		data = []byte(fmt.Sprint(x))
	}
	return xxhash.Sum64(data) & 0xFFFFFFFF
}
