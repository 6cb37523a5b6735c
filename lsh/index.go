package lsh

import (
	"encoding/binary"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ludo-technologies/minhashlsh/domain"
	"github.com/ludo-technologies/minhashlsh/minhash"
)

// bandKey is a fixed-width byte encoding of an ordered sequence of r
// signature slots. It is used as a map key because a raw []uint64 is not
// comparable; the encoding is order-preserving and lossless, so distinct
// band values never collide and equal values always produce the same key.
type bandKey string

func encodeBand(signature []uint64, lo, hi int) bandKey {
	buf := make([]byte, (hi-lo)*8)
	for i := lo; i < hi; i++ {
		binary.BigEndian.PutUint64(buf[(i-lo)*8:], signature[i])
	}
	return bandKey(buf)
}

// bucket is the set of external keys sharing one band key. It mirrors the
// teacher's LSHIndex.buckets ([]string per key), but as a map for O(1)
// membership checks during Remove.
type bucket[K comparable] map[K]struct{}

// Index stores keyed minhash.Sketch signatures banded into Params.B hash
// tables and answers approximate-nearest-neighbor queries for a configured
// similarity Threshold. Mutating operations (Insert, Remove) require
// exclusive access; read-only operations (Query, ContainsKey, GetCounts,
// IsEmpty) may run concurrently with each other once no mutator is active,
// guarded here by a sync.RWMutex exactly as the teacher's LSHIndex does.
type Index[K comparable] struct {
	mu sync.RWMutex

	numPerm   int
	threshold float64
	weights   Weights
	params    Params

	// tables[i] maps a band key to the set of external keys sharing it
	// within band i. An *orderedmap.OrderedMap is used instead of a plain
	// map so GetCounts has a stable, insertion-order iteration instead of
	// depending on Go's randomized map order.
	tables []*orderedmap.OrderedMap[bandKey, bucket[K]]

	// keys[k] is the ordered sequence of band keys inserted for k,
	// letting Remove undo an Insert in O(b) without rescanning buckets.
	keys map[K][]bandKey
}

// New creates an empty Index using the spec defaults: threshold 0.9 and
// weights (0.5, 0.5). Use NewWithOptions to override either.
func New[K comparable](numPerm int) (*Index[K], error) {
	return NewWithOptions[K](numPerm, nil, nil)
}

// NewWithOptions creates an Index with an explicit weights and/or
// threshold override. Either may be nil to take the spec default.
func NewWithOptions[K comparable](numPerm int, weights *Weights, threshold *float64) (*Index[K], error) {
	if numPerm < 2 {
		return nil, domain.NewNumPermTooLowError(numPerm)
	}

	t := domain.DefaultThreshold
	if threshold != nil {
		t = *threshold
	}
	if t < 0 || t > 1 {
		return nil, domain.NewWrongThresholdError(t)
	}

	w := Weights{FP: domain.DefaultWeightFP, FN: domain.DefaultWeightFN}
	if weights != nil {
		w = *weights
	}
	if w.FP < 0 || w.FP > 1 || w.FN < 0 || w.FN > 1 {
		return nil, domain.NewWrongWeightError(w.FP, w.FN)
	}
	if diff := w.FP + w.FN - 1.0; diff > domain.WeightSumTolerance || diff < -domain.WeightSumTolerance {
		return nil, domain.NewUnexpectedWeightSumError(w.FP, w.FN)
	}

	params := FindOptimalParams(numPerm, t, w)

	idx := &Index[K]{
		numPerm:   numPerm,
		threshold: t,
		weights:   w,
		params:    params,
		tables:    make([]*orderedmap.OrderedMap[bandKey, bucket[K]], params.B),
		keys:      make(map[K][]bandKey),
	}
	for i := range idx.tables {
		idx.tables[i] = orderedmap.New[bandKey, bucket[K]]()
	}
	return idx, nil
}

// NumPerm, Threshold, Weights and Params expose the index's configuration.
func (idx *Index[K]) NumPerm() int       { return idx.numPerm }
func (idx *Index[K]) Threshold() float64 { return idx.threshold }
func (idx *Index[K]) Weights() Weights   { return idx.weights }
func (idx *Index[K]) Params() Params     { return idx.params }

func (idx *Index[K]) bandKeys(signature []uint64) []bandKey {
	v := make([]bandKey, idx.params.B)
	for i := 0; i < idx.params.B; i++ {
		lo := i * idx.params.R
		v[i] = encodeBand(signature, lo, lo+idx.params.R)
	}
	return v
}

// Insert adds a key<->sketch binding. Re-inserting an already-present key
// overwrites its band-key record but does not remove the stale entries the
// prior insertion left in the band tables — this matches the source
// implementation's documented (if surprising) contract; callers wanting
// replace semantics must Remove first.
func (idx *Index[K]) Insert(key K, sketch *minhash.Sketch) error {
	if sketch.NumPerm() != idx.numPerm {
		return domain.NewDifferentNumPermError(sketch.NumPerm(), idx.numPerm)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	v := idx.bandKeys(sketch.Signature())
	idx.keys[key] = v
	for i, bk := range v {
		b, present := idx.tables[i].Get(bk)
		if !present {
			b = make(bucket[K])
		}
		b[key] = struct{}{}
		idx.tables[i].Set(bk, b)
	}
	return nil
}

// InsertMany validates every (key, sketch) pair's signature length before
// mutating any table, so the whole batch fails atomically if one entry is
// malformed (spec §7: operation-level errors must leave the receiver
// unchanged).
func (idx *Index[K]) InsertMany(entries map[K]*minhash.Sketch) error {
	for _, sketch := range entries {
		if sketch.NumPerm() != idx.numPerm {
			return domain.NewDifferentNumPermError(sketch.NumPerm(), idx.numPerm)
		}
	}
	for k, sketch := range entries {
		if err := idx.Insert(k, sketch); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes a key and undoes its band-table entries, pruning any
// bucket that becomes empty.
func (idx *Index[K]) Remove(key K) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	v, ok := idx.keys[key]
	if !ok {
		return domain.NewKeyNotFoundError(key)
	}

	for i, bk := range v {
		b, present := idx.tables[i].Get(bk)
		if !present {
			continue
		}
		delete(b, key)
		if len(b) == 0 {
			idx.tables[i].Delete(bk)
		} else {
			idx.tables[i].Set(bk, b)
		}
	}
	delete(idx.keys, key)
	return nil
}

// ContainsKey reports whether key is currently indexed.
func (idx *Index[K]) ContainsKey(key K) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.keys[key]
	return ok
}

// Query returns the set of external keys whose sketch shares at least one
// band with sketch. The result is approximate: a returned key may have
// true similarity below Threshold, and a key above Threshold is missed
// only with the false-negative probability implied by Params.
func (idx *Index[K]) Query(sketch *minhash.Sketch) (map[K]struct{}, error) {
	if sketch.NumPerm() != idx.numPerm {
		return nil, domain.NewDifferentNumPermError(sketch.NumPerm(), idx.numPerm)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	candidates := make(map[K]struct{})
	bandKeys := idx.bandKeys(sketch.Signature())
	for i, bk := range bandKeys {
		b, present := idx.tables[i].Get(bk)
		if !present {
			continue
		}
		for k := range b {
			candidates[k] = struct{}{}
		}
	}
	return candidates, nil
}

// BandCounts is a single band's band-key-to-bucket-size snapshot, in the
// order the band keys were first inserted.
type BandCounts struct {
	Counts *orderedmap.OrderedMap[string, int]
}

// GetCounts returns, for each band in order, a read-only snapshot mapping
// each band key (its raw fixed-width big-endian byte encoding, held in a
// string) to its current bucket size.
func (idx *Index[K]) GetCounts() []BandCounts {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]BandCounts, len(idx.tables))
	for i, table := range idx.tables {
		counts := orderedmap.New[string, int]()
		for pair := table.Oldest(); pair != nil; pair = pair.Next() {
			counts.Set(string(pair.Key), len(pair.Value))
		}
		out[i] = BandCounts{Counts: counts}
	}
	return out
}

// IsEmpty reports whether every band table is empty. Because Insert
// populates every band synchronously, table emptiness is uniform across
// bands, so checking one table suffices.
func (idx *Index[K]) IsEmpty() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.tables) == 0 {
		return true
	}
	return idx.tables[0].Len() == 0
}

// Len returns the number of distinct keys currently indexed.
func (idx *Index[K]) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.keys)
}
