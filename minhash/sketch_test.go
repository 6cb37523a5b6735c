package minhash

import (
	"testing"

	"github.com/ludo-technologies/minhashlsh/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOf(v uint64) *uint64 { return &v }

func TestNew_RejectsLowNumPerm(t *testing.T) {
	_, err := New(1, seedOf(1))
	require.Error(t, err)

	var domainErr domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeNumPermTooLow, domainErr.Code)
}

func TestNew_SeedDeterminism(t *testing.T) {
	m1, err := New(4, seedOf(1))
	require.NoError(t, err)
	m2, err := New(4, seedOf(1))
	require.NoError(t, err)

	assert.Equal(t, m1.permutations, m2.permutations)
	assert.Equal(t, m1.signature, m2.signature)
}

func TestNew_InitialSignatureIsMaxHash(t *testing.T) {
	m, err := New(8, seedOf(7))
	require.NoError(t, err)

	for _, v := range m.Signature() {
		assert.Equal(t, domain.MaxHash, v)
	}
}

func TestJaccard_EmptySketchesAreIdentical(t *testing.T) {
	m1, err := New(4, seedOf(1))
	require.NoError(t, err)
	m2, err := New(4, seedOf(1))
	require.NoError(t, err)

	sim, err := m1.Jaccard(m2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)

	m2.Update(12)

	sim, err = m1.Jaccard(m2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

func TestJaccard_SelfSimilarityIsOne(t *testing.T) {
	m, err := New(32, seedOf(42))
	require.NoError(t, err)
	for _, v := range []string{"a", "b", "c"} {
		m.Update(v)
	}

	sim, err := m.Jaccard(m)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)
}

func TestJaccard_Bounds(t *testing.T) {
	m1, err := New(64, seedOf(1))
	require.NoError(t, err)
	m2, err := New(64, seedOf(1))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		m1.Update(i)
	}
	for i := 25; i < 75; i++ {
		m2.Update(i)
	}

	sim, err := m1.Jaccard(m2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)
}

func TestJaccard_DifferentSeeds(t *testing.T) {
	m1, err := New(4, seedOf(1))
	require.NoError(t, err)
	m2, err := New(4, seedOf(2))
	require.NoError(t, err)

	_, err = m1.Jaccard(m2)
	require.Error(t, err)

	var domainErr domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeDifferentSeeds, domainErr.Code)
}

func TestJaccard_DifferentNumPerm(t *testing.T) {
	m1, err := New(4, seedOf(1))
	require.NoError(t, err)
	m2, err := New(8, seedOf(1))
	require.NoError(t, err)

	_, err = m1.Jaccard(m2)
	require.Error(t, err)

	var domainErr domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeDifferentNumPerm, domainErr.Code)
}

func TestUpdate_IsMonotone(t *testing.T) {
	m, err := New(16, seedOf(1))
	require.NoError(t, err)

	before := append([]uint64(nil), m.Signature()...)
	m.Update(12)
	afterFirst := append([]uint64(nil), m.Signature()...)
	for i := range before {
		assert.LessOrEqual(t, afterFirst[i], before[i])
	}

	m.Update(13)
	afterSecond := m.Signature()
	for i := range afterFirst {
		assert.LessOrEqual(t, afterSecond[i], afterFirst[i])
	}
}

func TestUpdate_Commutes(t *testing.T) {
	m1, err := New(16, seedOf(1))
	require.NoError(t, err)
	m2, err := New(16, seedOf(1))
	require.NoError(t, err)

	m1.Update("a")
	m1.Update("b")

	m2.Update("b")
	m2.Update("a")

	assert.Equal(t, m1.Signature(), m2.Signature())
}

func TestUpdate_NeverIncreases(t *testing.T) {
	m, err := New(16, seedOf(1))
	require.NoError(t, err)

	prev := append([]uint64(nil), m.Signature()...)
	for i := 0; i < 100; i++ {
		m.Update(i)
		cur := m.Signature()
		for j := range cur {
			assert.LessOrEqual(t, cur[j], prev[j])
		}
		prev = append([]uint64(nil), cur...)
	}
}

func TestJaccard_AgainstExactOverIdenticalSets(t *testing.T) {
	elems := []string{"x", "y", "z", "w", "q"}

	m1, err := New(128, seedOf(5))
	require.NoError(t, err)
	m2, err := New(128, seedOf(5))
	require.NoError(t, err)

	for _, e := range elems {
		m1.Update(e)
		m2.Update(e)
	}

	sim, err := m1.Jaccard(m2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)
}
