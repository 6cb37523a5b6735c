package minhash

import "testing"

func BenchmarkUpdate(b *testing.B) {
	seed := uint64(1)
	m, err := New(128, &seed)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Update(i)
	}
}

func BenchmarkJaccard(b *testing.B) {
	seed := uint64(1)
	m1, err := New(128, &seed)
	if err != nil {
		b.Fatal(err)
	}
	m2, err := New(128, &seed)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		m1.Update(i)
		m2.Update(i + 500)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m1.Jaccard(m2); err != nil {
			b.Fatal(err)
		}
	}
}
