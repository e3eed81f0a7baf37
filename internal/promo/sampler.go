// Package promo builds the randomised promotional content shown when a client
// unlocks the PRO feature set.
package promo

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Source is the randomness the samplers draw from. IntN returns a uniform
// integer in [0, n) and may panic if n <= 0. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource draws from the concurrency-safe top-level math/rand/v2 source.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns the process-wide random source.
func DefaultSource() Source { return globalSource{} }

var (
	ErrEmptyTable    = errors.New("promo: weighted table is empty")
	ErrInvalidWeight = errors.New("promo: weight must be > 0")
	ErrSampleSize    = errors.New("promo: sample size out of range")
)

// Weighted pairs an item with its selection weight.
type Weighted[T any] struct {
	Item   T
	Weight int
}

// Choose picks one item from table with probability Weight / total weight.
// It draws r in [0, total) and returns the first item whose cumulative weight
// exceeds r, walking the table in order.
func Choose[T any](src Source, table []Weighted[T]) (T, error) {
	var zero T
	if len(table) == 0 {
		return zero, ErrEmptyTable
	}

	total := 0
	for i, w := range table {
		if w.Weight <= 0 {
			return zero, fmt.Errorf("%w: entry %d has weight %d", ErrInvalidWeight, i, w.Weight)
		}
		total += w.Weight
	}

	r := src.IntN(total)
	cumulative := 0
	for _, w := range table {
		cumulative += w.Weight
		if r < cumulative {
			return w.Item, nil
		}
	}

	// Unreachable for a Source honouring its contract.
	return table[len(table)-1].Item, nil
}

// Sample draws k distinct elements of pool without replacement; every
// k-subset is equally likely. pool is not modified.
func Sample[T any](src Source, pool []T, k int) ([]T, error) {
	if k < 0 || k > len(pool) {
		return nil, fmt.Errorf("%w: k=%d, pool=%d", ErrSampleSize, k, len(pool))
	}

	tmp := make([]T, len(pool))
	copy(tmp, pool)

	// Partial Fisher-Yates: the first k slots end up holding the sample.
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(tmp)-i)
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp[:k:k], nil
}

// intBetween returns a uniform integer in [lo, hi].
func intBetween(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}
