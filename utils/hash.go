package utils

import (
	"hash/maphash"

	"github.com/benbjohnson/immutable"
)

// seed is shared by every comparable hasher in the process. Hashes never
// leave the process, so a random seed is fine.
var seed = maphash.MakeSeed()

// comparableHasher hashes any comparable value with the runtime hash.
type comparableHasher[T comparable] struct{}

// Equal checks that a and b are equal with ==.
func (comparableHasher[T]) Equal(a, b T) bool { return a == b }

// Hash computes the uint32 hash of a.
func (comparableHasher[T]) Hash(a T) uint32 {
	h := maphash.Comparable(seed, a)
	return uint32(h ^ (h >> 32))
}

// ComparableHasher is a generic hasher factory for comparable keys,
// including interface and struct keys that immutable's default hasher rejects.
func ComparableHasher[T comparable]() immutable.Hasher[T] { return comparableHasher[T]{} }

// NewImmMap creates an empty immutable map keyed by comparable values.
func NewImmMap[K comparable, V any]() *immutable.Map[K, V] {
	return immutable.NewMap[K, V](ComparableHasher[K]())
}
