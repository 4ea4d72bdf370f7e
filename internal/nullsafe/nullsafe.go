// Package nullsafe implements equality where two NULLs compare equal,
// the in-process counterpart of the loader's null-safe SQL joins.
//
// A nil pointer stands for NULL.
package nullsafe

import (
	"fmt"
	"hash/maphash"
	"strings"
)

// Equal reports whether a and b are both NULL or both hold equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Key is a natural key whose members may be NULL.
type Key []*string

// NewKey builds a key from its members.
func NewKey(members ...*string) Key {
	return Key(members)
}

// Equal reports whether every member of k equals the same member of o
// under null-safe equality. Keys of different arity are never equal.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if !Equal(k[i], o[i]) {
			return false
		}
	}
	return true
}

// String renders k with NULL members spelled out.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, m := range k {
		if m == nil {
			parts[i] = "NULL"
		} else {
			parts[i] = fmt.Sprintf("%q", *m)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Index groups keys by null-safe equality. Keys are bucketed by a hash
// that NULL-safe equal keys share; members of a bucket are told apart
// with Key.Equal.
type Index struct {
	seed    maphash.Seed
	buckets map[uint64][]*group
	groups  []*group
}

type group struct {
	key   Key
	count int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		seed:    maphash.MakeSeed(),
		buckets: make(map[uint64][]*group),
	}
}

func (x *Index) hash(k Key) uint64 {
	var h maphash.Hash
	h.SetSeed(x.seed)
	for _, m := range k {
		if m == nil {
			_ = h.WriteByte(0)
			continue
		}
		_ = h.WriteByte(1)
		_, _ = h.WriteString(*m)
		_ = h.WriteByte(0)
	}
	return h.Sum64()
}

// Add records one occurrence of k and returns how many times an equal
// key has now been seen.
func (x *Index) Add(k Key) int {
	sum := x.hash(k)
	for _, g := range x.buckets[sum] {
		if g.key.Equal(k) {
			g.count++
			return g.count
		}
	}
	g := &group{key: k, count: 1}
	x.buckets[sum] = append(x.buckets[sum], g)
	x.groups = append(x.groups, g)
	return 1
}

// Len returns the number of distinct keys.
func (x *Index) Len() int {
	return len(x.groups)
}

// Duplicate is a key seen more than once.
type Duplicate struct {
	Key   Key
	Count int
}

// Duplicates returns every key seen more than once, in first-seen order.
func (x *Index) Duplicates() []Duplicate {
	var dups []Duplicate
	for _, g := range x.groups {
		if g.count > 1 {
			dups = append(dups, Duplicate{Key: g.key, Count: g.count})
		}
	}
	return dups
}
