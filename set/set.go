// Package set implements a sorted, deduplicated set backed by a slice.
//
// Every binary operation is a single linear merge over both operands, so
// sets stay cheap to compare, hash and combine.
package set

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type Set[T cmp.Ordered] struct {
	items []T
}

// New builds a normalized set from values. The input slice is copied.
func New[T cmp.Ordered](values ...T) Set[T] {
	items := slices.Clone(values)
	slices.Sort(items)
	return Set[T]{items: slices.Compact(items)}
}

// sorted wraps items that are already strictly increasing.
func sorted[T cmp.Ordered](items []T) Set[T] {
	return Set[T]{items: items}
}

func (s Set[T]) Len() int {
	return len(s.items)
}

func (s Set[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns the elements in ascending order. Callers must not modify
// the returned slice.
func (s Set[T]) Items() []T {
	return s.items
}

func (s Set[T]) Contains(v T) bool {
	_, ok := slices.BinarySearch(s.items, v)
	return ok
}

// Insert appends v without restoring order. Call Normalize before relying
// on any ordered operation.
func (s *Set[T]) Insert(v T) {
	s.items = append(s.items, v)
}

func (s *Set[T]) Normalize() {
	slices.Sort(s.items)
	s.items = slices.Compact(s.items)
}

func (s Set[T]) Union(other Set[T]) Set[T] {
	a, b := s.items, other.items
	result := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			result = append(result, a[i])
			i++
		case a[i] > b[j]:
			result = append(result, b[j])
			j++
		default:
			result = append(result, a[i])
			i++
			j++
		}
	}
	result = append(result, a[i:]...)
	result = append(result, b[j:]...)
	return sorted(result)
}

func (s Set[T]) Intersection(other Set[T]) Set[T] {
	a, b := s.items, other.items
	result := make([]T, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			result = append(result, a[i])
			i++
			j++
		}
	}
	return sorted(result)
}

// Difference returns s - other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	a, b := s.items, other.items
	result := make([]T, 0, len(a))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			result = append(result, a[i])
			i++
		case a[i] > b[j]:
			j++
		default:
			i++
			j++
		}
	}
	result = append(result, a[i:]...)
	return sorted(result)
}

// IsSubset reports whether every element of s is in other.
func (s Set[T]) IsSubset(other Set[T]) bool {
	a, b := s.items, other.items
	if len(a) > len(b) {
		return false
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			return false
		case a[i] > b[j]:
			j++
		default:
			i++
			j++
		}
	}
	return i == len(a)
}

func (s Set[T]) IsSuperset(other Set[T]) bool {
	return other.IsSubset(s)
}

func (s Set[T]) IsDisjoint(other Set[T]) bool {
	a, b := s.items, other.items
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			return false
		}
	}
	return true
}

func (s Set[T]) Equal(other Set[T]) bool {
	return slices.Equal(s.items, other.items)
}

// Compare orders sets lexicographically by their elements.
func (s Set[T]) Compare(other Set[T]) int {
	return slices.Compare(s.items, other.items)
}

// Key is a structural hash key: equal sets produce equal keys.
func (s Set[T]) Key() string {
	var sb strings.Builder
	for i, v := range s.items {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprint(&sb, v)
	}
	return sb.String()
}

func (s Set[T]) String() string {
	return "{" + s.Key() + "}"
}
