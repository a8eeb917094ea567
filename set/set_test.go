package set

import (
	"math/rand"
	"slices"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomValues(r *rand.Rand) []int {
	n := r.Intn(12)
	values := make([]int, n)
	for i := range values {
		values[i] = r.Intn(16)
	}
	return values
}

func sortedMapset(s mapset.Set[int]) []int {
	values := s.ToSlice()
	slices.Sort(values)
	if len(values) == 0 {
		return []int{}
	}
	return values
}

func items(s Set[int]) []int {
	if s.Len() == 0 {
		return []int{}
	}
	return s.Items()
}

func TestNewNormalizes(t *testing.T) {
	s := New(3, 1, 2, 3, 1)
	assert.Equal(t, []int{1, 2, 3}, s.Items())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))
	assert.True(t, New[int]().IsEmpty())
}

func TestNormalizeIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		s := New(randomValues(r)...)
		again := New(s.Items()...)
		assert.True(t, s.Equal(again))
		assert.Equal(t, s.Key(), again.Key())
	}
}

func TestAlgebraAgainstReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		xs, ys := randomValues(r), randomValues(r)
		a, b := New(xs...), New(ys...)
		ra, rb := mapset.NewSet(xs...), mapset.NewSet(ys...)

		require.Equal(t, sortedMapset(ra.Union(rb)), items(a.Union(b)), "union %v %v", xs, ys)
		require.Equal(t, sortedMapset(ra.Intersect(rb)), items(a.Intersection(b)), "intersection %v %v", xs, ys)
		require.Equal(t, sortedMapset(ra.Difference(rb)), items(a.Difference(b)), "difference %v %v", xs, ys)
		require.Equal(t, ra.IsSubset(rb), a.IsSubset(b), "subset %v %v", xs, ys)
		require.Equal(t, ra.IsSuperset(rb), a.IsSuperset(b), "superset %v %v", xs, ys)
		require.Equal(t, ra.Intersect(rb).Cardinality() == 0, a.IsDisjoint(b), "disjoint %v %v", xs, ys)
	}
}

func TestInsertDefersOrdering(t *testing.T) {
	s := New(1, 5)
	s.Insert(3)
	s.Insert(1)
	assert.Equal(t, []int{1, 5, 3, 1}, s.Items())
	s.Normalize()
	assert.Equal(t, []int{1, 3, 5}, s.Items())
}

func TestCompareAndKey(t *testing.T) {
	assert.Equal(t, 0, New(1, 2).Compare(New(2, 1)))
	assert.Equal(t, -1, New(1, 2).Compare(New(1, 3)))
	assert.Equal(t, 1, New(1, 2, 3).Compare(New(1, 2)))
	assert.Equal(t, "1,2,3", New(3, 2, 1).Key())
	assert.Equal(t, "{}", New[int]().String())
}

func TestSubsetEdgeCases(t *testing.T) {
	empty := New[int]()
	assert.True(t, empty.IsSubset(New(1)))
	assert.True(t, empty.IsSubset(empty))
	assert.False(t, New(1, 2, 3).IsSubset(New(1, 2)))
	assert.True(t, New(2).IsSubset(New(1, 2, 3)))
	assert.False(t, New(4).IsSubset(New(1, 2, 3)))
}
