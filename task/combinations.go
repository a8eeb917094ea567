package task

// combinations calls yield with every k-element subset of items, in
// lexicographic index order. The slice passed to yield is reused between
// calls. Enumeration stops when yield returns false.
//
// The number of subsets is C(len(items), k); callers enumerating every size
// pay 2^len(items).
func combinations[T any](items []T, k int, yield func([]T) bool) bool {
	n := len(items)
	if k <= 0 || k > n {
		return true
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	buf := make([]T, k)
	for {
		for i, x := range idx {
			buf[i] = items[x]
		}
		if !yield(buf) {
			return false
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return true
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
