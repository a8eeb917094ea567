package asp

import (
	"cmp"
	"strconv"
	"strings"
)

type termKind int

const (
	kindNumber termKind = iota
	kindConstant
	kindString
)

func kindOf(s string) (termKind, int64) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return kindNumber, n
	}
	if strings.HasPrefix(s, `"`) {
		return kindString, 0
	}
	return kindConstant, 0
}

// compareTerms orders ground terms: numbers numerically, then constants,
// then strings, each lexicographically.
func compareTerms(a, b string) int {
	ka, na := kindOf(a)
	kb, nb := kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	if ka == kindNumber {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a, b)
}
