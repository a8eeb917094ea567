package task

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLiteral    = errors.New("invalid literal")
	ErrNoModel           = errors.New("no model found")
	ErrIncompatibleOne   = errors.New("incompatible for condition (i)")
	ErrIncompatibleTwo   = errors.New("incompatible for condition (ii)")
	ErrIncompatibleThree = errors.New("incompatible for condition (iii)")
)

// IncompatibleError names the violated condition and the offending pair of
// examples (0-based, in task order).
type IncompatibleError struct {
	Condition int
	First     int
	Second    int
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("examples %d and %d: %s", e.First+1, e.Second+1, e.Unwrap())
}

func (e *IncompatibleError) Unwrap() error {
	switch e.Condition {
	case 1:
		return ErrIncompatibleOne
	case 2:
		return ErrIncompatibleTwo
	default:
		return ErrIncompatibleThree
	}
}
