// Package ilasp builds, renders and runs ILASP learning tasks.
package ilasp

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Element is a renderable, totally ordered task element.
type Element[T any] interface {
	fmt.Stringer
	Compare(T) int
}

// Example is an ILASP example: the learned program combined with Context
// must entail every Include literal and none of the Exclude literals.
type Example[T Element[T]] struct {
	Include []T
	Exclude []T
	Context []T
}

func compareSlices[T Element[T]](a, b []T) int {
	return slices.CompareFunc(a, b, func(x, y T) int { return x.Compare(y) })
}

func (e Example[T]) Compare(other Example[T]) int {
	if c := compareSlices(e.Include, other.Include); c != 0 {
		return c
	}
	if c := compareSlices(e.Exclude, other.Exclude); c != 0 {
		return c
	}
	return compareSlices(e.Context, other.Context)
}

type SearchSpace[T Element[T]] struct {
	PositiveBody []T
	GeneralBody  []T
	Head         []T
}

func sortUnique[T Element[T]](xs []T) []T {
	slices.SortFunc(xs, func(a, b T) int { return a.Compare(b) })
	return slices.CompactFunc(xs, func(a, b T) bool { return a.Compare(b) == 0 })
}

// Builder accumulates examples and vocabulary. Nothing is sorted or
// deduplicated until Build.
type Builder[T Element[T], R fmt.Stringer] struct {
	positive   []Example[T]
	negative   []Example[T]
	space      SearchSpace[T]
	background []R
}

func NewBuilder[T Element[T], R fmt.Stringer]() *Builder[T, R] {
	return &Builder[T, R]{}
}

func (b *Builder[T, R]) PushPositive(include, exclude, context []T) {
	b.positive = append(b.positive, Example[T]{Include: include, Exclude: exclude, Context: context})
}

func (b *Builder[T, R]) PushNegative(include, exclude, context []T) {
	b.negative = append(b.negative, Example[T]{Include: include, Exclude: exclude, Context: context})
}

func (b *Builder[T, R]) PushBackground(r R) {
	b.background = append(b.background, r)
}

func (b *Builder[T, R]) PushPositiveBody(x T) {
	b.space.PositiveBody = append(b.space.PositiveBody, x)
}

func (b *Builder[T, R]) PushGeneralBody(x T) {
	b.space.GeneralBody = append(b.space.GeneralBody, x)
}

func (b *Builder[T, R]) PushHead(x T) {
	b.space.Head = append(b.space.Head, x)
}

// Build sorts and deduplicates examples and vocabularies and freezes the
// result. The builder must not be reused.
func (b *Builder[T, R]) Build() *Task[T, R] {
	cmpExample := func(x, y Example[T]) int { return x.Compare(y) }
	eqExample := func(x, y Example[T]) bool { return x.Compare(y) == 0 }

	slices.SortFunc(b.positive, cmpExample)
	slices.SortFunc(b.negative, cmpExample)
	return &Task[T, R]{
		positive: slices.CompactFunc(b.positive, eqExample),
		negative: slices.CompactFunc(b.negative, eqExample),
		space: SearchSpace[T]{
			PositiveBody: sortUnique(b.space.PositiveBody),
			GeneralBody:  sortUnique(b.space.GeneralBody),
			Head:         sortUnique(b.space.Head),
		},
		background: b.background,
	}
}

// Task is a finalized induction task.
type Task[T Element[T], R fmt.Stringer] struct {
	positive   []Example[T]
	negative   []Example[T]
	space      SearchSpace[T]
	background []R
}

func (t *Task[T, R]) Positive() []Example[T] {
	return t.positive
}

func (t *Task[T, R]) Negative() []Example[T] {
	return t.negative
}

func (t *Task[T, R]) SearchSpace() SearchSpace[T] {
	return t.space
}

func (t *Task[T, R]) Background() []R {
	return t.background
}

// ExampleDoc is the textual form of an example handed to templates.
type ExampleDoc struct {
	Incl []string `json:"incl"`
	Excl []string `json:"excl"`
	Ctx  []string `json:"ctx"`
}

type SearchSpaceDoc struct {
	PositiveBody []string `json:"positive_body"`
	GeneralBody  []string `json:"general_body"`
	Head         []string `json:"head"`
}

// Document is the serializable view of a Task: every element is replaced by
// its String form.
type Document struct {
	PosExamples []ExampleDoc   `json:"pos_examples"`
	NegExamples []ExampleDoc   `json:"neg_examples"`
	SearchSpace SearchSpaceDoc `json:"search_space"`
	Background  []string       `json:"background"`
}

func stringsOf[S fmt.Stringer](xs []S) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = x.String()
	}
	return out
}

func docs[T Element[T]](examples []Example[T]) []ExampleDoc {
	out := make([]ExampleDoc, len(examples))
	for i, e := range examples {
		out[i] = ExampleDoc{
			Incl: stringsOf(e.Include),
			Excl: stringsOf(e.Exclude),
			Ctx:  stringsOf(e.Context),
		}
	}
	return out
}

func (t *Task[T, R]) Document() Document {
	return Document{
		PosExamples: docs(t.positive),
		NegExamples: docs(t.negative),
		SearchSpace: SearchSpaceDoc{
			PositiveBody: stringsOf(t.space.PositiveBody),
			GeneralBody:  stringsOf(t.space.GeneralBody),
			Head:         stringsOf(t.space.Head),
		},
		Background: stringsOf(t.background),
	}
}

func (t *Task[T, R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Document())
}
