package task

import (
	"fmt"
	"sync"
)

// Registry interns literals into small integer ids. Ids are assigned in
// first-seen order starting at 1.
type Registry struct {
	mu       sync.RWMutex
	literals []Literal
	ids      map[string]Lit
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]Lit)}
}

// Intern returns the id of l, assigning the next id on first sight.
func (r *Registry) Intern(l Literal) Lit {
	k := l.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[k]; ok {
		return id
	}
	r.literals = append(r.literals, l)
	id := Lit(len(r.literals))
	r.ids[k] = id
	return id
}

// InternAll interns every literal and returns the resulting set.
func (r *Registry) InternAll(literals []Literal) LitSet {
	s := NewLitSet()
	for _, l := range literals {
		s.Insert(r.Intern(l))
	}
	s.Normalize()
	return s
}

func (r *Registry) Literal(id Lit) (Literal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) > len(r.literals) {
		return Literal{}, fmt.Errorf("%w: %d", ErrInvalidLiteral, id)
	}
	return r.literals[id-1], nil
}

// Literals resolves ids in set order, skipping ids that were never assigned.
func (r *Registry) Literals(ids LitSet) []Literal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Literal, 0, ids.Len())
	for _, id := range ids.Items() {
		if id == 0 || int(id) > len(r.literals) {
			continue
		}
		result = append(result, r.literals[id-1])
	}
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.literals)
}
