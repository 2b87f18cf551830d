// Package lazy provides a memoizing lazy reference.
package lazy

import "sync"

type state int

const (
	unresolved state = iota
	resolved
)

// Value resolves a producer on first access and caches the result.
// A failed producer leaves the value unresolved so the next Get retries.
type Value[T any] struct {
	mu       sync.Mutex
	state    state
	producer func() (T, error)
	value    T
}

// New wraps producer without calling it
func New[T any](producer func() (T, error)) *Value[T] {
	return &Value[T]{producer: producer}
}

// Of returns an already resolved value
func Of[T any](v T) *Value[T] {
	return &Value[T]{state: resolved, value: v}
}

// Get returns the cached value, resolving it first if needed
func (v *Value[T]) Get() (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == resolved {
		return v.value, nil
	}

	value, err := v.producer()
	if err != nil {
		var zero T
		return zero, err
	}

	v.value = value
	v.state = resolved
	v.producer = nil
	return v.value, nil
}

// Resolved reports whether the producer has already run successfully
func (v *Value[T]) Resolved() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == resolved
}
