// Package multiinput provides a container for the values a node receives
// through a MultiInput connector.
package multiinput

import (
	"errors"
	"fmt"
)

// ErrUnknownID is returned when an id is not assigned in the store.
var ErrUnknownID = errors.New("unknown id")

// Store keeps values in insertion order and addresses them by integer ids.
// Ids are the smallest non-negative integers not currently in use.
type Store[T any] struct {
	ids    []int
	values []T
}

// Add appends value to the store and returns its id.
func (s *Store[T]) Add(value T) int {
	id := 0
	for s.index(id) != -1 {
		id++
	}
	s.ids = append(s.ids, id)
	s.values = append(s.values, value)
	return id
}

// Remove deletes the value stored under id.
func (s *Store[T]) Remove(id int) error {
	i := s.index(id)
	if i == -1 {
		return fmt.Errorf("remove %d: %w", id, ErrUnknownID)
	}
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	s.values = append(s.values[:i], s.values[i+1:]...)
	return nil
}

// Replace overwrites the value stored under id. Unlike Remove followed by
// Add, the new value keeps the position of the old one.
func (s *Store[T]) Replace(id int, value T) error {
	i := s.index(id)
	if i == -1 {
		return fmt.Errorf("replace %d: %w", id, ErrUnknownID)
	}
	s.values[i] = value
	return nil
}

// Data returns a copy of the stored values in insertion order.
func (s *Store[T]) Data() []T {
	data := make([]T, len(s.values))
	copy(data, s.values)
	return data
}

// Len returns number of stored values.
func (s *Store[T]) Len() int {
	return len(s.values)
}

// Clear removes all values.
func (s *Store[T]) Clear() {
	s.ids = nil
	s.values = nil
}

func (s *Store[T]) index(id int) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}
