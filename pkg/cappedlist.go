// Package pkg is a package that provides utilities for mend.
package pkg

import (
	"fmt"
	"log/slog"
	"sync"
)

// CappedList is a generic ordered list with a fixed capacity. Appending past
// the capacity evicts the oldest items first.
type CappedList[T any] interface {
	Len() int
	Cap() int
	Append(item T) int
	At(index int) (T, error)
	TruncateFrom(index int)
	Range(f func(index int, item T) error) error
}

type cappedListImpl[T any] struct {
	mu    sync.Mutex
	items []T
	cap   int
}

// NewCappedList creates a CappedList holding at most capacity items.
func NewCappedList[T any](capacity int) CappedList[T] {
	if capacity <= 0 {
		capacity = 1
	}

	return &cappedListImpl[T]{cap: capacity}
}

// Append implements CappedList. It returns the number of items evicted to
// stay within capacity.
func (c *cappedListImpl[T]) Append(item T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, item)

	evicted := 0
	if len(c.items) > c.cap {
		evicted = len(c.items) - c.cap
		c.items = c.items[evicted:]
	}

	slog.Debug("appended item", "length", len(c.items), "evicted", evicted)

	return evicted
}

// At implements CappedList.
func (c *cappedListImpl[T]) At(index int) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.items) {
		var zero T

		slog.Warn("index out of bounds", "index", index, "length", len(c.items))

		return zero, fmt.Errorf("index %d out of bounds (length %d)", index, len(c.items))
	}

	return c.items[index], nil
}

// TruncateFrom implements CappedList. It drops every item at or after index.
func (c *cappedListImpl[T]) TruncateFrom(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.items) {
		return
	}

	c.items = c.items[:index]
	slog.Debug("truncated list", "length", len(c.items))
}

// Len implements CappedList.
func (c *cappedListImpl[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// Cap implements CappedList.
func (c *cappedListImpl[T]) Cap() int {
	return c.cap
}

// Range implements CappedList.
func (c *cappedListImpl[T]) Range(f func(index int, item T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if err := f(i, item); err != nil {
			slog.Warn("range callback error", "index", i, "error", err)
			return err
		}
	}

	return nil
}
