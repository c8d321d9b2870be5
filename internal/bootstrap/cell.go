package bootstrap

import "sync/atomic"

// Cell is a single-assignment result cell. Any number of producers may race
// to commit; exactly one wins and the rest are told they lost.
type Cell[T any] struct {
	claimed atomic.Bool
	done    chan struct{}
	val     T
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{done: make(chan struct{})}
}

// Commit claims the cell and stores the value returned by produce. produce
// runs only for the winning caller, before the value becomes visible to
// readers. It returns false without calling produce if the cell was already
// claimed.
func (c *Cell[T]) Commit(produce func() T) bool {
	if !c.claimed.CompareAndSwap(false, true) {
		return false
	}
	c.val = produce()
	close(c.done)
	return true
}

// Done is closed once a value is available.
func (c *Cell[T]) Done() <-chan struct{} {
	return c.done
}

// Get returns the committed value, if any.
func (c *Cell[T]) Get() (T, bool) {
	select {
	case <-c.done:
		return c.val, true
	default:
		var zero T
		return zero, false
	}
}
