// Package mempool recycles the page-sized scratch buffers of region detection.
package mempool

import (
	"sync"
)

// Pool hands out slices of T bucketed by size class.
type Pool[T any] struct {
	pools sync.Map // key: size class (int), value: *sync.Pool
}

// Shared pools used by the detector.
var (
	Bools Pool[bool]
	Ints  Pool[int]
)

// sizeClass rounds n up to the next multiple of 4096 to reduce churn.
func sizeClass(n int) int {
	const step = 4096
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func (p *Pool[T]) pool(cls int) *sync.Pool {
	if sp, ok := p.pools.Load(cls); ok {
		return sp.(*sync.Pool)
	}
	sp, _ := p.pools.LoadOrStore(cls, &sync.Pool{New: func() any {
		buf := make([]T, cls)
		return &buf
	}})
	return sp.(*sync.Pool)
}

// Get returns a zeroed slice of length n. Return it with Put when done.
func (p *Pool[T]) Get(n int) []T {
	if n <= 0 {
		return nil
	}
	cls := sizeClass(n)
	bp := p.pool(cls).Get().(*[]T)
	buf := (*bp)[:n]
	clear(buf)
	return buf
}

// Put returns a buffer obtained from Get. Nil and foreign-sized slices are
// dropped.
func (p *Pool[T]) Put(buf []T) {
	if buf == nil {
		return
	}
	c := cap(buf)
	if c != sizeClass(c) {
		return
	}
	buf = buf[:c]
	p.pool(c).Put(&buf)
}
