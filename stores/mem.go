// Package stores ships conforming parent-store implementations: Mem for
// plain in-process state, Pebble for state that must survive the process.
// Both notify subscribers synchronously on the updating goroutine.
package stores

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/freehour/nibble"
)

// Mem is an in-memory nibble.Store[T]. Updates are serialized by a mutex;
// notification happens outside of it, so listeners may write back into the
// store from within a notification pass.
type Mem[T any] struct {
	id      string
	initial T
	cur     T
	lock    sync.Mutex

	lstn    *xsync.MapOf[uint64, nibble.Listener[T]]
	lstnseq atomic.Uint64
	updates atomic.Uint64
}

func NewMem[T any](initial T) *Mem[T] {
	return &Mem[T]{
		id:      uuid.NewString(),
		initial: initial,
		cur:     initial,
		lstn:    xsync.NewMapOf[uint64, nibble.Listener[T]](),
	}
}

// ID names this store instance, e.g. as a metrics label.
func (s *Mem[T]) ID() string { return s.id }

func (s *Mem[T]) Get() T {
	s.lock.Lock()
	cur := s.cur
	s.lock.Unlock()
	return cur
}

func (s *Mem[T]) Initial() T { return s.initial }

func (s *Mem[T]) Update(fn func(cur T) T) {
	next, prev := s.commit(fn)
	s.updates.Add(1)
	s.lstn.Range(func(_ uint64, l nibble.Listener[T]) bool {
		l(next, prev)
		return true
	})
}

// commit holds the lock only across compute-and-swap, and releases it
// even when fn panics: a projection failing mid-update must not wedge
// the store for every later caller.
func (s *Mem[T]) commit(fn func(cur T) T) (next, prev T) {
	s.lock.Lock()
	defer s.lock.Unlock()
	prev = s.cur
	next = fn(prev)
	s.cur = next
	return
}

func (s *Mem[T]) Subscribe(l nibble.Listener[T]) (unsub func()) {
	id := s.lstnseq.Add(1)
	s.lstn.Store(id, l)
	return func() { s.lstn.Delete(id) }
}

func (s *Mem[T]) Updates() uint64 { return s.updates.Load() }

func (s *Mem[T]) Listeners() int { return s.lstn.Size() }
