// Package nibble carves independently-subscribable child stores out of a
// parent state container. A nibble is defined by a read projection from the
// parent state and a write projection folding child updates back in; it owns
// no state of its own, every read and write goes through the parent.
//
// A nibble satisfies the same observable contract as the parent store, so
// nibbles nest: a bound *Nibble[T, A] is itself a Store[A].
package nibble

import (
	"github.com/freehour/nibble/nibble_errors"
)

// Listener receives the value after and before an update, in that order.
type Listener[A any] func(next, prev A)

// Store is the parent-store contract the binder delegates to. Any container
// with a current value, a construction-time value, a serialized update
// operation and synchronous subscriber notification qualifies.
type Store[T any] interface {
	Get() T
	Initial() T
	Update(fn func(cur T) T)
	Subscribe(l Listener[T]) (unsub func())
}

// Getter is a pure read projection from parent state to child state.
// It must be deterministic and side-effect free.
type Getter[T, A any] func(parent T) A

// Setter folds the next child value into the parent state, returning the
// next parent state. It must agree with the paired getter: applying the
// result and re-reading through the getter yields the value that was set.
type Setter[T, A any] func(cur T, next A) T

// Accessor is a pointer projection into a mutable draft of the parent
// state. Sequence-merge nibbles use it to write a resized child back.
type Accessor[T, A any] func(draft *T) *A

// Nibble is a derived store bound to one (parent, read, write) triple.
// Its lifetime is the lifetime of the parent; there is no teardown.
type Nibble[T, A any] struct {
	parent Store[T]
	get    Getter[T, A]
	fold   func(cur T, next A, replace bool) T
}

// Get reads the current child value through the getter. Whatever the
// getter panics with propagates to the caller untouched.
func (n *Nibble[T, A]) Get() A {
	return n.get(n.parent.Get())
}

// Initial reads the child value as it was when the parent was constructed.
// Unaffected by any number of later writes.
func (n *Nibble[T, A]) Initial() A {
	return n.get(n.parent.Initial())
}

// Set folds next into the parent: the merge policy for keyed/sequence
// nibbles, the explicit setter otherwise. Issues exactly one parent update,
// and the parent's synchronous notification pass completes before Set
// returns.
func (n *Nibble[T, A]) Set(next A) {
	n.parent.Update(func(cur T) T {
		return n.fold(cur, next, false)
	})
}

// Replace is Set with the replace flag: the child becomes exactly next,
// stale keys and trailing elements included. Explicit setters have no
// replace flag to honor, for them Replace equals Set.
func (n *Nibble[T, A]) Replace(next A) {
	n.parent.Update(func(cur T) T {
		return n.fold(cur, next, true)
	})
}

// Update resolves fn eagerly against the current child value and routes
// the result through Set.
func (n *Nibble[T, A]) Update(fn func(cur A) A) {
	n.Set(fn(n.Get()))
}

// Subscribe re-projects every parent update through the getter and invokes
// l(next, prev) synchronously inside the parent's notification pass, once
// per update, whether or not the projected value changed. Wrap l in
// Distinct for change-only delivery.
func (n *Nibble[T, A]) Subscribe(l Listener[A]) (unsub func()) {
	return n.parent.Subscribe(func(next, prev T) {
		l(n.get(next), n.get(prev))
	})
}

// Build invokes init exactly once with the nibble itself and returns the
// child value it produces. The value may embed closures over the nibble's
// Set and Get; invoking them later routes back through the parent.
func (n *Nibble[T, A]) Build(init func(n *Nibble[T, A]) A) A {
	return init(n)
}

// Close always fails. A nibble has no lifecycle separate from its parent;
// to stop observing it, call the unsubscribe function Subscribe returned.
func (n *Nibble[T, A]) Close() error {
	return nibble_errors.ErrNoTeardown
}
