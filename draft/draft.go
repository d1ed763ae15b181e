// Package draft stages copy-on-write updates of whole state values: an
// updater takes an immutable root and a mutation over a draft of it, and
// returns the next root. The previous root is never touched.
package draft

// Updater is the structural-update collaborator the merge policies go
// through. Implementations decide how much of the root to copy before
// letting mutate loose on the draft.
type Updater[T any] interface {
	Update(root T, mutate func(draft *T)) T
}

// Deep clones the entire root before mutating. Always safe, pays for the
// full copy on every update.
type Deep[T any] struct{}

func (Deep[T]) Update(root T, mutate func(draft *T)) T {
	d := Clone(root)
	mutate(&d)
	return d
}

// Shallow copies the root by plain assignment. Safe only when the path
// from root to the mutated child crosses no pointers, maps or slices that
// the draft would then share with the original.
type Shallow[T any] struct{}

func (Shallow[T]) Update(root T, mutate func(draft *T)) T {
	d := root
	mutate(&d)
	return d
}
