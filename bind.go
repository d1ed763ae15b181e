package nibble

import (
	"reflect"

	"github.com/freehour/nibble/draft"
	"github.com/freehour/nibble/nibble_errors"
)

type options[T any] struct {
	up draft.Updater[T]
}

type Option[T any] func(*options[T])

// WithUpdater swaps the structural updater the merge policies stage their
// drafts through. The default is draft.Deep; states whose path from root
// to child crosses no pointers can use draft.Shallow.
func WithUpdater[T any](u draft.Updater[T]) Option[T] {
	return func(o *options[T]) {
		o.up = u
	}
}

func buildOptions[T any](opts []Option[T]) options[T] {
	o := options[T]{up: draft.Deep[T]{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bind produces a derived store over parent from an explicit getter/setter
// pair. This is the form for scalar and struct children, whose merge
// semantics only the caller can know; a nil setter is a construction-time
// error, not a fallback.
func Bind[T, A any](parent Store[T], get Getter[T, A], set Setter[T, A]) (*Nibble[T, A], error) {
	if parent == nil {
		return nil, nibble_errors.ErrNoStore
	}
	if get == nil {
		return nil, nibble_errors.ErrNoGetter
	}
	if set == nil {
		return nil, nibble_errors.ErrSetterRequired
	}
	return &Nibble[T, A]{
		parent: parent,
		get:    get,
		fold: func(cur T, next A, _ bool) T {
			return set(cur, next)
		},
	}, nil
}

// BindKeyed produces a derived store with a synthesized keyed-merge setter.
// The child type must be a map; writes shallowly overlay the next value's
// keys onto the current child (or replace it outright), staged on a draft
// of the parent so sibling state keeps its identity.
func BindKeyed[T, A any](parent Store[T], get Getter[T, A], opts ...Option[T]) (*Nibble[T, A], error) {
	if parent == nil {
		return nil, nibble_errors.ErrNoStore
	}
	if get == nil {
		return nil, nibble_errors.ErrNoGetter
	}
	if err := keyedShape(reflect.TypeOf((*A)(nil)).Elem()); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Nibble[T, A]{
		parent: parent,
		get:    get,
		fold: func(cur T, next A, replace bool) T {
			return o.up.Update(cur, func(d *T) {
				keyedMerge(reflect.ValueOf(get(*d)), reflect.ValueOf(next), replace)
			})
		},
	}, nil
}

// BindSeq produces a derived store with a synthesized sequence-merge
// setter. The child type must be a slice or array, reached through a
// pointer projection: a merge may resize the child, and only a pointer
// can write the resized sequence back into the draft.
func BindSeq[T, A any](parent Store[T], acc Accessor[T, A], opts ...Option[T]) (*Nibble[T, A], error) {
	if parent == nil {
		return nil, nibble_errors.ErrNoStore
	}
	if acc == nil {
		return nil, nibble_errors.ErrNoAccessor
	}
	if err := seqShape(reflect.TypeOf((*A)(nil)).Elem()); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Nibble[T, A]{
		parent: parent,
		get: func(p T) A {
			return *acc(&p)
		},
		fold: func(cur T, next A, replace bool) T {
			return o.up.Update(cur, func(d *T) {
				seqMerge(reflect.ValueOf(acc(d)), reflect.ValueOf(next), replace)
			})
		},
	}, nil
}
