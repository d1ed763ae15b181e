package nibble

// Recipe is a child-store blueprint with the parent binding deferred: the
// captured projections are pure, so one recipe can be instantiated against
// any number of parent stores, each binding fully independent of the rest.
type Recipe[T, A any] func(parent Store[T]) (*Nibble[T, A], error)

// NewRecipe captures an explicit getter/setter pair for later binding.
func NewRecipe[T, A any](get Getter[T, A], set Setter[T, A]) Recipe[T, A] {
	return func(parent Store[T]) (*Nibble[T, A], error) {
		return Bind(parent, get, set)
	}
}

// NewKeyedRecipe captures a keyed-merge blueprint for a map child.
func NewKeyedRecipe[T, A any](get Getter[T, A], opts ...Option[T]) Recipe[T, A] {
	return func(parent Store[T]) (*Nibble[T, A], error) {
		return BindKeyed(parent, get, opts...)
	}
}

// NewSeqRecipe captures a sequence-merge blueprint for a slice child.
func NewSeqRecipe[T, A any](acc Accessor[T, A], opts ...Option[T]) Recipe[T, A] {
	return func(parent Store[T]) (*Nibble[T, A], error) {
		return BindSeq(parent, acc, opts...)
	}
}

// Build binds the recipe to parent and bootstraps the child value in one
// step, handing init the freshly bound nibble.
func (r Recipe[T, A]) Build(parent Store[T], init func(n *Nibble[T, A]) A) (A, error) {
	n, err := r(parent)
	if err != nil {
		var zero A
		return zero, err
	}
	return n.Build(init), nil
}
