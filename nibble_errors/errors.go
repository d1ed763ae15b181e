// Provides common nibble errors definitions.
package nibble_errors

import "errors"

var (
	ErrNoStore  = errors.New("nibble: no parent store")
	ErrNoGetter = errors.New("nibble: no getter")

	ErrNoAccessor     = errors.New("nibble: no accessor")
	ErrSetterRequired = errors.New("nibble: child shape has no default merge, supply a setter")
	ErrNoTeardown     = errors.New("nibble: a derived store has no teardown, drop the subscription instead")
)
