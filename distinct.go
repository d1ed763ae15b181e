package nibble

import (
	"encoding/json"

	"github.com/cespare/xxhash"
)

// Distinct wraps a listener with change-only delivery: a notification is
// dropped when the next and previous projected values hash equal. Hashing
// is xxhash over the JSON encoding, so equality follows the encoded shape;
// a value that fails to encode is always delivered.
func Distinct[A any](l Listener[A]) Listener[A] {
	return func(next, prev A) {
		nb, nerr := json.Marshal(next)
		pb, perr := json.Marshal(prev)
		if nerr == nil && perr == nil && xxhash.Sum64(nb) == xxhash.Sum64(pb) {
			return
		}
		l(next, prev)
	}
}
