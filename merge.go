package nibble

import (
	"fmt"
	"reflect"

	"github.com/freehour/nibble/nibble_errors"
)

// The merge variant is picked once at bind time from the child's static
// shape; writes never re-inspect the type.

func keyedShape(t reflect.Type) error {
	if t.Kind() != reflect.Map {
		return fmt.Errorf("%w: %s is not a map", nibble_errors.ErrSetterRequired, t)
	}
	return nil
}

func seqShape(t reflect.Type) error {
	if k := t.Kind(); k != reflect.Slice && k != reflect.Array {
		return fmt.Errorf("%w: %s is not a slice or array", nibble_errors.ErrSetterRequired, t)
	}
	return nil
}

// keyedMerge mutates the draft's child map in place: next's keys shallowly
// overwrite, other keys survive unless replace clears them first. A nil
// child map with a non-empty next panics, same as any other shape the
// getter's contract does not hold for.
func keyedMerge(dst, next reflect.Value, replace bool) {
	if replace {
		dst.Clear()
	}
	it := next.MapRange()
	for it.Next() {
		dst.SetMapIndex(it.Key(), it.Value())
	}
}

// seqMerge builds a fresh child sequence and installs it through dst, a
// pointer into the draft. Merge is index-wise assignment: trailing current
// elements survive a shorter next, a longer next extends the child.
func seqMerge(dst, next reflect.Value, replace bool) {
	slot := dst.Elem()
	if slot.Kind() == reflect.Array {
		slot.Set(next)
		return
	}
	if replace {
		out := reflect.MakeSlice(slot.Type(), next.Len(), next.Len())
		reflect.Copy(out, next)
		slot.Set(out)
		return
	}
	length := slot.Len()
	if next.Len() > length {
		length = next.Len()
	}
	out := reflect.MakeSlice(slot.Type(), length, length)
	reflect.Copy(out, slot)
	for i := 0; i < next.Len(); i++ {
		out.Index(i).Set(next.Index(i))
	}
	slot.Set(out)
}
