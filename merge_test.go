package nibble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freehour/nibble"
	"github.com/freehour/nibble/draft"
	"github.com/freehour/nibble/stores"
)

func jsonDoe() map[string]any {
	return map[string]any{
		"name": "John Doe",
		"age":  42,
		"child": map[string]any{
			"name": "Joe Doe",
			"age":  10,
		},
	}
}

func TestKeyedMerge(t *testing.T) {
	store := stores.NewMem(jsonDoe())
	kid, err := nibble.BindKeyed(store, func(p map[string]any) map[string]any {
		return p["child"].(map[string]any)
	})
	assert.Nil(t, err)

	kid.Set(map[string]any{"age": 11})
	assert.Equal(t, map[string]any{"name": "Joe Doe", "age": 11}, kid.Get())
	assert.Equal(t, "John Doe", store.Get()["name"])
	assert.Equal(t, 42, store.Get()["age"])
}

func TestKeyedReplace(t *testing.T) {
	store := stores.NewMem(jsonDoe())
	kid, err := nibble.BindKeyed(store, func(p map[string]any) map[string]any {
		return p["child"].(map[string]any)
	})
	assert.Nil(t, err)

	kid.Replace(map[string]any{"age": 12})
	assert.Equal(t, map[string]any{"age": 12}, kid.Get())
}

func TestKeyedMergeLeavesPreviousValue(t *testing.T) {
	store := stores.NewMem(jsonDoe())
	kid, err := nibble.BindKeyed(store, func(p map[string]any) map[string]any {
		return p["child"].(map[string]any)
	})
	assert.Nil(t, err)

	var prevAge any
	kid.Subscribe(func(next, prev map[string]any) {
		prevAge = prev["age"]
	})
	kid.Set(map[string]any{"age": 11})
	// the pre-update value was staged on a draft, not mutated in place
	assert.Equal(t, 10, prevAge)
	assert.Equal(t, 10, kid.Initial()["age"])
}

type list struct {
	Label string
	Other *int
	Items []int
}

func seqStore(items ...int) *stores.Mem[list] {
	other := 7
	return stores.NewMem(list{Label: "l", Other: &other, Items: items})
}

func TestSeqMerge(t *testing.T) {
	store := seqStore(1, 2, 3)
	items, err := nibble.BindSeq(store, func(d *list) *[]int { return &d.Items })
	assert.Nil(t, err)

	items.Set([]int{4, 5})
	assert.Equal(t, []int{4, 5, 3}, items.Get())
	assert.Equal(t, "l", store.Get().Label)
}

func TestSeqReplace(t *testing.T) {
	store := seqStore(1, 2, 3)
	items, err := nibble.BindSeq(store, func(d *list) *[]int { return &d.Items })
	assert.Nil(t, err)

	items.Replace([]int{4, 5})
	assert.Equal(t, []int{4, 5}, items.Get())
}

func TestSeqMergeExtends(t *testing.T) {
	store := seqStore(1, 2)
	items, err := nibble.BindSeq(store, func(d *list) *[]int { return &d.Items })
	assert.Nil(t, err)

	items.Set([]int{7, 8, 9, 10})
	assert.Equal(t, []int{7, 8, 9, 10}, items.Get())
}

type board struct {
	Label string
	Slots [3]int
}

func TestSeqArrayChild(t *testing.T) {
	store := stores.NewMem(board{Label: "b", Slots: [3]int{1, 2, 3}})
	slots, err := nibble.BindSeq(store, func(d *board) *[3]int { return &d.Slots })
	assert.Nil(t, err)

	// a fixed-size array always arrives whole, merge and replace agree
	slots.Set([3]int{4, 5, 6})
	assert.Equal(t, [3]int{4, 5, 6}, slots.Get())

	slots.Replace([3]int{7, 8, 9})
	assert.Equal(t, [3]int{7, 8, 9}, slots.Get())
	assert.Equal(t, [3]int{1, 2, 3}, slots.Initial())
	assert.Equal(t, "b", store.Get().Label)
}

func TestSeqShallowUpdaterKeepsSiblings(t *testing.T) {
	store := seqStore(1, 2, 3)
	before := store.Get().Other

	items, err := nibble.BindSeq(store,
		func(d *list) *[]int { return &d.Items },
		nibble.WithUpdater[list](draft.Shallow[list]{}),
	)
	assert.Nil(t, err)

	items.Set([]int{9})
	assert.Equal(t, []int{9, 2, 3}, items.Get())
	// sibling pointer keeps its identity, only the child path was rebuilt
	assert.Same(t, before, store.Get().Other)
	assert.Equal(t, []int{1, 2, 3}, store.Initial().Items)
}
