package nibble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freehour/nibble"
	"github.com/freehour/nibble/nibble_errors"
	"github.com/freehour/nibble/stores"
)

func childRecipe() nibble.Recipe[Person, Child] {
	return nibble.NewRecipe(
		func(p Person) Child { return p.Child },
		func(p Person, c Child) Person {
			p.Child = c
			return p
		},
	)
}

func TestRecipeIndependence(t *testing.T) {
	recipe := childRecipe()

	a := stores.NewMem(johnDoe())
	b := stores.NewMem(johnDoe())

	kidA, err := recipe(a)
	assert.Nil(t, err)
	kidB, err := recipe(b)
	assert.Nil(t, err)

	kidA.Set(Child{Name: "Ada Doe", Age: 3})
	assert.Equal(t, "Ada Doe", kidA.Get().Name)
	assert.Equal(t, "Joe Doe", kidB.Get().Name)

	kidB.Set(Child{Name: "Bob Doe", Age: 4})
	assert.Equal(t, "Ada Doe", kidA.Get().Name)
	assert.Equal(t, "Bob Doe", kidB.Get().Name)
}

func TestKeyedRecipe(t *testing.T) {
	recipe := nibble.NewKeyedRecipe(func(p map[string]any) map[string]any {
		return p["child"].(map[string]any)
	})

	store := stores.NewMem(jsonDoe())
	kid, err := recipe(store)
	assert.Nil(t, err)

	kid.Set(map[string]any{"age": 11})
	assert.Equal(t, map[string]any{"name": "Joe Doe", "age": 11}, kid.Get())
}

func TestSeqRecipeShapeCheckedAtBind(t *testing.T) {
	recipe := nibble.NewSeqRecipe(func(d *Person) *Child { return &d.Child })

	_, err := recipe(stores.NewMem(johnDoe()))
	assert.ErrorIs(t, err, nibble_errors.ErrSetterRequired)
}

func TestRecipeBuild(t *testing.T) {
	recipe := childRecipe()
	store := stores.NewMem(johnDoe())

	kid, err := recipe.Build(store, func(n *nibble.Nibble[Person, Child]) Child {
		c := n.Get()
		c.Age++
		n.Set(c)
		return c
	})
	assert.Nil(t, err)
	assert.Equal(t, 11, kid.Age)
	assert.Equal(t, 11, store.Get().Child.Age)
}

func TestRecipeBuildPropagatesBindError(t *testing.T) {
	recipe := nibble.NewRecipe[Person, Child](nil, nil)

	_, err := recipe.Build(stores.NewMem(johnDoe()), func(n *nibble.Nibble[Person, Child]) Child {
		t.Fatal("initializer must not run")
		return Child{}
	})
	assert.ErrorIs(t, err, nibble_errors.ErrNoGetter)
}
