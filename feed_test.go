package nibble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freehour/nibble"
	"github.com/freehour/nibble/stores"
)

func TestChangeFeed(t *testing.T) {
	store := stores.NewMem(johnDoe())
	kid, err := childOf(store)
	assert.Nil(t, err)

	feed := nibble.NewChangeFeed[Child](kid, 16)

	kid.Set(Child{Name: "Joe Doe", Age: 11})
	kid.Set(Child{Name: "Joe Doe", Age: 12})

	recs, err := feed.Feed()
	assert.Nil(t, err)
	assert.Len(t, recs, 2)

	first, err := nibble.Value[Child](recs[0])
	assert.Nil(t, err)
	assert.Equal(t, Child{Name: "Joe Doe", Age: 11}, first)

	second, err := nibble.Value[Child](recs[1])
	assert.Nil(t, err)
	assert.Equal(t, Child{Name: "Joe Doe", Age: 12}, second)

	// drained; the queue has nothing to feed until the next update
	_, err = feed.Feed()
	assert.NotNil(t, err)

	assert.Nil(t, feed.Close())
	kid.Set(Child{Name: "Joe Doe", Age: 13})
	_, err = feed.Feed()
	assert.NotNil(t, err)
}
