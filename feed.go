package nibble

import (
	"encoding/json"

	"github.com/learn-decentralized-systems/toyqueue"
	"github.com/learn-decentralized-systems/toytlv"
)

// ChangeFeed turns a subscription into a record stream for consumers that
// drain queues instead of registering callbacks. Every update enqueues one
// 'V' TLV record holding the JSON of the projected value; enqueueing
// happens synchronously inside the notification pass, draining is the
// consumer's business.
type ChangeFeed[A any] struct {
	queue toyqueue.RecordQueue
	unsub func()
}

var _ toyqueue.FeedCloser = (*ChangeFeed[int])(nil)

// NewChangeFeed subscribes to src; limit bounds the number of queued
// records, beyond it updates are dropped rather than blocking the
// notification pass.
func NewChangeFeed[A any](src Store[A], limit int) *ChangeFeed[A] {
	f := &ChangeFeed[A]{}
	f.queue.Limit = limit
	f.unsub = src.Subscribe(func(next, _ A) {
		body, err := json.Marshal(next)
		if err != nil {
			return
		}
		_ = f.queue.Drain(toyqueue.Records{toytlv.Record('V', body)})
	})
	return f
}

func (f *ChangeFeed[A]) Feed() (toyqueue.Records, error) {
	return f.queue.Feed()
}

func (f *ChangeFeed[A]) Close() error {
	f.unsub()
	return f.queue.Close()
}

// Value decodes a record produced by the feed.
func Value[A any](rec []byte) (A, error) {
	var v A
	body, _ := toytlv.Take('V', rec)
	err := json.Unmarshal(body, &v)
	return v, err
}
