package stores

import (
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/learn-decentralized-systems/toytlv"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/freehour/nibble"
	"github.com/freehour/nibble/utils"
)

// Value snapshots are 'S' TLV records with JSON bodies, one per key:
// 'I' the construction-time value, 'C' the current value, 'H'+seq one per
// update, 'V' the update counter.
var (
	keyInitial = []byte{'I'}
	keyCurrent = []byte{'C'}
	keySeq     = []byte{'V'}
)

var ErrNoSnapshot = errors.New("stores: no snapshot at that sequence")

func histKey(seq uint64) []byte {
	var key [9]byte
	key[0] = 'H'
	binary.BigEndian.PutUint64(key[1:], seq)
	return key[:]
}

type PebbleOptions struct {
	Logger       utils.Logger
	HistoryCache int
}

// Pebble is a durable nibble.Store[T] over a pebble database. The initial
// value is pinned on first open and survives reopen; every update also
// appends a history snapshot readable through At.
type Pebble[T any] struct {
	id  string
	dir string
	db  *pebble.DB
	log utils.Logger

	initial T
	cur     T
	seq     uint64
	lock    sync.Mutex

	hist    *lru.Cache[uint64, T]
	lstn    *xsync.MapOf[uint64, nibble.Listener[T]]
	lstnseq atomic.Uint64
	updates atomic.Uint64
}

func OpenPebble[T any](dir string, initial T, opts PebbleOptions) (*Pebble[T], error) {
	if opts.Logger == nil {
		opts.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
	if opts.HistoryCache == 0 {
		opts.HistoryCache = 128
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open store at %s", dir)
	}
	hist, err := lru.New[uint64, T](opts.HistoryCache)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Pebble[T]{
		id:   uuid.NewString(),
		dir:  dir,
		db:   db,
		log:  opts.Logger,
		hist: hist,
		lstn: xsync.NewMapOf[uint64, nibble.Listener[T]](),
	}
	stored, found, err := s.read(keyInitial)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !found {
		rec := encode(initial)
		batch := db.NewBatch()
		_ = batch.Set(keyInitial, rec, nil)
		_ = batch.Set(keyCurrent, rec, nil)
		_ = batch.Set(keySeq, seqBytes(0), nil)
		err := db.Apply(batch, pebble.Sync)
		_ = batch.Close()
		if err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "pin initial value")
		}
		s.initial, s.cur = initial, initial
		return s, nil
	}
	s.initial = stored
	cur, found, err := s.read(keyCurrent)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if !found {
		cur = stored
	}
	s.cur = cur
	s.seq, err = s.readSeq()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Pebble[T]) ID() string { return s.id }

func (s *Pebble[T]) Get() T {
	s.lock.Lock()
	cur := s.cur
	s.lock.Unlock()
	return cur
}

func (s *Pebble[T]) Initial() T { return s.initial }

// Update applies fn, persists the result and notifies. Persistence is
// best effort: a failed write is logged and the in-memory value and seq
// still advance, so the snapshot for that seq may be missing from At.
func (s *Pebble[T]) Update(fn func(cur T) T) {
	next, prev := s.commit(fn)
	s.updates.Add(1)
	s.lstn.Range(func(_ uint64, l nibble.Listener[T]) bool {
		l(next, prev)
		return true
	})
}

// commit holds the lock only across compute-and-persist, and releases
// it even when fn panics, so a failing projection cannot wedge the
// store for every later caller.
func (s *Pebble[T]) commit(fn func(cur T) T) (next, prev T) {
	s.lock.Lock()
	defer s.lock.Unlock()
	prev = s.cur
	next = fn(prev)
	s.cur = next
	s.seq++
	rec := encode(next)
	batch := s.db.NewBatch()
	defer batch.Close()
	_ = batch.Set(keyCurrent, rec, nil)
	_ = batch.Set(histKey(s.seq), rec, nil)
	_ = batch.Set(keySeq, seqBytes(s.seq), nil)
	if err := s.db.Apply(batch, pebble.NoSync); err != nil {
		s.log.Error("persist update", "seq", s.seq, "err", err)
	}
	return
}

func (s *Pebble[T]) Subscribe(l nibble.Listener[T]) (unsub func()) {
	id := s.lstnseq.Add(1)
	s.lstn.Store(id, l)
	return func() { s.lstn.Delete(id) }
}

// Seq is the number of updates applied over the store's lifetime.
func (s *Pebble[T]) Seq() uint64 {
	s.lock.Lock()
	seq := s.seq
	s.lock.Unlock()
	return seq
}

// At reads the snapshot written by the seq-th update; seq 0 is the
// initial value. Decoded snapshots are kept in an LRU cache.
func (s *Pebble[T]) At(seq uint64) (T, error) {
	if seq == 0 {
		return s.initial, nil
	}
	if v, ok := s.hist.Get(seq); ok {
		return v, nil
	}
	var zero T
	v, found, err := s.read(histKey(seq))
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.Wrapf(ErrNoSnapshot, "seq %d", seq)
	}
	s.hist.Add(seq, v)
	return v, nil
}

func (s *Pebble[T]) Close() error {
	return s.db.Close()
}

func (s *Pebble[T]) Updates() uint64 { return s.updates.Load() }

func (s *Pebble[T]) Listeners() int { return s.lstn.Size() }

func (s *Pebble[T]) read(key []byte) (v T, found bool, err error) {
	val, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return v, false, nil
	}
	if err != nil {
		return v, false, errors.Wrapf(err, "read %q", key)
	}
	body, _ := toytlv.Take('S', val)
	err = json.Unmarshal(body, &v)
	_ = closer.Close()
	if err != nil {
		return v, false, errors.Wrapf(err, "decode %q", key)
	}
	return v, true, nil
}

func (s *Pebble[T]) readSeq() (uint64, error) {
	val, closer, err := s.db.Get(keySeq)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read seq")
	}
	seq := binary.BigEndian.Uint64(val)
	_ = closer.Close()
	return seq, nil
}

func encode[T any](v T) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return toytlv.Record('S', body)
}

func seqBytes(seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return b[:]
}
