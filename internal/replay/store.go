package replay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/df-mc/goleveldb/leveldb"
)

// BatchFlushSize and BatchFlushInterval mirror the teacher's
// EventLog.writerLoop cadence, repurposed to flush delta records
// instead of log events.
const (
	BatchFlushSize     = 64
	BatchFlushInterval = 100 * time.Millisecond
)

// record is the on-disk shape for one buffered tick of deltas — plain
// tagged JSON, kept deliberately over a generated wire schema (see
// DESIGN.md).
type record struct {
	Tick   uint64          `json:"tick"`
	Deltas json.RawMessage `json:"deltas"`
}

// Store persists recorded ticks to a goleveldb database, keyed by tick
// number, batching writes the way the teacher's EventLog batches file
// appends (BatchFlushSize or BatchFlushInterval, whichever comes
// first). A Store is optional: callers that only need in-process replay
// (ReplayRecorder/Replay) never need to construct one.
type Store struct {
	mu      sync.Mutex
	db      *leveldb.DB
	pending []record
	stop    chan struct{}
	wg      sync.WaitGroup
}

// OpenStore opens (creating if absent) a goleveldb database at path and
// starts its background flush loop.
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, stop: make(chan struct{})}
	s.wg.Add(1)
	go s.flushLoop()
	return s, nil
}

// Append queues a tick's worth of deltas for persistence.
func (s *Store) Append(tick uint64, payload []byte) {
	s.mu.Lock()
	s.pending = append(s.pending, record{Tick: tick, Deltas: payload})
	full := len(s.pending) >= BatchFlushSize
	s.mu.Unlock()
	if full {
		s.flush()
	}
}

func (s *Store) flushLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			s.flush()
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *Store) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, r := range batch {
		key := tickKey(r.Tick)
		val, err := json.Marshal(r)
		if err != nil {
			continue
		}
		_ = s.db.Put(key, val, nil)
	}
}

// Get returns the raw deltas payload persisted for tick, if present.
func (s *Store) Get(tick uint64) ([]byte, error) {
	val, err := s.db.Get(tickKey(tick), nil)
	if err != nil {
		return nil, err
	}
	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, err
	}
	return r.Deltas, nil
}

// Close stops the flush loop and closes the database.
func (s *Store) Close() error {
	close(s.stop)
	s.wg.Wait()
	return s.db.Close()
}

func tickKey(tick uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[7-i] = byte(tick >> (8 * i))
	}
	return b
}
