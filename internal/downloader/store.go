package downloader

import (
	"sync"

	"github.com/607011/hibpdl/pkg/hashcount"
)

// Store collects the records of one batch from all workers.
//
// Merge takes the lock once per call, so workers pay one acquisition per
// completed group rather than per record. No deduplication happens here:
// each digest is served by exactly one prefix, which the design assumes
// but does not verify.
type Store struct {
	mu      sync.Mutex
	records []hashcount.Record
}

// NewStore creates a store with room for capacity records.
func NewStore(capacity int) *Store {
	return &Store{records: make([]hashcount.Record, 0, capacity)}
}

// Merge splices a worker-local buffer into the store.
func (s *Store) Merge(batch []hashcount.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, batch...)
}

// Len returns the number of records collected so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Finalize sorts the collection by ascending digest and returns it.
// Call once per batch, after every worker has stopped.
func (s *Store) Finalize() []hashcount.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	hashcount.Sort(s.records)
	return s.records
}
