// Package store keeps generated study sheets in memory for the running process.
package store

import (
	"errors"
	"sync"
	"time"

	"fichesynthese/internal/models"

	"github.com/google/uuid"
)

// DefaultCapacity is used when NewMemoryStore is given a non-positive capacity.
const DefaultCapacity = 256

// ErrNotFound is returned when no record exists for an ID.
var ErrNotFound = errors.New("store: study sheet not found")

// MemoryStore is a bounded, concurrency-safe record store. When full, the
// oldest record is evicted.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	records  map[uuid.UUID]*models.SheetRecord
	order    []uuid.UUID
	now      func() time.Time
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		capacity: capacity,
		records:  make(map[uuid.UUID]*models.SheetRecord, capacity),
		now:      time.Now,
	}
}

// Put stores a copy of sheet with its export context and returns the new record.
func (s *MemoryStore) Put(sheet models.StudySheet, ctx models.ExportContext) *models.SheetRecord {
	rec := &models.SheetRecord{
		ID:        uuid.New(),
		Sheet:     sheet,
		Context:   ctx,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec
}

// Get returns the record for id.
func (s *MemoryStore) Get(id uuid.UUID) (*models.SheetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Lookup parses raw as a UUID and returns its record. Malformed IDs are
// reported as ErrNotFound.
func (s *MemoryStore) Lookup(raw string) (*models.SheetRecord, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.Get(id)
}

// Len returns the number of records held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
