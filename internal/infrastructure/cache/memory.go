package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pricematrix/backend/internal/domain"
)

// MemoryStore is a thread-safe in-process price store.
// It backs the "memory" store driver and keeps nothing across restarts.
type MemoryStore struct {
	data  map[string]domain.ProductRecord
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store using the given clock (time.Now when nil)
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		data: make(map[string]domain.ProductRecord),
		now:  now,
	}
}

// ListNames returns all product names sorted
func (s *MemoryStore) ListNames(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Lookup retrieves the record stored under name
func (s *MemoryStore) Lookup(ctx context.Context, name string) (*domain.ProductRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.data[name]
	if !exists {
		return nil, domain.ErrRecordNotFound
	}
	return &record, nil
}

// Upsert overwrites both prices and the timestamp under name
func (s *MemoryStore) Upsert(ctx context.Context, name string, priceAmazon, priceFlipkart float64) (*domain.ProductRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record := domain.ProductRecord{
		ProductName:   name,
		PriceAmazon:   priceAmazon,
		PriceFlipkart: priceFlipkart,
		LastUpdated:   s.now(),
	}
	s.data[name] = record
	return &record, nil
}

// List returns all records ordered by product name
func (s *MemoryStore) List(ctx context.Context) ([]domain.ProductRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]domain.ProductRecord, 0, len(s.data))
	for _, record := range s.data {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ProductName < records[j].ProductName
	})
	return records, nil
}

// Put stores a record as-is, timestamp included (seeding and debugging)
func (s *MemoryStore) Put(record domain.ProductRecord) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[record.ProductName] = record
}

// Size returns the current number of records (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
