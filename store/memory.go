// File: store/memory.go
package store

import (
	"context"
	"sort"
	"sync"

	"athmageeth-portal/logger"
	"athmageeth-portal/models"
)

type memoryEntry struct {
	reg models.Registration
	seq uint64
}

// MemoryStore keeps registrations in process. It enforces the same unique
// WhatsApp number constraint as the Mongo store and is used for local runs
// and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*memoryEntry
	byWhatsapp map[string]string
	seq        uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*memoryEntry),
		byWhatsapp: make(map[string]string),
	}
}

// Insert stores a copy of reg.
func (s *MemoryStore) Insert(ctx context.Context, reg models.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byWhatsapp[reg.WhatsappNumber]; taken {
		logger.Debug.Printf("[MemoryStore.Insert] whatsapp=%s already registered", reg.WhatsappNumber)
		return ErrDuplicate
	}
	s.seq++
	s.byID[reg.ID] = &memoryEntry{reg: reg.Clone(), seq: s.seq}
	s.byWhatsapp[reg.WhatsappNumber] = reg.ID
	return nil
}

// FindByWhatsappNumber returns ErrNotFound when no registration uses number.
func (s *MemoryStore) FindByWhatsappNumber(ctx context.Context, number string) (models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return models.Registration{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byWhatsapp[number]
	if !ok {
		return models.Registration{}, ErrNotFound
	}
	return s.byID[id].reg.Clone(), nil
}

// Find returns matching registrations newest first. A limit of zero or less
// means no limit.
func (s *MemoryStore) Find(ctx context.Context, f Filter, skip, limit int64) ([]models.Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matched := s.sorted(f)

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []models.Registration{}, nil
	}
	matched = matched[skip:]
	if limit > 0 && limit < int64(len(matched)) {
		matched = matched[:limit]
	}

	out := make([]models.Registration, len(matched))
	for i, e := range matched {
		out[i] = e.reg.Clone()
	}
	return out, nil
}

// Count returns how many registrations match f.
func (s *MemoryStore) Count(ctx context.Context, f Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.byID {
		if f.matches(e.reg) {
			n++
		}
	}
	return n, nil
}

// Delete removes id if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byWhatsapp, e.reg.WhatsappNumber)
	delete(s.byID, id)
	return nil
}

// Stats counts teams and candidates and ranks districts by team count.
func (s *MemoryStore) Stats(ctx context.Context, topDistricts int) (models.DashboardStats, error) {
	if err := ctx.Err(); err != nil {
		return models.DashboardStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.DashboardStats{DistrictStats: []models.DistrictCount{}}
	perDistrict := map[string]int64{}
	for _, e := range s.byID {
		stats.TotalTeams++
		stats.TotalCandidates += int64(len(e.reg.Candidates))
		perDistrict[e.reg.District]++
	}

	for d, n := range perDistrict {
		stats.DistrictStats = append(stats.DistrictStats, models.DistrictCount{District: d, Count: n})
	}
	sort.Slice(stats.DistrictStats, func(i, j int) bool {
		a, b := stats.DistrictStats[i], stats.DistrictStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.District < b.District
	})
	if topDistricts > 0 && len(stats.DistrictStats) > topDistricts {
		stats.DistrictStats = stats.DistrictStats[:topDistricts]
	}
	return stats, nil
}

// EnsureIndexes is a no-op; the unique index is built into MemoryStore.
func (s *MemoryStore) EnsureIndexes(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

// sorted returns matching entries ordered by creation time, newest first,
// falling back to insertion order for equal timestamps.
func (s *MemoryStore) sorted(f Filter) []*memoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*memoryEntry, 0, len(s.byID))
	for _, e := range s.byID {
		if f.matches(e.reg) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.reg.CreatedAt.Equal(b.reg.CreatedAt) {
			return a.reg.CreatedAt.After(b.reg.CreatedAt)
		}
		return a.seq > b.seq
	})
	return out
}
