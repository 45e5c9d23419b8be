// file: services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"athmageeth-portal/logger"
	"athmageeth-portal/metrics"
	"athmageeth-portal/models"
	"athmageeth-portal/store"
)

const (
	// DefaultPageSize is the dashboard page length.
	DefaultPageSize = 10
	// TopDistricts is how many districts the stats breakdown keeps.
	TopDistricts = 6

	MsgDeleteFailed = "Failed to delete"
)

// ListParams are the dashboard query parameters. Page is 1-based.
type ListParams struct {
	Query    string
	Page     int
	District string
}

// ListResult is one page of registrations.
type ListResult struct {
	Data       []models.Registration `json:"data"`
	TotalPages int64                 `json:"totalPages"`
	TotalCount int64                 `json:"totalCount"`
}

// RemoveResult reports an admin delete.
type RemoveResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DashboardResult combines the stats cards and the first listing.
type DashboardResult struct {
	Stats models.DashboardStats `json:"stats"`
	ListResult
}

// AdminOptions configures an AdminService.
type AdminOptions struct {
	PageSize int
	// CacheTTL bounds how long a cached page lives; zero disables caching.
	CacheTTL time.Duration
	// Downstream is told about deletes (open dashboards).
	Downstream Notifier
	Metrics    metrics.Recorder
}

// AdminService answers the dashboard's read queries and performs deletes.
// Reads are cached per generation; any change notification bumps the
// generation so results computed before a write are never served after it.
type AdminService struct {
	store      store.RegistrationStore
	pageSize   int
	cache      *gocache.Cache
	generation atomic.Uint64
	downstream Notifier
	metrics    metrics.Recorder
}

// NewAdminService creates an AdminService over st.
func NewAdminService(st store.RegistrationStore, opts AdminOptions) *AdminService {
	s := &AdminService{
		store:      st,
		pageSize:   opts.PageSize,
		downstream: opts.Downstream,
		metrics:    opts.Metrics,
	}
	if s.pageSize <= 0 {
		s.pageSize = DefaultPageSize
	}
	if s.downstream == nil {
		s.downstream = Notifiers{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if opts.CacheTTL > 0 {
		s.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return s
}

// Notify invalidates every cached read.
func (s *AdminService) Notify(_ context.Context, ev models.ChangeEvent) {
	gen := s.generation.Add(1)
	logger.Debug.Printf("[AdminService.Notify] %s id=%s, cache generation now %d", ev.Action, ev.ID, gen)
	if s.cache != nil {
		// older generations can never be read again
		s.cache.Flush()
	}
}

// List returns one page of matching registrations, newest first. Store
// failures degrade to an empty page.
func (s *AdminService) List(ctx context.Context, p ListParams) ListResult {
	if p.Page < 1 {
		p.Page = 1
	}
	f := store.NewFilter(p.Query, p.District)
	key := fmt.Sprintf("list|%d|%q|%q|%d", s.generation.Load(), f.Query, f.District, p.Page)
	if v, ok := s.cached(key); ok {
		return v.(ListResult)
	}

	total, err := s.store.Count(ctx, f)
	if err != nil {
		logger.Error.Printf("[AdminService.List] count failed: %v", err)
		return emptyList()
	}
	data, err := s.store.Find(ctx, f, int64(p.Page-1)*int64(s.pageSize), int64(s.pageSize))
	if err != nil {
		logger.Error.Printf("[AdminService.List] find failed: %v", err)
		return emptyList()
	}
	if data == nil {
		data = []models.Registration{}
	}

	res := ListResult{
		Data:       data,
		TotalCount: total,
		TotalPages: (total + int64(s.pageSize) - 1) / int64(s.pageSize),
	}
	s.remember(key, res)
	return res
}

// ListAll returns every registration newest first, bypassing the cache.
func (s *AdminService) ListAll(ctx context.Context) ([]models.Registration, error) {
	all, err := s.store.Find(ctx, store.Filter{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing all registrations: %w", err)
	}
	return all, nil
}

// Stats returns totals and the top district breakdown. Store failures
// degrade to zero values.
func (s *AdminService) Stats(ctx context.Context) models.DashboardStats {
	key := fmt.Sprintf("stats|%d", s.generation.Load())
	if v, ok := s.cached(key); ok {
		return v.(models.DashboardStats)
	}

	stats, err := s.store.Stats(ctx, TopDistricts)
	if err != nil {
		logger.Error.Printf("[AdminService.Stats] aggregation failed: %v", err)
		return models.DashboardStats{DistrictStats: []models.DistrictCount{}}
	}
	if stats.DistrictStats == nil {
		stats.DistrictStats = []models.DistrictCount{}
	}
	s.remember(key, stats)
	return stats
}

// Dashboard fetches the stats and the requested page concurrently.
func (s *AdminService) Dashboard(ctx context.Context, p ListParams) DashboardResult {
	var (
		wg  sync.WaitGroup
		out DashboardResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Stats = s.Stats(ctx)
	}()
	go func() {
		defer wg.Done()
		out.ListResult = s.List(ctx, p)
	}()
	wg.Wait()
	return out
}

// Remove deletes one registration. An id that matches nothing still counts
// as success.
func (s *AdminService) Remove(ctx context.Context, id string) RemoveResult {
	id = strings.TrimSpace(id)
	if id == "" {
		logger.Warn.Printf("[AdminService.Remove] empty id")
		return RemoveResult{Error: MsgDeleteFailed}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn.Printf("[AdminService.Remove] id=%s cancelled", id)
		} else {
			logger.Error.Printf("[AdminService.Remove] id=%s failed: %v", id, err)
		}
		return RemoveResult{Error: MsgDeleteFailed}
	}

	logger.Info.Printf("[AdminService.Remove] deleted id=%s", id)
	s.metrics.RegistrationDeleted()
	ev := models.ChangeEvent{Action: models.ActionRegistrationDeleted, ID: id}
	s.Notify(ctx, ev)
	s.downstream.Notify(context.WithoutCancel(ctx), ev)
	return RemoveResult{Success: true}
}

func (s *AdminService) cached(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *AdminService) remember(key string, v interface{}) {
	if s.cache != nil {
		s.cache.Set(key, v, gocache.DefaultExpiration)
	}
}

func emptyList() ListResult {
	return ListResult{Data: []models.Registration{}}
}
