// ABOUTME: Local-first schedule repository with a staleness-gated replace-all sync.
// ABOUTME: Decides per read whether to serve the SQLite cache or pull from the remote API.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/workouts/internal/clock"
	"github.com/harperreed/workouts/internal/logging"
	"github.com/harperreed/workouts/internal/models"
	"github.com/harperreed/workouts/internal/storage"
	"github.com/harperreed/workouts/internal/syncstate"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRefreshInterval is how long a full sync is trusted.
	DefaultRefreshInterval = 72 * time.Hour
	// DefaultSyncTimeout bounds one shared remote sync or single fetch.
	DefaultSyncTimeout = 30 * time.Second

	syncKey = "sync-all"
)

// Store is the local cache the repository reads and replaces.
type Store interface {
	GetScheduleByName(name string) (*models.Schedule, error)
	ListSchedules() ([]*models.Schedule, error)
	CreateSchedule(s *models.Schedule) error
	ReplaceSchedules(schedules []*models.Schedule) (*storage.ReplaceSummary, error)
	ClearAll() error
}

// Remote fetches schedules from the server.
type Remote interface {
	FetchSchedules(ctx context.Context) ([]*models.Schedule, error)
	FetchSchedule(ctx context.Context, week string) (*models.Schedule, error)
}

// SyncResult reports how a replace-all went.
type SyncResult struct {
	Succeeded int
	Total     int
	Failed    []string
	SyncedAt  time.Time
}

// Status describes the staleness gate at a point in time.
type Status struct {
	LastSync        time.Time
	HasSynced       bool
	Stale           bool
	RefreshInterval time.Duration
	NextRefresh     time.Time
}

// Repository is the entry point callers use to read schedules.
type Repository struct {
	store           Store
	remote          Remote
	state           syncstate.Store
	clock           clock.Clock
	logger          *log.Logger
	refreshInterval time.Duration
	syncTimeout     time.Duration

	flights singleflight.Group
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source for the staleness gate.
func WithClock(c clock.Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRefreshInterval sets how long after a sync the cache counts as fresh.
func WithRefreshInterval(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.refreshInterval = d
		}
	}
}

// WithSyncTimeout bounds each shared remote operation.
func WithSyncTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.syncTimeout = d
		}
	}
}

// New creates a Repository over the given cache, remote and sync marker.
func New(store Store, remote Remote, state syncstate.Store, opts ...Option) *Repository {
	r := &Repository{
		store:           store,
		remote:          remote,
		state:           state,
		clock:           clock.System{},
		logger:          logging.Default("repository"),
		refreshInterval: DefaultRefreshInterval,
		syncTimeout:     DefaultSyncTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetSchedule returns one schedule by name. A cached copy is returned as
// is, without any staleness check; otherwise the schedule is fetched,
// stored and returned. Remote and store failures are returned.
func (r *Repository) GetSchedule(ctx context.Context, name string) (*models.Schedule, error) {
	cached, err := r.store.GetScheduleByName(name)
	if err == nil {
		r.logger.Debug("cache hit", "name", name)
		return cached, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	r.logger.Debug("cache miss, fetching", "name", name)
	v, err := r.shared(ctx, "schedule:"+name, func(ctx context.Context) (any, error) {
		s, err := r.remote.FetchSchedule(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := r.store.CreateSchedule(s); err != nil {
			return nil, fmt.Errorf("store schedule: %w", err)
		}
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get schedule %q: %w", name, err)
	}
	return v.(*models.Schedule).Clone(), nil
}

// GetSchedules returns every schedule. When the cache is stale a refresh
// is attempted and its failure only logged. An empty cache forces one
// sync whose failure is returned.
func (r *Repository) GetSchedules(ctx context.Context) ([]*models.Schedule, error) {
	stale, err := r.isStale()
	if err != nil {
		r.logger.Warn("could not read last sync time, treating cache as stale", "err", err)
		stale = true
	}

	if stale {
		if _, err := r.SyncSchedulesWithRemote(ctx); err != nil {
			r.logger.Warn("refresh failed, serving cached schedules", "err", err)
		}
	}

	schedules, err := r.store.ListSchedules()
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	if len(schedules) > 0 {
		return schedules, nil
	}

	r.logger.Info("no cached schedules, syncing")
	if _, err := r.SyncSchedulesWithRemote(ctx); err != nil {
		return nil, fmt.Errorf("sync empty cache: %w", err)
	}

	schedules, err = r.store.ListSchedules()
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// SyncSchedulesWithRemote fetches the full schedule set and replaces the
// cache with it. Concurrent callers share one in-flight sync. Nothing is
// written unless the fetch succeeds.
func (r *Repository) SyncSchedulesWithRemote(ctx context.Context) (*SyncResult, error) {
	v, err := r.shared(ctx, syncKey, r.runSync)
	if err != nil {
		return nil, err
	}
	res := *v.(*SyncResult)
	res.Failed = append([]string{}, res.Failed...)
	return &res, nil
}

func (r *Repository) runSync(ctx context.Context) (any, error) {
	start := r.clock.Now()

	schedules, err := r.remote.FetchSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch schedules: %w", err)
	}

	summary, err := r.store.ReplaceSchedules(schedules)
	if err != nil {
		return nil, fmt.Errorf("replace schedules: %w", err)
	}

	syncedAt := r.clock.Now()
	if err := r.state.SetLastSync(syncedAt); err != nil {
		r.logger.Warn("failed to record last sync time", "err", err)
	}

	res := &SyncResult{
		Succeeded: summary.Stored,
		Total:     summary.Total,
		Failed:    []string{},
		SyncedAt:  syncedAt,
	}
	for _, f := range summary.Failures {
		res.Failed = append(res.Failed, f.Name)
	}

	r.logger.Info("sync complete",
		"succeeded", res.Succeeded,
		"total", res.Total,
		"elapsed", syncedAt.Sub(start))
	return res, nil
}

// Status reports when the cache was last synced and whether it is stale.
func (r *Repository) Status() (*Status, error) {
	last, ok, err := r.state.LastSync()
	if err != nil {
		return nil, fmt.Errorf("read last sync: %w", err)
	}
	st := &Status{
		LastSync:        last,
		HasSynced:       ok,
		RefreshInterval: r.refreshInterval,
		Stale:           r.staleAt(last, ok, r.clock.Now()),
	}
	if ok {
		st.NextRefresh = last.Add(r.refreshInterval)
	}
	return st, nil
}

// Reset clears the cache and forgets the last sync time.
func (r *Repository) Reset() error {
	if err := r.store.ClearAll(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.state.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (r *Repository) isStale() (bool, error) {
	last, ok, err := r.state.LastSync()
	if err != nil {
		return true, err
	}
	return r.staleAt(last, ok, r.clock.Now()), nil
}

func (r *Repository) staleAt(last time.Time, ok bool, now time.Time) bool {
	return !ok || now.Sub(last) > r.refreshInterval
}

// shared runs fn once per key across concurrent callers. The run drops
// the first caller's cancellation and deadline alike and is bounded only
// by the sync timeout, even when a single caller is waiting. A caller's
// deadline limits how long that caller waits, not how long the fetch runs;
// a fetch that outlives its caller still stores its result.
func (r *Repository) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := r.flights.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.syncTimeout)
		defer cancel()
		return fn(runCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
