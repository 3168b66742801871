package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var meter = otel.Meter("github.com/hocine1592/offlinesteamweb/internal/catalog")

// loadCounter counts installed snapshots by origin. The global provider is a
// no-op until an exporter is registered.
var loadCounter, _ = meter.Int64Counter("catalog.loads",
	metric.WithDescription("Catalog snapshots installed, by origin."),
)

// Store owns the current catalog snapshot. Readers take snapshots without
// locking; loads replace the snapshot wholesale.
type Store struct {
	source  Source
	logger  *zap.Logger
	now     func() time.Time
	current atomic.Pointer[State]
	group   singleflight.Group
}

// NewStore builds a Store in the loading state.
func NewStore(source Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		source: source,
		logger: logger,
		now:    time.Now,
	}
	initial := Loading()
	s.current.Store(&initial)
	return s
}

// Snapshot returns the current base state with the default query applied.
func (s *Store) Snapshot() State {
	return *s.current.Load()
}

// Load fetches the catalog and installs the result. When the source fails the
// fetch error is logged and masked by the built-in sample. Load never leaves
// the store without games once it returns.
func (s *Store) Load(ctx context.Context) State {
	var (
		games  []Game
		err    error
		origin = OriginRemote
	)
	if s.source != nil {
		games, err = s.source.Load(ctx)
	} else {
		err = &FetchError{Endpoint: "(none)"}
	}
	if err != nil {
		s.logger.Warn("catalog fetch failed; serving fallback catalog", zap.Error(err))
		games = Sample()
		origin = OriginFallback
	}
	if ctx.Err() != nil {
		// Torn down mid-flight: keep whatever was installed before.
		return s.Snapshot()
	}
	next := NewState(games, origin, err, s.now())
	s.current.Store(&next)
	loadCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", string(origin))))
	s.logger.Info("catalog loaded",
		zap.String("origin", string(origin)),
		zap.Int("games", len(next.All)),
	)
	return next
}

// Refresh runs Load, collapsing concurrent callers into one fetch.
func (s *Store) Refresh(ctx context.Context) State {
	v, _, _ := s.group.Do("catalog", func() (any, error) {
		return s.Load(ctx), nil
	})
	return v.(State)
}

// Run loads once and then refreshes every interval until ctx is done. A zero
// interval loads once and returns.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}
