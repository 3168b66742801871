// Package live runs the per-connection search session behind the library's
// WebSocket channel. Each session owns its query and detail state and updates
// them from a single goroutine.
package live

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/debounce"
	"github.com/hocine1592/offlinesteamweb/internal/library"
)

// ErrClosed is returned by Post once the session has stopped.
var ErrClosed = errors.New("live: session closed")

// Kind identifies a session event.
type Kind int

const (
	// KindSearch is a keystroke in the search box. It is debounced.
	KindSearch Kind = iota + 1
	KindCategory
	KindPlatform
	KindSort
	// KindSelect opens the detail view for Event.ID.
	KindSelect
	KindClose
	// KindEscape is the global cancellation key.
	KindEscape
	// KindRefresh re-renders the grid from the latest catalog snapshot.
	KindRefresh

	kindCommitSearch
)

// Event is a single user action.
type Event struct {
	Kind  Kind
	Value string
	ID    int
}

// Snapshotter supplies the current catalog snapshot.
type Snapshotter interface {
	Snapshot() catalog.State
}

// Surface receives the session's renders.
type Surface interface {
	RenderGrid(ctx context.Context, view library.View) error
	RenderModal(ctx context.Context, modal library.Modal) error
}

// Config tunes a Session.
type Config struct {
	Query    catalog.Query
	Labels   library.Labels
	Debounce time.Duration
	Logger   *zap.Logger
}

// Session is one client's live search state.
type Session struct {
	store   Snapshotter
	surface Surface
	labels  library.Labels
	logger  *zap.Logger
	timer   *debounce.Timer

	events chan Event
	done   chan struct{}

	// Owned by Run.
	query  catalog.Query
	typed  string
	detail library.DetailState
}

// NewSession builds a session starting from cfg.Query.
func NewSession(store Snapshotter, surface Surface, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:   store,
		surface: surface,
		labels:  cfg.Labels,
		logger:  logger,
		timer:   debounce.New(cfg.Debounce),
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
		query:   cfg.Query,
		typed:   cfg.Query.Search,
	}
}

// Post queues ev for Run. It blocks until the event is queued, ctx is done or
// the session stops.
func (s *Session) Post(ctx context.Context, ev Event) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

// Run processes events until ctx is done or a render fails. It must be called
// once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			if err := s.handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case KindSearch:
		s.typed = ev.Value
		text := ev.Value
		s.timer.Reset(func() {
			select {
			case s.events <- Event{Kind: kindCommitSearch, Value: text}:
			case <-s.done:
			}
		})
		return nil
	case kindCommitSearch:
		if ev.Value != s.typed || ev.Value == s.query.Search {
			return nil
		}
		s.query.Search = ev.Value
		return s.renderGrid(ctx)
	case KindCategory:
		s.applyTyped()
		s.query.Category = ev.Value
		return s.renderGrid(ctx)
	case KindPlatform:
		s.applyTyped()
		s.query.Platform = catalog.ParsePlatform(ev.Value)
		return s.renderGrid(ctx)
	case KindSort:
		s.applyTyped()
		s.query.Sort = catalog.ParseSortMode(ev.Value)
		return s.renderGrid(ctx)
	case KindRefresh:
		return s.renderGrid(ctx)
	case KindSelect:
		g, err := s.store.Snapshot().Lookup(ev.ID)
		if err != nil {
			s.logger.Debug("live select ignored", zap.Int("game_id", ev.ID), zap.Error(err))
			return nil
		}
		s.detail.Open(g)
		return s.surface.RenderModal(ctx, library.ModalFor(&s.detail, s.labels))
	case KindClose, KindEscape:
		if !s.detail.Close() {
			return nil
		}
		return s.surface.RenderModal(ctx, library.Modal{})
	default:
		s.logger.Debug("live event ignored", zap.Int("kind", int(ev.Kind)))
		return nil
	}
}

// applyTyped folds text still waiting on the debounce into the query so that
// an immediate control change filters with what is in the search box.
func (s *Session) applyTyped() {
	if s.typed == s.query.Search {
		return
	}
	s.timer.Cancel()
	s.query.Search = s.typed
}

func (s *Session) renderGrid(ctx context.Context) error {
	state := s.store.Snapshot().WithQuery(s.query)
	return s.surface.RenderGrid(ctx, library.BuildView(state, s.labels))
}

// Query returns the session's committed query. It is only safe to call after
// Run has returned.
func (s *Session) Query() catalog.Query { return s.query }

// ParseEventKind maps a wire action name to a Kind. Unknown names return 0.
func ParseEventKind(action string) Kind {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "search":
		return KindSearch
	case "category":
		return KindCategory
	case "platform":
		return KindPlatform
	case "sort":
		return KindSort
	case "select":
		return KindSelect
	case "close":
		return KindClose
	case "escape":
		return KindEscape
	case "refresh":
		return KindRefresh
	default:
		return 0
	}
}
