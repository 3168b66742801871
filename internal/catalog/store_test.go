package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubSource struct {
	games []Game
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (s *stubSource) Load(ctx context.Context) ([]Game, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.games, s.err
}

func TestStoreStartsLoading(t *testing.T) {
	t.Parallel()

	store := NewStore(&stubSource{}, nil)
	snap := store.Snapshot()
	require.False(t, snap.Loaded)
	require.Empty(t, snap.Visible)
	require.False(t, snap.Empty())
}

func TestStoreLoadRemote(t *testing.T) {
	t.Parallel()

	src := &stubSource{games: mixedCatalog()}
	store := NewStore(src, nil)
	state := store.Load(context.Background())

	require.True(t, state.Loaded)
	require.Equal(t, OriginRemote, state.Origin)
	require.NoError(t, state.Err)
	require.Equal(t, titles(mixedCatalog()), titles(state.Visible))
	require.Equal(t, state, store.Snapshot())
}

func TestStoreLoadMasksFetchErrorWithSample(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	fetchErr := &FetchError{Endpoint: "https://example.test/api/games", Attempts: []Attempt{
		{Transport: TransportDirect, Err: errors.New("dial tcp: refused")},
		{Transport: TransportProxy, Err: &StatusError{Code: 403}},
	}}
	store := NewStore(&stubSource{err: fetchErr}, zap.New(core))

	state := store.Load(context.Background())
	require.True(t, state.Loaded)
	require.True(t, state.Failed())
	require.Equal(t, OriginFallback, state.Origin)
	require.Equal(t, 6, state.Count())
	require.Equal(t, titles(Sample()), titles(state.Visible))

	var got *FetchError
	require.ErrorAs(t, state.Err, &got)
	require.Equal(t, 1, logs.FilterMessageSnippet("fallback").Len())
}

func TestStoreRefreshCollapsesConcurrentCallers(t *testing.T) {
	t.Parallel()

	src := &stubSource{games: Sample(), gate: make(chan struct{})}
	store := NewStore(src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Refresh(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	require.Equal(t, int32(1), src.calls.Load())
	require.True(t, store.Snapshot().Loaded)
}

func TestStoreLoadDiscardsResultAfterCancel(t *testing.T) {
	t.Parallel()

	src := &stubSource{games: mixedCatalog(), gate: make(chan struct{})}
	store := NewStore(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() { done <- store.Load(ctx) }()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	state := <-done

	require.False(t, state.Loaded)
	require.False(t, store.Snapshot().Loaded)
}

func TestStoreRunRefreshesUntilCancelled(t *testing.T) {
	t.Parallel()

	src := &stubSource{games: Sample()}
	store := NewStore(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	require.True(t, store.Snapshot().Loaded)
}

func TestStateWithQuery(t *testing.T) {
	t.Parallel()

	base := NewState(Sample(), OriginRemote, nil, time.Now())
	narrowed := base.WithQuery(Query{Search: "valo"})
	require.Equal(t, []string{"Valorant"}, titles(narrowed.Visible))
	require.Len(t, base.Visible, 6)
	require.Len(t, narrowed.All, 6)

	none := base.WithQuery(Query{Search: "no such game"})
	require.True(t, none.Empty())
	require.Equal(t, 0, none.Count())

	loading := Loading().WithQuery(Query{Search: "valo"})
	require.False(t, loading.Empty())
	require.Nil(t, loading.Visible)

	g, err := base.Lookup(5)
	require.NoError(t, err)
	require.Equal(t, "League of Legends", g.Title)
	_, err = base.Lookup(999)
	require.ErrorIs(t, err, ErrNotFound)
}
