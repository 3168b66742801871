package catalog

import "time"

// Origin identifies where the current full list came from.
type Origin string

const (
	OriginNone     Origin = ""
	OriginRemote   Origin = "remote"
	OriginFallback Origin = "fallback"
)

// State is an immutable snapshot of the catalog and the selections that
// produced its visible subset. Methods return new values; slices are never
// written after construction.
type State struct {
	All      []Game
	Visible  []Game
	Query    Query
	Origin   Origin
	Err      error
	Loaded   bool
	LoadedAt time.Time
}

// Loading is the state before the first load completes.
func Loading() State {
	return State{}
}

// NewState seeds a snapshot from a freshly loaded list. err is the masked
// fetch failure, if any.
func NewState(all []Game, origin Origin, err error, at time.Time) State {
	s := State{
		All:      cloneGames(all),
		Origin:   origin,
		Err:      err,
		Loaded:   true,
		LoadedAt: at,
	}
	s.Visible = Apply(s.All, s.Query)
	return s
}

// WithQuery returns a copy of s whose visible subset reflects q.
func (s State) WithQuery(q Query) State {
	next := s
	next.Query = q
	if !s.Loaded {
		next.Visible = nil
		return next
	}
	next.Visible = Apply(s.All, q)
	return next
}

// Empty reports whether a completed pass produced no visible games.
func (s State) Empty() bool {
	return s.Loaded && len(s.Visible) == 0
}

// Count is the number of visible games.
func (s State) Count() int {
	return len(s.Visible)
}

// Failed reports whether the list is masking a fetch failure.
func (s State) Failed() bool {
	return s.Err != nil
}

// Lookup finds a game by id in the full list.
func (s State) Lookup(id int) (Game, error) {
	return Find(s.All, id)
}
