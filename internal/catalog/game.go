package catalog

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a game id is not part of the current snapshot.
var ErrNotFound = errors.New("catalog: game not found")

// Game is a single catalog entry as served by the public games endpoint.
type Game struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	ShortDescription string `json:"short_description"`
	GameURL          string `json:"game_url"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	Publisher        string `json:"publisher"`
	Developer        string `json:"developer"`
	ReleaseDate      string `json:"release_date"`
}

// Released parses ReleaseDate. The second result is false when the date is
// missing or not in a recognised layout.
func (g Game) Released() (time.Time, bool) {
	t := parseReleaseDate(g.ReleaseDate)
	return t, !t.IsZero()
}

// IsBrowser reports whether the platform label names a browser build.
// The check is case-sensitive to match the badge rule on cards.
func (g Game) IsBrowser() bool {
	return strings.Contains(g.Platform, "Browser")
}

func parseReleaseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006/01/02",
		"2006-1-2",
		"Jan 2, 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Find returns the game with the given id.
func Find(games []Game, id int) (Game, error) {
	for _, g := range games {
		if g.ID == id {
			return g, nil
		}
	}
	return Game{}, ErrNotFound
}

func cloneGames(src []Game) []Game {
	if len(src) == 0 {
		return []Game{}
	}
	out := make([]Game, len(src))
	copy(out, src)
	return out
}
