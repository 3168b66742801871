// Package library turns catalog snapshots into the view models rendered by the
// games library: the card grid, its status banners and the detail modal.
package library

import (
	"io"
	"strconv"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
)

// PlaceholderImage replaces a missing or broken thumbnail.
const PlaceholderImage = "https://via.placeholder.com/365x206/1a1a1a/00ff88?text=No+Image"

// PurchasePath is the fixed target of every detail view's action link.
const PurchasePath = "/purchase"

// Badge labels.
const (
	BadgeBrowser = "Browser"
	BadgePC      = "PC"
)

const cardDelayStepMillis = 80

// Renderer executes a named template. *html/template.Template satisfies it.
type Renderer interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// Labels are the localized fallbacks used when a record omits a field.
type Labels struct {
	DefaultGenre  string
	NoDescription string
	NotSpecified  string
}

// DefaultLabels returns the English fallbacks.
func DefaultLabels() Labels {
	return Labels{
		DefaultGenre:  "Game",
		NoDescription: "No description available",
		NotSpecified:  "Not specified",
	}
}

func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	if l.DefaultGenre == "" {
		l.DefaultGenre = d.DefaultGenre
	}
	if l.NoDescription == "" {
		l.NoDescription = d.NoDescription
	}
	if l.NotSpecified == "" {
		l.NotSpecified = d.NotSpecified
	}
	return l
}

// Card is one entry in the games grid.
type Card struct {
	ID        int
	Title     string
	Thumbnail string
	Genre     string
	Badge     string
	Delay     string
	DetailURL string
}

// View is the complete state of the grid area. The grid is rebuilt from it on
// every render.
type View struct {
	Loading   bool
	ShowError bool
	Empty     bool
	ShowCount bool
	Count     int
	Cards     []Card
	Query     catalog.Query
	Origin    catalog.Origin
}

// BuildView derives the grid view for a snapshot.
//
// Loading hides every other element. Once loaded, the count is always shown,
// the error banner is shown while a fetch failure is being masked, and the
// empty banner is shown when nothing matches.
func BuildView(state catalog.State, labels Labels) View {
	labels = labels.withDefaults()
	v := View{
		Query:  state.Query,
		Origin: state.Origin,
	}
	if !state.Loaded {
		v.Loading = true
		return v
	}
	v.ShowError = state.Failed()
	v.ShowCount = true
	v.Count = state.Count()
	v.Empty = state.Empty()
	v.Cards = make([]Card, 0, len(state.Visible))
	for i, g := range state.Visible {
		v.Cards = append(v.Cards, NewCard(g, i, labels))
	}
	return v
}

// NewCard builds the card for g at position index in the grid.
func NewCard(g catalog.Game, index int, labels Labels) Card {
	labels = labels.withDefaults()
	badge := BadgePC
	if g.IsBrowser() {
		badge = BadgeBrowser
	}
	return Card{
		ID:        g.ID,
		Title:     g.Title,
		Thumbnail: firstNonEmpty(g.Thumbnail, PlaceholderImage),
		Genre:     firstNonEmpty(g.Genre, labels.DefaultGenre),
		Badge:     badge,
		Delay:     cardDelay(index),
		DetailURL: DetailURL(g.ID),
	}
}

// DetailURL is the fragment endpoint that opens the detail view for id.
func DetailURL(id int) string {
	return "/games/" + strconv.Itoa(id)
}

// Featured returns the first n cards of v.
func (v View) Featured(n int) []Card {
	if n <= 0 || len(v.Cards) == 0 {
		return nil
	}
	if n > len(v.Cards) {
		n = len(v.Cards)
	}
	return v.Cards[:n]
}

func cardDelay(index int) string {
	if index < 0 {
		index = 0
	}
	seconds := float64(index*cardDelayStepMillis) / 1000
	return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
