package library

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
)

// descriptions arrive from a third party and are shown as text only.
var descriptionPolicy = bluemonday.StrictPolicy()

// Detail is the detail modal's content for one game.
type Detail struct {
	ID          int
	Title       string
	Image       string
	Description template.HTML
	Genre       string
	Platform    string
	Publisher   string
	Developer   string
	ReleaseDate string
	Link        string
}

// NewDetail fills in localized defaults for every missing field.
func NewDetail(g catalog.Game, labels Labels) Detail {
	labels = labels.withDefaults()
	desc := strings.TrimSpace(descriptionPolicy.Sanitize(g.ShortDescription))
	if desc == "" {
		desc = template.HTMLEscapeString(labels.NoDescription)
	}
	return Detail{
		ID:          g.ID,
		Title:       g.Title,
		Image:       firstNonEmpty(g.Thumbnail, PlaceholderImage),
		Description: template.HTML(desc),
		Genre:       firstNonEmpty(g.Genre, labels.NotSpecified),
		Platform:    firstNonEmpty(g.Platform, labels.NotSpecified),
		Publisher:   firstNonEmpty(g.Publisher, labels.NotSpecified),
		Developer:   firstNonEmpty(g.Developer, labels.NotSpecified),
		ReleaseDate: firstNonEmpty(g.ReleaseDate, labels.NotSpecified),
		Link:        PurchasePath,
	}
}

// DetailState is the detail view's two-state machine. The zero value is closed.
type DetailState struct {
	open bool
	game catalog.Game
}

// IsOpen reports whether a record is being shown.
func (s *DetailState) IsOpen() bool { return s.open }

// Current returns the open record.
func (s *DetailState) Current() (catalog.Game, bool) {
	if !s.open {
		return catalog.Game{}, false
	}
	return s.game, true
}

// Open shows g. Selecting another record while open replaces the content.
func (s *DetailState) Open(g catalog.Game) {
	s.open = true
	s.game = g
}

// Close hides the view. It reports whether the state changed.
func (s *DetailState) Close() bool {
	if !s.open {
		return false
	}
	s.open = false
	s.game = catalog.Game{}
	return true
}

// Cancel is the Escape-key transition. It behaves like Close.
func (s *DetailState) Cancel() bool { return s.Close() }

// Modal is the data for the detail modal fragment.
type Modal struct {
	Open   bool
	Detail Detail
}

// ModalFor renders the state into template data.
func ModalFor(s *DetailState, labels Labels) Modal {
	g, ok := s.Current()
	if !ok {
		return Modal{}
	}
	return Modal{Open: true, Detail: NewDetail(g, labels)}
}
