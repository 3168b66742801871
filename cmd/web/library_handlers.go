package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/library"
	"github.com/hocine1592/offlinesteamweb/internal/live"
	mw "github.com/hocine1592/offlinesteamweb/internal/middleware"
	"github.com/hocine1592/offlinesteamweb/internal/seo"
)

const featuredCount = 6

// homeView is the landing page payload.
type homeView struct {
	View     library.View
	Featured []library.Card
	Modal    library.ModalFragment
}

// gamesView is the library page payload.
type gamesView struct {
	Filters library.Filters
	Grid    library.GridFragment
	Modal   library.ModalFragment
	LiveURL string
}

// handleHome renders the landing page with the first cards of the default query.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view := library.BuildView(s.store.Snapshot().WithQuery(catalog.Query{Lang: lang}), s.labels(lang))

	title := s.i18nOrDefault(lang, "home.title", "Play your favourite games offline")
	vm := s.basePage(r, lang, title, s.i18nOrDefault(lang, "home.description", ""))
	brand := s.i18nOrDefault(lang, "brand.name", "Offline Steam")
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.WebSite(brand, s.absoluteURL(r, "/"), s.absoluteURL(r, "/games?q="))))
	vm.Home = homeView{
		View:     view,
		Featured: view.Featured(featuredCount),
		Modal:    library.ModalFragment{Lang: lang},
	}
	s.renderPage(w, r, "home", vm)
}

// handleGames renders the library page. ?game= deep-links the detail modal.
func (s *server) handleGames(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	labels := s.labels(lang)
	q := live.QueryFromValues(r.URL.Query(), lang)
	state := s.store.Snapshot().WithQuery(q)
	view := library.BuildView(state, labels)

	modal := library.ModalFragment{Lang: lang}
	if raw := r.URL.Query().Get("game"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			if g, err := state.Lookup(id); err == nil {
				var ds library.DetailState
				ds.Open(g)
				modal.Modal = library.ModalFor(&ds, labels)
			}
		}
	}

	liveURL := "/games/live"
	if enc := library.EncodeQuery(q); enc != "" {
		liveURL += "?" + enc
	}

	title := s.i18nOrDefault(lang, "library.title", "Games library")
	vm := s.basePage(r, lang, title, s.i18nOrDefault(lang, "library.description", ""))
	if !view.Loading {
		games := make([]seo.VideoGame, 0, len(view.Cards))
		for _, c := range view.Cards {
			games = append(games, seo.VideoGame{
				Name:  c.Title,
				URL:   s.absoluteURL(r, "/games?game="+strconv.Itoa(c.ID)),
				Image: c.Thumbnail,
				Genre: c.Genre,
			})
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.GameList(games)))
	}
	if !q.IsZero() {
		vm.SEO.Robots = "noindex, follow"
	}
	vm.Library = gamesView{
		Filters: library.FiltersFor(q),
		Grid:    library.GridFragment{Lang: lang, View: view},
		Modal:   modal,
		LiveURL: liveURL,
	}
	s.renderPage(w, r, "games", vm)
}

// handleGamesGrid renders the results fragment. The loading poll replaces
// the URL instead of pushing a history entry on every tick.
func (s *server) handleGamesGrid(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	q := live.QueryFromValues(r.URL.Query(), lang)
	view := library.BuildView(s.store.Snapshot().WithQuery(q), s.labels(lang))
	if r.Header.Get("HX-Trigger") == "gamesResults" {
		w.Header().Set("HX-Replace-Url", library.LibraryURL(q))
	} else {
		w.Header().Set("HX-Push-Url", library.LibraryURL(q))
	}
	s.renderTemplate(w, r, library.TemplateGrid, library.GridFragment{Lang: lang, View: view})
}

// handleGameDetail renders the open detail modal. Unknown ids are a 404 and
// leave the modal closed.
func (s *server) handleGameDetail(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	notFound := s.i18nOrDefault(lang, "errors.not_found", "Not found")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, notFound)
		return
	}
	g, err := s.store.Snapshot().Lookup(id)
	if err != nil {
		mw.WriteError(w, r, http.StatusNotFound, notFound)
		return
	}
	var ds library.DetailState
	ds.Open(g)
	s.renderTemplate(w, r, library.TemplateModal, library.ModalFragment{
		Lang:  lang,
		Modal: library.ModalFor(&ds, s.labels(lang)),
	})
}

// handleGameModalClose renders the closed, empty modal.
func (s *server) handleGameModalClose(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, library.TemplateModal, library.ModalFragment{Lang: mw.Lang(r)})
}
