package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/content"
	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/cms"
	"github.com/hocine1592/offlinesteamweb/internal/config"
	"github.com/hocine1592/offlinesteamweb/internal/i18n"
	"github.com/hocine1592/offlinesteamweb/internal/library"
	"github.com/hocine1592/offlinesteamweb/internal/live"
	mw "github.com/hocine1592/offlinesteamweb/internal/middleware"
	"github.com/hocine1592/offlinesteamweb/internal/observability"
	"github.com/hocine1592/offlinesteamweb/locales"
	"github.com/hocine1592/offlinesteamweb/public"
	"github.com/hocine1592/offlinesteamweb/templates"
)

const requestTimeout = 30 * time.Second

type server struct {
	cfg    config.Config
	logger *zap.Logger
	store  *catalog.Store
	cms    *cms.Client
	i18n   *i18n.Bundle
	tmpl   *templateSet
	assets fs.FS
}

func newServer(cfg config.Config, logger *zap.Logger, source catalog.Source) (*server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle, err := i18n.Load(locales.FS, cfg.Site.DefaultLang, config.SupportedLangs)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	var tmplFS fs.FS = templates.FS
	if cfg.Server.Dev && cfg.Server.TemplatesDir != "" {
		tmplFS = os.DirFS(cfg.Server.TemplatesDir)
	}
	assets, err := fs.Sub(public.FS, "assets")
	if err != nil {
		return nil, fmt.Errorf("public assets: %w", err)
	}
	if cfg.Server.PublicDir != "" {
		assets = os.DirFS(cfg.Server.PublicDir)
	}

	s := &server{
		cfg:    cfg,
		logger: logger,
		store:  catalog.NewStore(source, logger.Named("store")),
		cms:    cms.NewClient(content.FS, cms.WithFallbackLangs(cfg.Site.DefaultLang, "en")),
		i18n:   bundle,
		assets: assets,
	}
	s.tmpl, err = newTemplateSet(tmplFS, s.funcMap(), cfg.Server.Dev)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return s, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLogger(s.logger))
	r.Use(observability.Trace)
	r.Use(observability.RequestLogger)
	r.Use(observability.Recoverer)
	r.Use(mw.HTMX)
	r.Use(mw.Locale(s.i18n))
	r.Use(mw.VaryLocale)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(s.assets)))

	// Long-lived; kept out of the compress and timeout group.
	r.Method(http.MethodGet, "/games/live", live.NewHandler(s.store, s.tmpl, live.HandlerOptions{
		Debounce: s.cfg.Search.Debounce,
		Logger:   s.logger.Named("live"),
		Locale: func(r *http.Request) (string, library.Labels) {
			lang := mw.Lang(r)
			return lang, s.labels(lang)
		},
	}))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(requestTimeout))

		r.Get("/", s.handleHome)
		r.Get("/games", s.handleGames)
		r.Get("/games/grid", s.handleGamesGrid)
		r.Get("/games/modal/close", s.handleGameModalClose)
		r.Get("/games/{id}", s.handleGameDetail)
		r.Get("/purchase", s.handlePurchase)
		r.Get("/purchase/order", s.handleOrder)
		r.Get("/purchase/order/close", s.handleOrderClose)
	})
	return r
}

type healthResponse struct {
	Status  string        `json:"status"`
	Catalog catalogHealth `json:"catalog"`
}

type catalogHealth struct {
	Loaded   bool       `json:"loaded"`
	Origin   string     `json:"origin,omitempty"`
	Games    int        `json:"games"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	state := s.store.Snapshot()
	resp := healthResponse{
		Status: "ok",
		Catalog: catalogHealth{
			Loaded: state.Loaded,
			Origin: string(state.Origin),
			Games:  len(state.All),
		},
	}
	if state.Loaded {
		at := state.LoadedAt.UTC()
		resp.Catalog.LoadedAt = &at
	}
	if state.Err != nil {
		resp.Catalog.Error = state.Err.Error()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}

// labels are the localized fallbacks for missing game fields.
func (s *server) labels(lang string) library.Labels {
	return library.Labels{
		DefaultGenre:  s.i18n.T(lang, "library.label.game"),
		NoDescription: s.i18n.T(lang, "library.label.no_description"),
		NotSpecified:  s.i18n.T(lang, "library.label.not_specified"),
	}
}

// i18nOrDefault returns def when key has no translation.
func (s *server) i18nOrDefault(lang, key, def string) string {
	if v := s.i18n.T(lang, key); v != "" && v != key {
		return v
	}
	return def
}
