package handlers

import (
	"github.com/hocine1592/offlinesteamweb/internal/nav"
	"github.com/hocine1592/offlinesteamweb/internal/seo"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	Dir       string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Langs       []LangLink

	// Optional per-page view model payloads
	Home     any
	Library  any
	Purchase any
}

// LangLink switches the interface language while staying on the same page.
type LangLink struct {
	Lang   string
	Href   string
	Active bool
}
