package main

import (
	"net/http"
	"net/url"

	handlersPkg "github.com/hocine1592/offlinesteamweb/internal/handlers"
	"github.com/hocine1592/offlinesteamweb/internal/nav"
	"github.com/hocine1592/offlinesteamweb/internal/seo"
)

// basePage fills the layout fields shared by every page.
func (s *server) basePage(r *http.Request, lang, title, desc string) handlersPkg.PageData {
	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		Dir:         s.i18n.Dir(lang),
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Langs:       s.langLinks(r, lang),
		Analytics:   handlersPkg.AnalyticsFromConfig(s.cfg),
	}

	brand := s.i18nOrDefault(lang, "brand.name", "Offline Steam")
	vm.SEO.Title = title + " | " + brand
	vm.SEO.Description = desc
	vm.SEO.Canonical = s.absoluteURL(r, r.URL.Path)
	vm.SEO.OG = seo.OpenGraph{
		Title:       vm.SEO.Title,
		Description: desc,
		Type:        "website",
		URL:         vm.SEO.Canonical,
		SiteName:    brand,
	}
	vm.SEO.Twitter.Card = "summary_large_image"
	for _, l := range s.i18n.Supported() {
		vm.SEO.Alternates = append(vm.SEO.Alternates, seo.Alternate{
			Href:     s.absoluteURL(r, r.URL.Path) + "?hl=" + l,
			Hreflang: l,
		})
	}
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(s.breadcrumbItems(r, lang, vm.Breadcrumbs))))
	return vm
}

// langLinks keeps the current query and swaps hl.
func (s *server) langLinks(r *http.Request, current string) []handlersPkg.LangLink {
	supported := s.i18n.Supported()
	out := make([]handlersPkg.LangLink, 0, len(supported))
	for _, l := range supported {
		q := url.Values{}
		for k, v := range r.URL.Query() {
			q[k] = v
		}
		q.Set("hl", l)
		out = append(out, handlersPkg.LangLink{
			Lang:   l,
			Href:   r.URL.Path + "?" + q.Encode(),
			Active: l == current,
		})
	}
	return out
}

func (s *server) breadcrumbItems(r *http.Request, lang string, crumbs []nav.Crumb) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = s.i18n.T(lang, c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: s.absoluteURL(r, c.Href)})
	}
	return items
}

// absoluteURL prefers the configured base URL and falls back to the request host.
func (s *server) absoluteURL(r *http.Request, p string) string {
	if s.cfg.Site.BaseURL != "" {
		return s.cfg.Site.BaseURL + p
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + p
}
