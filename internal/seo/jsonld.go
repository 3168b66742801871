package seo

import (
	"encoding/json"
	"strconv"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// VideoGame is one entry of a game ItemList.
type VideoGame struct {
	Name  string
	URL   string
	Image string
	Genre string
}

// GameList builds an ItemList of VideoGame entries.
func GameList(games []VideoGame) map[string]any {
	el := make([]map[string]any, 0, len(games))
	for i, g := range games {
		item := map[string]any{
			"@type": "VideoGame",
			"name":  g.Name,
		}
		if g.URL != "" {
			item["url"] = g.URL
		}
		if g.Image != "" {
			item["image"] = g.Image
		}
		if g.Genre != "" {
			item["genre"] = g.Genre
		}
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"numberOfItems":   len(games),
		"itemListElement": el,
	}
}

// Offer is a priced plan.
type Offer struct {
	Name     string
	Price    int
	Currency string
}

// Product returns a product schema with one offer per plan.
func Product(name, description, url string, offers []Offer) map[string]any {
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        name,
		"description": description,
	}
	if url != "" {
		m["url"] = url
	}
	if len(offers) > 0 {
		out := make([]map[string]any, 0, len(offers))
		for _, o := range offers {
			out = append(out, map[string]any{
				"@type":         "Offer",
				"name":          o.Name,
				"price":         strconv.Itoa(o.Price),
				"priceCurrency": o.Currency,
				"availability":  "https://schema.org/InStock",
			})
		}
		m["offers"] = out
	}
	return m
}
