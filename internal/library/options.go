package library

import (
	"net/url"
	"strings"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
)

// Option is one entry of a filter select. LabelKey is an i18n key.
type Option struct {
	Value    string
	LabelKey string
	Selected bool
}

// Filters holds the select options for the library toolbar.
type Filters struct {
	Search     string
	Categories []Option
	Platforms  []Option
	Sorts      []Option
}

var categoryValues = []string{
	"shooter",
	"mmorpg",
	"moba",
	"battle royale",
	"strategy",
	"card game",
	"racing",
	"sports",
	"fighting",
	"social",
	"fantasy",
}

var platformValues = []catalog.Platform{catalog.PlatformAny, catalog.PlatformPC, catalog.PlatformBrowser}

var sortValues = []catalog.SortMode{
	catalog.SortRelevance,
	catalog.SortAlphabetical,
	catalog.SortReleaseDate,
	catalog.SortPopularity,
}

// FiltersFor marks the options selected by q.
func FiltersFor(q catalog.Query) Filters {
	f := Filters{Search: q.Search}
	category := strings.ToLower(strings.TrimSpace(q.Category))
	f.Categories = append(f.Categories, Option{Value: "", LabelKey: "library.category.all", Selected: category == ""})
	for _, v := range categoryValues {
		f.Categories = append(f.Categories, Option{
			Value:    v,
			LabelKey: "library.category." + strings.ReplaceAll(v, " ", "_"),
			Selected: v == category,
		})
	}
	for _, p := range platformValues {
		key := string(p)
		if key == "" {
			key = "all"
		}
		f.Platforms = append(f.Platforms, Option{
			Value:    string(p),
			LabelKey: "library.platform." + key,
			Selected: p == q.Platform,
		})
	}
	sort := q.Sort
	if sort == "" {
		sort = catalog.SortRelevance
	}
	for _, s := range sortValues {
		f.Sorts = append(f.Sorts, Option{
			Value:    string(s),
			LabelKey: "library.sort." + strings.ReplaceAll(string(s), "-", "_"),
			Selected: s == sort,
		})
	}
	return f
}

// EncodeQuery renders q as URL query parameters, leaving out defaults.
func EncodeQuery(q catalog.Query) string {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		v.Set("category", c)
	}
	if q.Platform != catalog.PlatformAny {
		v.Set("platform", string(q.Platform))
	}
	if q.Sort != "" && q.Sort != catalog.SortRelevance {
		v.Set("sort", string(q.Sort))
	}
	return v.Encode()
}

// LibraryURL is the library page for q.
func LibraryURL(q catalog.Query) string {
	if enc := EncodeQuery(q); enc != "" {
		return "/games?" + enc
	}
	return "/games"
}
