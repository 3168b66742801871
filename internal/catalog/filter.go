package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Platform is the platform filter selection.
type Platform string

const (
	PlatformAny     Platform = ""
	PlatformPC      Platform = "pc"
	PlatformBrowser Platform = "browser"
)

// SortMode selects the ordering of the visible subset.
type SortMode string

const (
	SortRelevance    SortMode = "relevance"
	SortAlphabetical SortMode = "alphabetical"
	SortReleaseDate  SortMode = "release-date"
	// SortPopularity keeps the upstream order, which is assumed but not
	// guaranteed to be by popularity.
	SortPopularity SortMode = "popularity"
)

// ParseSortMode maps a form value to a SortMode. Unknown values are relevance.
func ParseSortMode(v string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(v))) {
	case SortAlphabetical:
		return SortAlphabetical
	case SortReleaseDate, "release_date", "releasedate":
		return SortReleaseDate
	case SortPopularity:
		return SortPopularity
	default:
		return SortRelevance
	}
}

// ParsePlatform normalises a form value. Values other than pc and browser are
// kept as given so that they match nothing.
func ParsePlatform(v string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(v)))
}

// Query is the current set of filter and sort selections.
type Query struct {
	Search   string
	Category string
	Platform Platform
	Sort     SortMode
	// Lang is a BCP 47 tag used for alphabetical collation. Empty means English.
	Lang string
}

// IsZero reports whether no filter is active. Sort and Lang are ignored.
func (q Query) IsZero() bool {
	return q.Search == "" && q.Category == "" && q.Platform == PlatformAny
}

// Apply returns the games matching every active predicate of q, ordered by
// q.Sort. all is never modified.
func Apply(all []Game, q Query) []Game {
	search := strings.ToLower(q.Search)
	category := strings.ToLower(strings.TrimSpace(q.Category))
	platform := Platform(strings.ToLower(string(q.Platform)))

	out := make([]Game, 0, len(all))
	for _, g := range all {
		if !matchesSearch(g, search) || !matchesCategory(g, category) || !matchesPlatform(g, platform) {
			continue
		}
		out = append(out, g)
	}

	switch q.Sort {
	case SortAlphabetical:
		sortAlphabetical(out, q.Lang)
	case SortReleaseDate:
		sortByRelease(out)
	}
	return out
}

func matchesSearch(g Game, search string) bool {
	return strings.Contains(strings.ToLower(g.Title), search)
}

func matchesCategory(g Game, category string) bool {
	if category == "" {
		return true
	}
	if g.Genre == "" {
		return false
	}
	return strings.Contains(strings.ToLower(g.Genre), category)
}

func matchesPlatform(g Game, platform Platform) bool {
	label := strings.ToLower(g.Platform)
	switch platform {
	case PlatformAny:
		return true
	case PlatformPC:
		return label != "" && strings.Contains(label, "windows")
	case PlatformBrowser:
		return label != "" && strings.Contains(label, "browser")
	default:
		return false
	}
}

func sortAlphabetical(games []Game, lang string) {
	col := collate.New(collationTag(lang))
	sort.SliceStable(games, func(i, j int) bool {
		return col.CompareString(games[i].Title, games[j].Title) < 0
	})
}

// sortByRelease orders newest first. Games without a parseable date go last
// in their input order.
func sortByRelease(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		a, aok := games[i].Released()
		b, bok := games[j].Released()
		switch {
		case aok && bok:
			return a.After(b)
		case aok:
			return true
		default:
			return false
		}
	})
}

func collationTag(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return language.English
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return tag
}
