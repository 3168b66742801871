package library

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
)

func loaded(games []catalog.Game, err error) catalog.State {
	origin := catalog.OriginRemote
	if err != nil {
		origin = catalog.OriginFallback
	}
	return catalog.NewState(games, origin, err, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func TestBuildViewLoading(t *testing.T) {
	t.Parallel()

	v := BuildView(catalog.Loading(), Labels{})
	require.True(t, v.Loading)
	require.False(t, v.ShowError)
	require.False(t, v.Empty)
	require.False(t, v.ShowCount)
	require.Empty(t, v.Cards)
}

func TestBuildViewFetchFailureShowsFallback(t *testing.T) {
	t.Parallel()

	state := loaded(catalog.Sample(), &catalog.FetchError{Endpoint: "x"})
	v := BuildView(state, Labels{})
	require.False(t, v.Loading)
	require.True(t, v.ShowError)
	require.True(t, v.ShowCount)
	require.False(t, v.Empty)
	require.Equal(t, 6, v.Count)
	require.Len(t, v.Cards, 6)
	require.Equal(t, catalog.OriginFallback, v.Origin)
}

func TestBuildViewEmpty(t *testing.T) {
	t.Parallel()

	state := loaded(catalog.Sample(), nil).WithQuery(catalog.Query{Search: "nothing matches this"})
	v := BuildView(state, Labels{})
	require.True(t, v.Empty)
	require.True(t, v.ShowCount)
	require.Equal(t, 0, v.Count)
	require.Empty(t, v.Cards)
	require.False(t, v.ShowError)
}

func TestBuildViewEmptyWhileMaskingError(t *testing.T) {
	t.Parallel()

	state := loaded(catalog.Sample(), errors.New("boom")).WithQuery(catalog.Query{Category: "racing"})
	v := BuildView(state, Labels{})
	require.True(t, v.ShowError)
	require.True(t, v.Empty)
	require.Equal(t, 0, v.Count)
}

func TestNewCard(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		game  catalog.Game
		index int
		want  Card
	}{
		{
			name:  "complete record",
			game:  catalog.Game{ID: 6, Title: "Valorant", Thumbnail: "https://img/v.jpg", Genre: "Shooter", Platform: "PC (Windows)"},
			index: 0,
			want:  Card{ID: 6, Title: "Valorant", Thumbnail: "https://img/v.jpg", Genre: "Shooter", Badge: BadgePC, Delay: "0s", DetailURL: "/games/6"},
		},
		{
			name:  "browser badge and defaults",
			game:  catalog.Game{ID: 9, Title: "Tiny Tanks", Platform: "Web Browser"},
			index: 3,
			want:  Card{ID: 9, Title: "Tiny Tanks", Thumbnail: PlaceholderImage, Genre: "Game", Badge: BadgeBrowser, Delay: "0.24s", DetailURL: "/games/9"},
		},
		{
			name:  "badge check is case-sensitive",
			game:  catalog.Game{ID: 10, Title: "Lower", Platform: "web browser"},
			index: 10,
			want:  Card{ID: 10, Title: "Lower", Thumbnail: PlaceholderImage, Genre: "Game", Badge: BadgePC, Delay: "0.8s", DetailURL: "/games/10"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, NewCard(tc.game, tc.index, Labels{}))
		})
	}
}

func TestCardsFollowVisibleOrder(t *testing.T) {
	t.Parallel()

	state := loaded(catalog.Sample(), nil).WithQuery(catalog.Query{Sort: catalog.SortAlphabetical})
	v := BuildView(state, Labels{DefaultGenre: "لعبة"})
	require.Len(t, v.Cards, len(state.Visible))
	for i, g := range state.Visible {
		require.Equal(t, g.Title, v.Cards[i].Title)
	}
	require.Equal(t, "Apex Legends", v.Cards[0].Title)
	require.Len(t, v.Featured(3), 3)
	require.Len(t, v.Featured(50), 6)
	require.Nil(t, v.Featured(0))
}

func TestNewDetailDefaults(t *testing.T) {
	t.Parallel()

	labels := Labels{NoDescription: "لا يوجد وصف متاح", NotSpecified: "غير محدد"}
	d := NewDetail(catalog.Game{ID: 3, Title: "Bare"}, labels)
	require.Equal(t, "لا يوجد وصف متاح", string(d.Description))
	require.Equal(t, "غير محدد", d.Genre)
	require.Equal(t, "غير محدد", d.Platform)
	require.Equal(t, "غير محدد", d.Publisher)
	require.Equal(t, "غير محدد", d.ReleaseDate)
	require.Equal(t, PlaceholderImage, d.Image)
	require.Equal(t, PurchasePath, d.Link)
}

func TestNewDetailSanitizesDescription(t *testing.T) {
	t.Parallel()

	g := catalog.Game{ID: 1, Title: "X", ShortDescription: `Fast <script>alert(1)</script><b>fun</b> & free`, GameURL: "https://elsewhere.test"}
	d := NewDetail(g, Labels{})
	require.NotContains(t, string(d.Description), "<script>")
	require.NotContains(t, string(d.Description), "<b>")
	require.Contains(t, string(d.Description), "fun")
	require.Equal(t, PurchasePath, d.Link)
}

func TestDetailStateTransitions(t *testing.T) {
	t.Parallel()

	var s DetailState
	require.False(t, s.IsOpen())
	require.False(t, s.Close())
	require.False(t, s.Cancel())

	games := catalog.Sample()
	s.Open(games[0])
	require.True(t, s.IsOpen())
	got, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, games[0].Title, got.Title)

	s.Open(games[1])
	got, _ = s.Current()
	require.Equal(t, games[1].Title, got.Title)

	require.True(t, s.Cancel())
	require.False(t, s.IsOpen())
	require.False(t, s.Cancel())

	s.Open(games[2])
	require.True(t, s.Close())
	_, ok = s.Current()
	require.False(t, ok)

	require.Equal(t, Modal{}, ModalFor(&s, Labels{}))
	s.Open(games[5])
	m := ModalFor(&s, Labels{})
	require.True(t, m.Open)
	require.Equal(t, "Valorant", m.Detail.Title)
}

func TestFiltersFor(t *testing.T) {
	t.Parallel()

	f := FiltersFor(catalog.Query{Search: "apex", Category: "MOBA", Platform: catalog.PlatformBrowser, Sort: catalog.SortReleaseDate})
	require.Equal(t, "apex", f.Search)

	selected := func(opts []Option) string {
		for _, o := range opts {
			if o.Selected {
				return o.Value
			}
		}
		return "<none>"
	}
	require.Equal(t, "moba", selected(f.Categories))
	require.Equal(t, "browser", selected(f.Platforms))
	require.Equal(t, "release-date", selected(f.Sorts))

	def := FiltersFor(catalog.Query{})
	require.Equal(t, "", selected(def.Categories))
	require.Equal(t, "", selected(def.Platforms))
	require.Equal(t, "relevance", selected(def.Sorts))
	require.Equal(t, "library.sort.release_date", def.Sorts[2].LabelKey)
	require.Equal(t, "library.category.card_game", def.Categories[6].LabelKey)
}

func TestEncodeQueryOmitsDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", EncodeQuery(catalog.Query{Sort: catalog.SortRelevance, Lang: "ar"}))
	require.Equal(t, "/games", LibraryURL(catalog.Query{}))

	q := catalog.Query{Search: "call of", Category: "shooter", Platform: catalog.PlatformPC, Sort: catalog.SortAlphabetical}
	require.Equal(t, "category=shooter&platform=pc&q=call+of&sort=alphabetical", EncodeQuery(q))
	require.Equal(t, "/games?category=shooter&platform=pc&q=call+of&sort=alphabetical", LibraryURL(q))
}
