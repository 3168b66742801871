package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/config"
)

type staticSource struct {
	games []catalog.Game
	err   error
}

func (s staticSource) Load(context.Context) ([]catalog.Game, error) {
	return s.games, s.err
}

// newTestServer builds the app like main() without touching the process env.
func newTestServer(t *testing.T, source catalog.Source, env map[string]string) *server {
	t.Helper()
	return newTestServerWithLogger(t, zaptest.NewLogger(t), source, env)
}

func newTestServerWithLogger(t *testing.T, logger *zap.Logger, source catalog.Source, env map[string]string) *server {
	t.Helper()
	values := map[string]string{"OSW_SEARCH_DEBOUNCE": "50ms"}
	for k, v := range env {
		values[k] = v
	}
	cfg, err := config.Load(context.Background(),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
		config.WithEnvMap(values),
	)
	require.NoError(t, err)
	srv, err := newServer(cfg, logger, source)
	require.NoError(t, err)
	return srv
}

func loadedServer(t *testing.T) *server {
	t.Helper()
	srv := newTestServer(t, staticSource{games: catalog.Sample()}, nil)
	srv.store.Load(context.Background())
	return srv
}

func get(t *testing.T, h http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func hidden(sel *goquery.Selection) bool {
	_, ok := sel.Attr("hidden")
	return ok
}

var english = map[string]string{"Accept-Language": "en"}

func TestHealthzReportsCatalog(t *testing.T) {
	srv := newTestServer(t, staticSource{games: catalog.Sample()}, nil)
	h := srv.routes()

	var body healthResponse
	rec := get(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
	require.False(t, body.Catalog.Loaded)

	srv.store.Load(context.Background())
	rec = get(t, h, "/healthz", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Catalog.Loaded)
	require.Equal(t, "remote", body.Catalog.Origin)
	require.Equal(t, 6, body.Catalog.Games)
	require.Empty(t, body.Catalog.Error)
}

func TestGamesFailingUpstreamShowsFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(upstream.Close)
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(relay.Close)

	srv := newTestServer(t, catalog.NewClient(upstream.URL, catalog.WithProxyPrefix(relay.URL+"/?")), nil)
	srv.store.Load(context.Background())

	rec := get(t, srv.routes(), "/games", english)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())

	require.False(t, hidden(doc.Find("#errorContainer")))
	require.True(t, hidden(doc.Find("#loadingContainer")))
	require.True(t, hidden(doc.Find("#noResults")))
	require.False(t, hidden(doc.Find("#gamesCount")))
	require.Equal(t, "6", doc.Find("#countNumber").Text())
	require.Equal(t, 6, doc.Find("#gamesGrid .game-card").Length())

	var body healthResponse
	rec = get(t, srv.routes(), "/healthz", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "fallback", body.Catalog.Origin)
	require.NotEmpty(t, body.Catalog.Error)
}

func TestGamesZeroMatchesShowsEmptyBanner(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/games?q=zzzz", english)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())

	require.False(t, hidden(doc.Find("#noResults")))
	require.True(t, hidden(doc.Find("#errorContainer")))
	require.Equal(t, "0", doc.Find("#countNumber").Text())
	require.Zero(t, doc.Find("#gamesGrid .game-card").Length())
	require.Equal(t, "zzzz", doc.Find("#searchInput").AttrOr("value", ""))
	require.Equal(t, "noindex, follow", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))
}

func TestGamesLoadingStatePolls(t *testing.T) {
	srv := newTestServer(t, staticSource{games: catalog.Sample()}, nil)
	rec := get(t, srv.routes(), "/games?category=moba", english)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())

	require.False(t, hidden(doc.Find("#loadingContainer")))
	require.True(t, hidden(doc.Find("#gamesCount")))
	require.True(t, hidden(doc.Find("#errorContainer")))
	require.True(t, hidden(doc.Find("#noResults")))
	require.Zero(t, doc.Find("#gamesGrid .game-card").Length())
	require.Equal(t, "/games/grid?category=moba", doc.Find("#gamesResults").AttrOr("hx-get", ""))
}

func TestGamesPageFiltersAndLiveURL(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/games?category=moba&sort=alphabetical", english)
	doc := parseHTML(t, rec.Body.String())

	require.Equal(t, []string{"League of Legends"}, doc.Find("#gamesGrid .game-title").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	}))
	require.Equal(t, "moba", doc.Find("#categoryFilter option[selected]").AttrOr("value", ""))
	require.Equal(t, "alphabetical", doc.Find("#sortFilter option[selected]").AttrOr("value", ""))
	require.Equal(t, "/games/live?category=moba&sort=alphabetical", doc.Find("[ws-connect]").AttrOr("ws-connect", ""))
	require.Contains(t, rec.Body.String(), `"@type":"ItemList"`)
}

func TestGamesGridFragmentPushesURL(t *testing.T) {
	srv := loadedServer(t)
	h := srv.routes()

	rec := get(t, h, "/games/grid?q=valo&sort=alphabetical", map[string]string{"HX-Request": "true", "Accept-Language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/games?q=valo&sort=alphabetical", rec.Header().Get("HX-Push-Url"))
	require.NotContains(t, rec.Body.String(), "<html")
	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, 1, doc.Find(".game-card").Length())
	require.Equal(t, "Valorant", doc.Find(".game-title").Text())
	require.Equal(t, "1", doc.Find("#countNumber").Text())

	rec = get(t, h, "/games/grid", map[string]string{"HX-Request": "true", "HX-Trigger": "gamesResults"})
	require.Empty(t, rec.Header().Get("HX-Push-Url"))
	require.Equal(t, "/games", rec.Header().Get("HX-Replace-Url"))
}

func TestGameDetailModal(t *testing.T) {
	srv := loadedServer(t)
	h := srv.routes()

	rec := get(t, h, "/games/5", map[string]string{"HX-Request": "true", "Accept-Language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	modal := doc.Find("#gameModal")
	require.Equal(t, 1, modal.Length())
	_, locked := modal.Attr("data-scroll-lock")
	require.True(t, locked)
	require.Equal(t, "League of Legends", doc.Find("#modalTitle").Text())
	require.Equal(t, "/purchase", doc.Find("#modalLink").AttrOr("href", ""))

	rec = get(t, h, "/games/999", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = get(t, h, "/games/abc", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGameModalClose(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/games/modal/close", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	modal := doc.Find("#gameModal")
	require.Equal(t, 1, modal.Length())
	require.True(t, hidden(modal))
	_, locked := modal.Attr("data-scroll-lock")
	require.False(t, locked)
	require.Empty(t, strings.TrimSpace(modal.Text()))
}

func TestGamesDeepLinkOpensModal(t *testing.T) {
	srv := loadedServer(t)
	h := srv.routes()

	doc := parseHTML(t, get(t, h, "/games?game=6", english).Body.String())
	require.Equal(t, "Valorant", doc.Find("#gameModal #modalTitle").Text())

	doc = parseHTML(t, get(t, h, "/games?game=999", english).Body.String())
	require.True(t, hidden(doc.Find("#gameModal")))
}

func TestHomeFeaturedAndNav(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/", english)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())

	require.Equal(t, "en", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "ltr", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, 6, doc.Find("#featuredGames .game-card").Length())
	require.Equal(t, "Home", doc.Find(".nav-link.active").Text())
	require.Contains(t, rec.Body.String(), `"@type":"WebSite"`)
	require.Contains(t, rec.Body.String(), `/games?q={search_term_string}`)
}

func TestPurchasePageArabicDefault(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/purchase", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ar", rec.Header().Get("Content-Language"))
	doc := parseHTML(t, rec.Body.String())

	require.Equal(t, "rtl", doc.Find("html").AttrOr("dir", ""))
	require.Equal(t, 3, doc.Find(".plan-card").Length())
	require.Contains(t, doc.Find(`.plan-card[data-plan="starter"] .plan-price`).Text(), "1,500 دج")
	require.Equal(t, 1, doc.Find(".plan-card.featured").Length())
	require.Greater(t, doc.Find(".faq-item").Length(), 0)
	require.True(t, hidden(doc.Find("#orderModal")))
	require.Contains(t, rec.Body.String(), `"@type":"Offer"`)
}

func TestOrderModal(t *testing.T) {
	srv := loadedServer(t)
	h := srv.routes()

	rec := get(t, h, "/purchase/order?plan=gamer", map[string]string{"HX-Request": "true", "Accept-Language": "en"})
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec.Body.String())
	require.Equal(t, "Gamer", doc.Find("#orderPlanName").Text())
	require.Equal(t, "3,500 DA", doc.Find("#orderPrice").Text())
	require.Equal(t, 3, doc.Find("[data-copy-target]").Length())
	require.True(t, strings.HasPrefix(doc.Find("#orderReference").Text(), "OSW-"))
	doc.Find("[data-copy-target]").Each(func(_ int, s *goquery.Selection) {
		target := s.AttrOr("data-copy-target", "")
		require.Equal(t, 1, doc.Find(target).Length(), target)
	})

	rec = get(t, h, "/purchase/order?plan=platinum", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/purchase/order/close", map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, hidden(parseHTML(t, rec.Body.String()).Find("#orderModal")))
}

func TestLocaleQuerySetsCookie(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/?hl=en", map[string]string{"Accept-Language": "ar"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "en", parseHTML(t, rec.Body.String()).Find("html").AttrOr("lang", ""))

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hl" {
			found = true
			require.Equal(t, "en", c.Value)
		}
	}
	require.True(t, found)
}

func TestAssetsServedWithETag(t *testing.T) {
	srv := loadedServer(t)
	rec := get(t, srv.routes(), "/assets/js/app.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
	require.Contains(t, rec.Body.String(), "data-copy-target")
}

func TestLiveSearchOverWebSocket(t *testing.T) {
	// Hijacked connections outlive the test; zaptest would fail on late writes.
	srv := newTestServerWithLogger(t, zap.NewNop(), staticSource{games: catalog.Sample()}, map[string]string{"OSW_SEARCH_DEBOUNCE": "300ms"})
	srv.store.Load(context.Background())
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/live"
	header := http.Header{"Accept-Language": []string{"en"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	for _, q := range []string{"v", "va", "val", "valo"} {
		msg := `{"q":"` + q + `","category":"","platform":"","sort":"relevance","HEADERS":{"HX-Trigger":"searchInput","HX-Trigger-Name":"q"}}`
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	doc := parseHTML(t, string(raw))
	results := doc.Find("#gamesResults")
	require.Equal(t, "true", results.AttrOr("hx-swap-oob", ""))
	require.Equal(t, []string{"Valorant"}, results.Find(".game-title").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"select","game":5}`)))
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	doc = parseHTML(t, string(raw))
	require.Equal(t, "League of Legends", doc.Find("#gameModal #modalTitle").Text())
	require.Equal(t, "true", doc.Find("#gameModal").AttrOr("hx-swap-oob", ""))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}
