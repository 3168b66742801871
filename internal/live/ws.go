package live

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hocine1592/offlinesteamweb/internal/catalog"
	"github.com/hocine1592/offlinesteamweb/internal/library"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// Element ids that identify which control sent an htmx ws-send message.
const (
	triggerSearch   = "searchInput"
	triggerCategory = "categoryFilter"
	triggerPlatform = "platformFilter"
	triggerSort     = "sortFilter"
)

// HandlerOptions configures the WebSocket endpoint.
type HandlerOptions struct {
	Debounce time.Duration
	Logger   *zap.Logger
	// Locale resolves the request language and the matching labels.
	Locale func(r *http.Request) (string, library.Labels)
	// CheckOrigin overrides the upgrader's same-origin check.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades requests and runs one Session per connection.
type Handler struct {
	store    Snapshotter
	renderer library.Renderer
	opts     HandlerOptions
	upgrader websocket.Upgrader
}

// NewHandler builds the live search endpoint.
func NewHandler(store Snapshotter, renderer library.Renderer, opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{
		store:    store,
		renderer: renderer,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lang, labels := "", library.Labels{}
	if h.opts.Locale != nil {
		lang, labels = h.opts.Locale(r)
	}
	query := QueryFromValues(r.URL.Query(), lang)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.opts.Logger.Debug("live upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := &wsSurface{conn: conn, renderer: h.renderer, lang: lang}
	session := NewSession(h.store, surface, Config{
		Query:    query,
		Labels:   labels,
		Debounce: h.opts.Debounce,
		Logger:   h.opts.Logger,
	})

	runErr := make(chan error, 1)
	go func() {
		err := session.Run(ctx)
		// Unblock the read pump when the session stops on its own.
		_ = conn.SetReadDeadline(time.Now())
		runErr <- err
	}()

	h.readPump(ctx, conn, session)
	cancel()
	if err := <-runErr; err != nil {
		h.opts.Logger.Debug("live session ended", zap.Error(err))
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, session *Session) {
	conn.SetReadLimit(maxMessageSize)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.opts.Logger.Debug("live read failed", zap.Error(err))
			}
			return
		}
		ev, ok := DecodeMessage(raw)
		if !ok {
			h.opts.Logger.Debug("live message ignored", zap.ByteString("message", truncate(raw, 256)))
			continue
		}
		if err := session.Post(ctx, ev); err != nil {
			return
		}
	}
}

// clientMessage covers both the htmx ws extension payload, which carries the
// form values plus a HEADERS object, and the plain action messages sent by
// the page script.
type clientMessage struct {
	Action   string `json:"action"`
	Search   string `json:"q"`
	Category string `json:"category"`
	Platform string `json:"platform"`
	Sort     string `json:"sort"`
	Game     any    `json:"game"`
	Headers  struct {
		Trigger     string `json:"HX-Trigger"`
		TriggerName string `json:"HX-Trigger-Name"`
	} `json:"HEADERS"`
}

// DecodeMessage converts one client frame into an Event.
func DecodeMessage(raw []byte) (Event, bool) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Event{}, false
	}
	kind := ParseEventKind(msg.Action)
	if kind == 0 {
		kind = kindForTrigger(msg.Headers.Trigger, msg.Headers.TriggerName)
	}
	switch kind {
	case KindSearch:
		return Event{Kind: kind, Value: msg.Search}, true
	case KindCategory:
		return Event{Kind: kind, Value: msg.Category}, true
	case KindPlatform:
		return Event{Kind: kind, Value: msg.Platform}, true
	case KindSort:
		return Event{Kind: kind, Value: msg.Sort}, true
	case KindSelect:
		id, ok := gameID(msg.Game)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: kind, ID: id}, true
	case KindClose, KindEscape, KindRefresh:
		return Event{Kind: kind}, true
	default:
		return Event{}, false
	}
}

func kindForTrigger(id, name string) Kind {
	switch {
	case id == triggerSearch || name == "q":
		return KindSearch
	case id == triggerCategory || name == "category":
		return KindCategory
	case id == triggerPlatform || name == "platform":
		return KindPlatform
	case id == triggerSort || name == "sort":
		return KindSort
	default:
		return 0
	}
}

func gameID(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(t))
		return id, err == nil
	default:
		return 0, false
	}
}

// QueryFromValues reads the library's filter parameters.
func QueryFromValues(v map[string][]string, lang string) catalog.Query {
	get := func(key string) string {
		if vals := v[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	return catalog.Query{
		Search:   get("q"),
		Category: strings.TrimSpace(get("category")),
		Platform: catalog.ParsePlatform(get("platform")),
		Sort:     catalog.ParseSortMode(get("sort")),
		Lang:     lang,
	}
}

// wsSurface renders fragments as out-of-band swaps. Only the session's Run
// goroutine writes to conn.
type wsSurface struct {
	conn     *websocket.Conn
	renderer library.Renderer
	lang     string
}

func (s *wsSurface) RenderGrid(ctx context.Context, view library.View) error {
	return s.write(library.TemplateGrid, library.GridFragment{Lang: s.lang, View: view, OOB: true})
}

func (s *wsSurface) RenderModal(ctx context.Context, modal library.Modal) error {
	return s.write(library.TemplateModal, library.ModalFragment{Lang: s.lang, Modal: modal, OOB: true})
}

func (s *wsSurface) write(name string, data any) error {
	var buf bytes.Buffer
	if err := s.renderer.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, buf.Bytes())
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
