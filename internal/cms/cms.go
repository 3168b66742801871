// Package cms loads the localized purchase page content: plans, payment
// accounts, features, FAQ and contact channels.
package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a document or plan does not exist.
var ErrNotFound = errors.New("cms: not found")

const defaultCacheTTL = 5 * time.Minute

// Purchase is the content of the purchase page for one language.
type Purchase struct {
	Lang     string
	Title    string
	Summary  string
	Currency string
	Plans    []Plan
	Accounts []Account
	Features []Feature
	FAQ      []FAQItem
	Contacts []Contact
}

// Plan is an offer shown as a pricing card. Price is in whole units of the
// page currency.
type Plan struct {
	ID       string
	Name     string
	Price    int
	Period   string
	Perks    []string
	Featured bool
	Note     template.HTML
}

// Account is a payment destination the buyer copies into their banking app.
type Account struct {
	ID     string
	Label  string
	Holder string
	Value  string
	Icon   string
}

// Feature is one selling point.
type Feature struct {
	Icon  string
	Title string
	Text  string
}

// FAQItem is a question with a Markdown answer rendered to safe HTML.
type FAQItem struct {
	Question string
	Answer   template.HTML
}

// Contact is a support channel.
type Contact struct {
	Kind  string
	Label string
	Value string
	URL   string
	Icon  string
}

type purchaseDoc struct {
	Title    string `yaml:"title"`
	Summary  string `yaml:"summary"`
	Currency string `yaml:"currency"`
	Plans    []struct {
		ID       string   `yaml:"id"`
		Name     string   `yaml:"name"`
		Price    int      `yaml:"price"`
		Period   string   `yaml:"period"`
		Perks    []string `yaml:"perks"`
		Featured bool     `yaml:"featured"`
		Note     string   `yaml:"note"`
	} `yaml:"plans"`
	Accounts []struct {
		ID     string `yaml:"id"`
		Label  string `yaml:"label"`
		Holder string `yaml:"holder"`
		Value  string `yaml:"value"`
		Icon   string `yaml:"icon"`
	} `yaml:"accounts"`
	Features []struct {
		Icon  string `yaml:"icon"`
		Title string `yaml:"title"`
		Text  string `yaml:"text"`
	} `yaml:"features"`
	FAQ []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"faq"`
	Contacts []struct {
		Kind  string `yaml:"kind"`
		Label string `yaml:"label"`
		Value string `yaml:"value"`
		URL   string `yaml:"url"`
		Icon  string `yaml:"icon"`
	} `yaml:"contacts"`
}

// Client reads content documents from an fs.FS and caches the parsed result.
type Client struct {
	fsys     fs.FS
	fallback []string
	ttl      time.Duration
	now      func() time.Time
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	purchase Purchase
	expires  time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithCacheTTL overrides how long parsed documents are kept.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithFallbackLangs sets the languages tried, in order, when the requested
// language has no document.
func WithFallbackLangs(langs ...string) Option {
	return func(c *Client) {
		c.fallback = nil
		for _, l := range langs {
			if l = normalizeLang(l); l != "" {
				c.fallback = append(c.fallback, l)
			}
		}
	}
}

// NewClient reads documents named "<name>.<lang>.yaml" from fsys.
func NewClient(fsys fs.FS, opts ...Option) *Client {
	c := &Client{
		fsys:     fsys,
		fallback: []string{"ar", "en"},
		ttl:      defaultCacheTTL,
		now:      time.Now,
		md:       goldmark.New(),
		policy:   newContentPolicy(),
		cache:    map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newContentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// Purchase returns the purchase page content for lang.
func (c *Client) Purchase(ctx context.Context, lang string) (Purchase, error) {
	lang = normalizeLang(lang)
	key := "purchase|" + lang
	if p, ok := c.cached(key); ok {
		return p, nil
	}
	if err := ctx.Err(); err != nil {
		return Purchase{}, err
	}
	p, err := c.loadPurchase(lang)
	if err != nil {
		return Purchase{}, err
	}
	c.store(key, p)
	return clonePurchase(p), nil
}

func (c *Client) loadPurchase(lang string) (Purchase, error) {
	for _, candidate := range c.priority(lang) {
		data, err := fs.ReadFile(c.fsys, "purchase."+candidate+".yaml")
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Purchase{}, err
		}
		var doc purchaseDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Purchase{}, fmt.Errorf("cms: parse purchase.%s.yaml: %w", candidate, err)
		}
		return c.buildPurchase(candidate, doc)
	}
	return Purchase{}, ErrNotFound
}

func (c *Client) buildPurchase(lang string, doc purchaseDoc) (Purchase, error) {
	p := Purchase{
		Lang:     lang,
		Title:    strings.TrimSpace(doc.Title),
		Summary:  strings.TrimSpace(doc.Summary),
		Currency: firstNonEmpty(strings.TrimSpace(doc.Currency), "DZD"),
	}
	for _, raw := range doc.Plans {
		id := strings.TrimSpace(strings.ToLower(raw.ID))
		if id == "" {
			continue
		}
		note, err := c.markdown(raw.Note)
		if err != nil {
			return Purchase{}, fmt.Errorf("cms: plan %s note: %w", id, err)
		}
		p.Plans = append(p.Plans, Plan{
			ID:       id,
			Name:     firstNonEmpty(strings.TrimSpace(raw.Name), id),
			Price:    raw.Price,
			Period:   strings.TrimSpace(raw.Period),
			Perks:    trimAll(raw.Perks),
			Featured: raw.Featured,
			Note:     note,
		})
	}
	for _, raw := range doc.Accounts {
		if strings.TrimSpace(raw.Value) == "" {
			continue
		}
		p.Accounts = append(p.Accounts, Account{
			ID:     firstNonEmpty(strings.TrimSpace(raw.ID), strings.ToLower(strings.TrimSpace(raw.Label))),
			Label:  strings.TrimSpace(raw.Label),
			Holder: strings.TrimSpace(raw.Holder),
			Value:  strings.TrimSpace(raw.Value),
			Icon:   strings.TrimSpace(raw.Icon),
		})
	}
	for _, raw := range doc.Features {
		p.Features = append(p.Features, Feature{
			Icon:  strings.TrimSpace(raw.Icon),
			Title: strings.TrimSpace(raw.Title),
			Text:  strings.TrimSpace(raw.Text),
		})
	}
	for _, raw := range doc.FAQ {
		answer, err := c.markdown(raw.Answer)
		if err != nil {
			return Purchase{}, fmt.Errorf("cms: faq answer: %w", err)
		}
		p.FAQ = append(p.FAQ, FAQItem{Question: strings.TrimSpace(raw.Question), Answer: answer})
	}
	for _, raw := range doc.Contacts {
		p.Contacts = append(p.Contacts, Contact{
			Kind:  strings.TrimSpace(raw.Kind),
			Label: strings.TrimSpace(raw.Label),
			Value: strings.TrimSpace(raw.Value),
			URL:   strings.TrimSpace(raw.URL),
			Icon:  strings.TrimSpace(raw.Icon),
		})
	}
	return p, nil
}

// markdown renders src and sanitizes the result.
func (c *Client) markdown(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimSpace(c.policy.Sanitize(buf.String()))), nil
}

func (c *Client) priority(lang string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, l := range append([]string{lang}, c.fallback...) {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func (c *Client) cached(key string) (Purchase, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return Purchase{}, false
	}
	return clonePurchase(entry.purchase), true
}

func (c *Client) store(key string, p Purchase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{purchase: clonePurchase(p), expires: c.now().Add(c.ttl)}
}

func clonePurchase(src Purchase) Purchase {
	cp := src
	cp.Plans = make([]Plan, len(src.Plans))
	for i, p := range src.Plans {
		p.Perks = append([]string(nil), p.Perks...)
		cp.Plans[i] = p
	}
	cp.Accounts = append([]Account(nil), src.Accounts...)
	cp.Features = append([]Feature(nil), src.Features...)
	cp.FAQ = append([]FAQItem(nil), src.FAQ...)
	cp.Contacts = append([]Contact(nil), src.Contacts...)
	return cp
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
