// Package directory loads, caches, and indexes the language metadata used to
// pick translation directions: remote directory fetch with a TTL, search over
// names and codes, and bounded most-recently-used tracking.
package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chatglot/chatglot"
	"github.com/chatglot/chatglot/kv"
)

// Storage keys for the recents lists.
const (
	recentLangsKey = "recents:langs"
	recentPairsKey = "recents:pairs"
)

// Snapshot is one loaded language directory.
type Snapshot struct {
	Languages    []chatglot.Language
	PopularCodes []string
	PopularPairs []chatglot.LanguagePair
	FetchedAt    time.Time
	FromFallback bool // True when the remote directory was unreachable
}

// byCode returns the language with the given code.
func (s *Snapshot) byCode(code string) (chatglot.Language, bool) {
	for _, lang := range s.Languages {
		if lang.Code == code {
			return lang, true
		}
	}
	return chatglot.Language{}, false
}

// Directory serves language metadata. Load never fails: when the remote
// directory is unreachable it serves the built-in default set so language
// selection stays functional offline.
type Directory struct {
	baseURL    string
	apiKey     string
	ttl        time.Duration
	maxRecents int

	httpClient *http.Client
	store      kv.Store
	log        *logrus.Entry

	mu     sync.Mutex
	cached *Snapshot
}

// Option is a functional option for configuring the Directory.
type Option func(*Directory)

// WithHTTPClient overrides the HTTP client used for directory fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Directory) {
		d.httpClient = hc
	}
}

// WithStore sets the key-value store recents are persisted in. Without one,
// recents live in process memory only.
func WithStore(store kv.Store) Option {
	return func(d *Directory) {
		d.store = store
	}
}

// WithLogger sets the log entry the directory writes through.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Directory) {
		d.log = log
	}
}

// New creates a Directory for the service at cfg.BaseURL.
func New(cfg chatglot.Config, opts ...Option) *Directory {
	d := &Directory{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		ttl:        cfg.DirectoryTTL,
		maxRecents: cfg.MaxRecents,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		store:      kv.NewMemoryStore(0),
		log:        logrus.StandardLogger().WithField("component", "chatglot.directory"),
	}

	if d.maxRecents <= 0 {
		d.maxRecents = 5
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// wire types for GET /languages.
type wireDirectory struct {
	Languages    []wireLanguage `json:"languages"`
	Popular      []string       `json:"popular"`
	PopularPairs [][]string     `json:"popular_pairs"`
	TotalCount   int            `json:"total_count"`
}

type wireLanguage struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Family     string `json:"family"`
	Script     string `json:"script"`
	Popular    bool   `json:"popular"`
	RTL        bool   `json:"rtl"`
}

// Load returns the current directory, fetching from the service when the
// cached snapshot is absent or older than the TTL. It never returns an
// error: any fetch or parse failure falls back to the built-in set (or to a
// stale cached snapshot, which is preferred over the builtins).
func (d *Directory) Load(ctx context.Context) *Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil && !d.cached.FromFallback && time.Since(d.cached.FetchedAt) < d.ttl {
		return d.cached
	}

	snap, err := d.fetch(ctx)
	if err != nil {
		d.log.WithError(err).Warn("language directory fetch failed, using fallback set")
		if d.cached != nil && !d.cached.FromFallback {
			// Stale beats builtin
			return d.cached
		}
		d.cached = fallbackSnapshot()
		return d.cached
	}

	d.cached = snap
	return d.cached
}

// fetch retrieves and validates the remote directory.
func (d *Directory) fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/languages", nil)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "languages", Cause: err}
	}
	req.Header.Set("X-API-Key", d.apiKey)
	req.Header.Set("User-Agent", chatglot.UserAgent())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "languages", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &chatglot.ServerError{Status: resp.StatusCode, Detail: "languages endpoint"}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "languages", Cause: err}
	}

	var wire wireDirectory
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &chatglot.ParseError{Message: "decoding language directory", Input: string(raw), Cause: err}
	}
	if len(wire.Languages) == 0 {
		return nil, &chatglot.ParseError{Message: "language directory is empty"}
	}

	popular := make(map[string]bool, len(wire.Popular))
	for _, code := range wire.Popular {
		popular[code] = true
	}

	snap := &Snapshot{
		PopularCodes: wire.Popular,
		FetchedAt:    time.Now(),
	}

	for _, wl := range wire.Languages {
		if wl.Code == "" {
			continue
		}
		lang := chatglot.Language{
			Code:          wl.Code,
			DisplayName:   wl.Name,
			NativeName:    wl.NativeName,
			Family:        wl.Family,
			Script:        wl.Script,
			IsPopular:     wl.Popular || popular[wl.Code],
			IsRightToLeft: wl.RTL || chatglot.IsRightToLeftCode(wl.Code),
		}
		if lang.Script == "" {
			lang.Script = chatglot.ScriptOf(wl.Code)
		}
		snap.Languages = append(snap.Languages, lang)
	}

	for _, pair := range wire.PopularPairs {
		if len(pair) == 2 {
			snap.PopularPairs = append(snap.PopularPairs, chatglot.LanguagePair{Source: pair[0], Target: pair[1]})
		}
	}

	return snap, nil
}

// Search returns languages whose display name, native name, or code contains
// the query, case-insensitive, ranked popular-first then alphabetically. An
// empty query returns nil; callers show populars and recents instead.
func (d *Directory) Search(ctx context.Context, query string) []chatglot.Language {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	snap := d.Load(ctx)

	var matches []chatglot.Language
	for _, lang := range snap.Languages {
		if strings.Contains(strings.ToLower(lang.DisplayName), query) ||
			strings.Contains(strings.ToLower(lang.NativeName), query) ||
			strings.Contains(strings.ToLower(lang.Code), query) {
			matches = append(matches, lang)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].IsPopular != matches[j].IsPopular {
			return matches[i].IsPopular
		}
		return matches[i].DisplayName < matches[j].DisplayName
	})

	return matches
}

// Lookup returns the language for a code from the current snapshot.
func (d *Directory) Lookup(ctx context.Context, code string) (chatglot.Language, bool) {
	return d.Load(ctx).byCode(code)
}

// RecordRecent pushes a language code onto the bounded most-recently-used
// list.
func (d *Directory) RecordRecent(code string) {
	if code == "" || code == chatglot.AutoDetect {
		return
	}
	d.pushRecent(recentLangsKey, code)
}

// RecordRecentPair pushes a direction onto the bounded most-recently-used
// pair list, keyed "source|target".
func (d *Directory) RecordRecentPair(source, target string) {
	if target == "" {
		return
	}
	d.pushRecent(recentPairsKey, chatglot.LanguagePair{Source: source, Target: target}.Key())
}

// Recents returns the most-recently-used language codes, newest first.
func (d *Directory) Recents() []string {
	return d.loadRecent(recentLangsKey)
}

// RecentPairs returns the most-recently-used directions, newest first.
func (d *Directory) RecentPairs() []chatglot.LanguagePair {
	var pairs []chatglot.LanguagePair
	for _, key := range d.loadRecent(recentPairsKey) {
		parts := strings.SplitN(key, "|", 2)
		if len(parts) == 2 {
			pairs = append(pairs, chatglot.LanguagePair{Source: parts[0], Target: parts[1]})
		}
	}
	return pairs
}

// pushRecent moves value to the front of the stored list, deduplicated and
// truncated to maxRecents.
func (d *Directory) pushRecent(storeKey, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	values := d.loadRecentLocked(storeKey)

	updated := []string{value}
	for _, v := range values {
		if v != value {
			updated = append(updated, v)
		}
	}
	if len(updated) > d.maxRecents {
		updated = updated[:d.maxRecents]
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return
	}
	if err := d.store.Set(storeKey, string(raw)); err != nil {
		d.log.WithError(err).Warn("persisting recents failed")
	}
}

func (d *Directory) loadRecent(storeKey string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadRecentLocked(storeKey)
}

func (d *Directory) loadRecentLocked(storeKey string) []string {
	raw, ok := d.store.Get(storeKey)
	if !ok {
		return nil
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		d.log.WithError(err).Warn("corrupt recents entry, resetting")
		return nil
	}
	return values
}
