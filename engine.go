package chatglot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/chatglot/chatglot/kv"
)

// Engine wires the watcher, protocol client, and state store together: it
// binds newly discovered items, turns user actions into translation
// requests, applies results and progress to the store, and re-renders
// through the host's Renderer. Items are independent; any number may be in
// flight concurrently.
type Engine struct {
	cfg      Config
	client   ProtocolClient
	store    StateStore
	watcher  Watcher
	renderer Renderer
	fallback StandardTranslator
	limiter  *RateLimiter
	cache    kv.Store
	log      *logrus.Entry

	mu   sync.Mutex
	pair LanguagePair
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithWatcher sets the watcher Observe feeds batches through.
func WithWatcher(w Watcher) EngineOption {
	return func(e *Engine) {
		e.watcher = w
	}
}

// WithRenderer sets the host display surface.
func WithRenderer(r Renderer) EngineOption {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithFallback sets a secondary standard-mode translator used when the
// primary service is unreachable.
func WithFallback(t StandardTranslator) EngineOption {
	return func(e *Engine) {
		e.fallback = t
	}
}

// WithRateLimiter makes the engine wait for a token before each network
// call.
func WithRateLimiter(l *RateLimiter) EngineOption {
	return func(e *Engine) {
		e.limiter = l
	}
}

// WithTranslationCache sets the store completed translations are cached in,
// keyed by text hash and direction.
func WithTranslationCache(store kv.Store) EngineOption {
	return func(e *Engine) {
		e.cache = store
	}
}

// WithLogger sets the log entry the engine writes through.
func WithLogger(log *logrus.Entry) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates an Engine with the given configuration, protocol client,
// and state store.
func NewEngine(cfg Config, client ProtocolClient, store StateStore, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    logrus.StandardLogger().WithField("component", "chatglot.engine"),
		pair:   cfg.Pair(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Pair returns the active translation direction.
func (e *Engine) Pair() LanguagePair {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pair
}

// SetPair changes the active translation direction. Already-translated items
// keep the direction they were translated with until retranslated.
func (e *Engine) SetPair(pair LanguagePair) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pair = pair
}

// Observe feeds one batch of host tree changes through the watcher, binds
// each fresh message item, and attaches its control. Item failures never
// propagate out of batch processing.
func (e *Engine) Observe(batch MutationBatch) []Binding {
	if e.watcher == nil {
		return nil
	}

	bindings := e.watcher.Process(batch)
	pair := e.Pair()

	for _, b := range bindings {
		if b.Kind == ControlMessage {
			if !e.store.Bind(b.ID, b.Text, pair) {
				// Watcher and store disagree about an id; the store wins.
				e.log.WithField("id", b.ID).Warn("duplicate binding dropped")
				continue
			}
		}
		if e.renderer != nil {
			e.renderer.AttachControl(b)
		}
	}

	return bindings
}

// HandleClick drives an item's visible state machine:
//
//	Untranslated --click--> Translating --success--> Translated --click--> Untranslated
//	Translating  --failure--> Error --click--> Translating (retry)
func (e *Engine) HandleClick(ctx context.Context, id string) {
	item, ok := e.store.Get(id)
	if !ok {
		return
	}

	switch item.State {
	case StateUntranslated, StateError:
		if err := e.Translate(ctx, id); err != nil {
			e.log.WithField("id", id).WithError(err).Error("translation failed")
		}
	case StateTranslated:
		e.Toggle(id)
	case StateTranslating:
		// Request already in flight; ignore
	}
}

// Translate translates one bound item. Begin's idempotence guards against a
// second in-flight request for the same id; a late result for an item the
// user toggled back is suppressed by the store.
func (e *Engine) Translate(ctx context.Context, id string) error {
	item, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("unknown item %q", id)
	}

	if !e.store.Begin(id) {
		return nil
	}
	e.render(id)

	onUpdate := func(u ProgressiveUpdate) {
		if e.store.ApplyProgress(id, u) {
			e.render(id)
		}
	}

	result, err := e.translateText(ctx, item.OriginalText, e.Pair(), onUpdate)
	if err != nil {
		e.store.Fail(id, err)
		e.render(id)
		return err
	}

	e.store.ApplyResult(id, result.TranslatedText, result.Quality)
	e.render(id)
	return nil
}

// Toggle restores a translated item to its original view.
func (e *Engine) Toggle(id string) {
	if e.store.Toggle(id) {
		e.render(id)
	}
}

// TranslateAll translates every bound item that is currently untranslated or
// errored, with bounded concurrency. Failures land in the store per item;
// the return value is the number of items translated successfully.
func (e *Engine) TranslateAll(ctx context.Context) int {
	limit := e.cfg.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	var mu sync.Mutex
	translated := 0

	for _, item := range e.store.Items() {
		if item.State != StateUntranslated && item.State != StateError {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := e.Translate(ctx, id); err == nil {
				mu.Lock()
				translated++
				mu.Unlock()
			}
		}(item.ID)
	}

	wg.Wait()
	return translated
}

// TranslateInput translates draft text from an editable input region before
// sending. Always standard mode: drafts are short and there is no item state
// machine behind them.
func (e *Engine) TranslateInput(ctx context.Context, text string) (string, error) {
	pair := e.Pair()
	req := Request{Text: text, SourceLang: pair.Source, TargetLang: pair.Target, Mode: ModeStandard}

	result, err := e.callStandard(ctx, req)
	if err != nil {
		return "", err
	}
	return result.TranslatedText, nil
}

// cachedResult is the stored form of a completed translation.
type cachedResult struct {
	Translation string       `json:"translation"`
	Quality     *QualityInfo `json:"quality,omitempty"`
}

// translateText resolves one text through the cache or the protocol client,
// choosing the mode from the configured thresholds.
func (e *Engine) translateText(ctx context.Context, text string, pair LanguagePair, onUpdate UpdateFunc) (*Result, error) {
	mode := e.cfg.ModeFor(text)
	cacheKey := CacheKey(HashText(text), pair.Source, pair.Target, mode)

	if e.cache != nil {
		if raw, ok := e.cache.Get(cacheKey); ok {
			var cached cachedResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				result := &Result{TranslatedText: cached.Translation, Quality: cached.Quality}
				if result.Quality != nil {
					result.Quality.CacheHit = true
				}
				return result, nil
			}
			e.log.WithField("key", cacheKey).Warn("corrupt cache entry ignored")
		}
	}

	req := Request{Text: text, SourceLang: pair.Source, TargetLang: pair.Target, Mode: mode}

	var result *Result
	var err error

	switch mode {
	case ModeProgressive:
		result, err = e.callProgressive(ctx, req, onUpdate)
	case ModeAdaptive:
		result, err = e.callAdaptive(ctx, req)
	default:
		result, err = e.callStandard(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		raw, merr := json.Marshal(cachedResult{Translation: result.TranslatedText, Quality: result.Quality})
		if merr == nil {
			_ = e.cache.Set(cacheKey, string(raw)) // Cache set failures are not the user's problem
		}
	}

	return result, nil
}

// callStandard performs a standard translation, degrading to the fallback
// translator when the primary service is unreachable.
func (e *Engine) callStandard(ctx context.Context, req Request) (*Result, error) {
	if err := e.waitLimiter(ctx); err != nil {
		return nil, err
	}

	result, err := e.client.Translate(ctx, req)
	if err == nil {
		return result, nil
	}

	var netErr *NetworkError
	if e.fallback != nil && errors.As(err, &netErr) {
		e.log.WithError(err).Warn("primary service unreachable, using fallback translator")
		return e.fallback.Translate(ctx, req)
	}

	return nil, err
}

// callAdaptive performs an adaptive translation, falling back to standard
// mode on failure. The fallback belongs here, not in the client: each
// protocol mode stays independently testable.
func (e *Engine) callAdaptive(ctx context.Context, req Request) (*Result, error) {
	if err := e.waitLimiter(ctx); err != nil {
		return nil, err
	}

	result, err := e.client.TranslateAdaptive(ctx, req)
	if err == nil {
		return result, nil
	}

	e.log.WithError(err).Warn("adaptive translation failed, falling back to standard")
	req.Mode = ModeStandard
	return e.callStandard(ctx, req)
}

// callProgressive performs a streaming translation, falling back to standard
// mode when the stream cannot be established or ends without a result.
func (e *Engine) callProgressive(ctx context.Context, req Request, onUpdate UpdateFunc) (*Result, error) {
	if err := e.waitLimiter(ctx); err != nil {
		return nil, err
	}

	result, err := e.client.TranslateProgressive(ctx, req, onUpdate)
	if err == nil {
		return result, nil
	}

	e.log.WithError(err).Warn("progressive translation failed, falling back to standard")
	req.Mode = ModeStandard
	return e.callStandard(ctx, req)
}

func (e *Engine) waitLimiter(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return &NetworkError{Op: "rate limit wait", Cause: err}
	}
	return nil
}

// Item returns a snapshot of one bound item.
func (e *Engine) Item(id string) (TranslatableItem, bool) {
	return e.store.Get(id)
}

// render re-renders one item through the host renderer, if any.
func (e *Engine) render(id string) {
	if e.renderer == nil {
		return
	}
	if item, ok := e.store.Get(id); ok {
		e.renderer.Render(item)
	}
}
