// Package watcher keeps the set of translatable items synchronized with the
// host application's message tree. Host adapters forward batches of added
// subtrees; the watcher classifies message-like elements and editable input
// regions, derives a stable id for each, and guarantees an element is bound
// at most once across batches. The guarantee rests on the host writing each
// binding's Attributes back onto the element; without that, an element with
// no native id is unrecognizable when it reappears.
package watcher

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/chatglot/chatglot"
)

// Attributes the host persists onto bound elements. They are handed back on
// Binding.Attributes because the watcher only sees fragment snapshots and
// cannot mutate the live element itself.
const (
	// markerAttr is the persistent "already processed" marker. Re-binding is
	// detected through it and the bound set, never by comparing content:
	// content legitimately changes after translation.
	markerAttr = "data-chatglot-bound"

	// syntheticIDAttr carries a generated id for elements without a native
	// message id attribute, so they stay recognizable across batches.
	syntheticIDAttr = "data-chatglot-id"
)

// Config holds the CSS-shape heuristics for classification.
type Config struct {
	// MessageSelector matches candidate message containers.
	MessageSelector string

	// TextSelector matches the text region inside a message container.
	// Containers without one are skipped, not an error.
	TextSelector string

	// SkipSelector matches containers that look like messages but must not
	// be bound: system notices and the user's own echoed messages.
	SkipSelector string

	// InputSelector matches editable input regions for pre-send translation.
	InputSelector string

	// ExcludedInputAncestors lists ancestor selectors that disqualify an
	// input region (search boxes, username and phone fields).
	ExcludedInputAncestors []string

	// IDAttributes are tried in order to derive a stable id from the
	// element itself. When none is present an id is synthesized.
	IDAttributes []string

	// MinTextLength is the minimum text length (in runes) worth binding.
	MinTextLength int
}

// DefaultConfig returns the heuristics for a typical chat message tree.
func DefaultConfig() Config {
	return Config{
		MessageSelector: "[data-message-id], .message",
		TextSelector:    ".text-content, .message-text, .text",
		SkipSelector:    ".service-message, .system-message, .own, .out",
		InputSelector:   `[contenteditable="true"], textarea`,
		ExcludedInputAncestors: []string{
			".search", ".search-container", ".username-field", ".phone-field",
		},
		IDAttributes:  []string{"data-message-id", "data-mid", syntheticIDAttr},
		MinTextLength: 2,
	}
}

// Watcher classifies mutation batches into bindings. It implements
// chatglot.Watcher.
type Watcher struct {
	cfg Config
	log *logrus.Entry

	mu    sync.Mutex
	bound map[string]struct{}
}

// Option is a functional option for configuring the Watcher.
type Option func(*Watcher)

// WithLogger sets the log entry the watcher writes through.
func WithLogger(log *logrus.Entry) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

// New creates a Watcher with the given heuristics.
func New(cfg Config, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:   cfg,
		log:   logrus.StandardLogger().WithField("component", "chatglot.watcher"),
		bound: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Process classifies one batch of added subtrees. A fragment that fails to
// parse, or an element missing expected sub-elements, is skipped: a single
// bad element must never stop processing of the rest of the batch.
func (w *Watcher) Process(batch chatglot.MutationBatch) []chatglot.Binding {
	var bindings []chatglot.Binding

	for _, fragment := range batch.AddedFragments {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err != nil {
			w.log.WithError(err).Warn("unparseable mutation fragment, skipping")
			continue
		}

		doc.Find(w.cfg.MessageSelector).Each(func(_ int, sel *goquery.Selection) {
			if b, ok := w.classifyMessage(sel); ok {
				bindings = append(bindings, b)
			}
		})

		doc.Find(w.cfg.InputSelector).Each(func(_ int, sel *goquery.Selection) {
			if b, ok := w.classifyInput(sel); ok {
				bindings = append(bindings, b)
			}
		})
	}

	return bindings
}

// classifyMessage decides whether one candidate container becomes a message
// binding.
func (w *Watcher) classifyMessage(sel *goquery.Selection) (chatglot.Binding, bool) {
	if w.cfg.SkipSelector != "" && sel.Is(w.cfg.SkipSelector) {
		return chatglot.Binding{}, false
	}
	if _, marked := sel.Attr(markerAttr); marked {
		return chatglot.Binding{}, false
	}

	textRegion := sel.Find(w.cfg.TextSelector).First()
	if textRegion.Length() == 0 {
		// Message-shaped but without a recognizable text region
		return chatglot.Binding{}, false
	}

	text := regionText(textRegion)
	if utf8.RuneCountInString(text) < w.cfg.MinTextLength {
		return chatglot.Binding{}, false
	}

	id, synthesized := w.deriveID(sel)
	if !w.claim(id) {
		return chatglot.Binding{}, false
	}

	return chatglot.Binding{
		ID:         id,
		Text:       text,
		Kind:       chatglot.ControlMessage,
		Attributes: bindingAttributes(id, synthesized),
	}, true
}

// classifyInput decides whether one editable region becomes an input
// binding.
func (w *Watcher) classifyInput(sel *goquery.Selection) (chatglot.Binding, bool) {
	for _, ancestor := range w.cfg.ExcludedInputAncestors {
		if sel.Closest(ancestor).Length() > 0 {
			return chatglot.Binding{}, false
		}
	}
	if _, marked := sel.Attr(markerAttr); marked {
		return chatglot.Binding{}, false
	}

	id := ""
	synthesized := false
	if v, ok := sel.Attr(syntheticIDAttr); ok && v != "" {
		id = v
	}
	if id == "" {
		for _, attr := range []string{"id", "name"} {
			if v, ok := sel.Attr(attr); ok && v != "" {
				id = "input:" + v
				break
			}
		}
	}
	if id == "" {
		id = "input:" + uuid.NewString()
		synthesized = true
	}

	if !w.claim(id) {
		return chatglot.Binding{}, false
	}

	return chatglot.Binding{
		ID:         id,
		Text:       regionText(sel),
		Kind:       chatglot.ControlInput,
		Attributes: bindingAttributes(id, synthesized),
	}, true
}

// regionText collects the text nodes under a region, skipping script and
// style subtrees and collapsing whitespace runs, so layout markup inside a
// message never leaks into the translatable text.
func regionText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return strings.Join(parts, " ")
}

// deriveID prefers a native id attribute; otherwise it synthesizes one. The
// second return reports synthesis, so the id can be carried back to the host
// in the binding's attributes.
func (w *Watcher) deriveID(sel *goquery.Selection) (string, bool) {
	for _, attr := range w.cfg.IDAttributes {
		if v, ok := sel.Attr(attr); ok && v != "" {
			return v, false
		}
	}
	return uuid.NewString(), true
}

// bindingAttributes builds the attribute set the host must persist on the
// bound element: always the processed marker, plus the synthesized id when
// the element had no native one.
func bindingAttributes(id string, synthesized bool) map[string]string {
	attrs := map[string]string{markerAttr: "1"}
	if synthesized {
		attrs[syntheticIDAttr] = id
	}
	return attrs
}

// claim records an id as bound. Returns false if it was already bound, which
// makes processing the same element a second time an explicit no-op.
func (w *Watcher) claim(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.bound[id]; exists {
		return false
	}
	w.bound[id] = struct{}{}
	return true
}

// Bound reports whether an id has been bound by this watcher.
func (w *Watcher) Bound(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.bound[id]
	return ok
}

// Verify Watcher implements chatglot.Watcher
var _ chatglot.Watcher = (*Watcher)(nil)
