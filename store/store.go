// Package store implements the translation state store: the single source of
// truth for each translatable item's current view.
package store

import (
	"sync"

	"github.com/chatglot/chatglot"
)

// item is the mutable record behind one TranslatableItem snapshot.
type item struct {
	originalText       string // write-once
	state              chatglot.ItemState
	translation        string
	partialTranslation string
	progress           float64
	quality            *chatglot.QualityInfo
	pair               chatglot.LanguagePair
	lastError          string
}

// Store tracks every bound item, keyed by id. State is partitioned per item,
// so items translate concurrently without coordination beyond the single map
// lock. All mutating operations check the item's current state first: a late
// result for an item the user has dismissed is dropped, not applied.
type Store struct {
	mu    sync.Mutex
	items map[string]*item
}

// New creates an empty store.
func New() *Store {
	return &Store{items: make(map[string]*item)}
}

// Bind registers a new item with its write-once original text.
// Returns false if the id is already bound.
func (s *Store) Bind(id, originalText string, pair chatglot.LanguagePair) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return false
	}

	s.items[id] = &item{
		originalText: originalText,
		state:        chatglot.StateUntranslated,
		pair:         pair,
	}
	return true
}

// Begin moves an item to Translating. Calling it twice for an unresolved
// item is a no-op, which prevents duplicate in-flight requests for the same
// id. An Error item may re-enter Translating (retry); a Translated item may
// not (the caller should Toggle instead).
func (s *Store) Begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return false
	}

	switch it.state {
	case chatglot.StateUntranslated, chatglot.StateError:
		it.state = chatglot.StateTranslating
		it.partialTranslation = ""
		it.progress = 0
		it.lastError = ""
		return true
	default:
		return false
	}
}

// ApplyResult moves a Translating item to Translated. Stale results are
// suppressed: if the item is no longer Translating (the user toggled it back,
// or it already resolved) nothing changes and false is returned.
func (s *Store) ApplyResult(id, translation string, quality *chatglot.QualityInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.state != chatglot.StateTranslating {
		return false
	}

	it.state = chatglot.StateTranslated
	it.translation = translation
	it.quality = quality
	it.partialTranslation = ""
	it.progress = 0
	return true
}

// ApplyProgress updates the display-relevant partial translation and
// progress of a Translating item without changing its state.
func (s *Store) ApplyProgress(id string, update chatglot.ProgressiveUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.state != chatglot.StateTranslating {
		return false
	}

	if update.PartialTranslation != "" {
		it.partialTranslation = update.PartialTranslation
	}
	it.progress = update.Progress
	return true
}

// Fail moves a Translating item to Error, clearing any partial output.
func (s *Store) Fail(id string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.state != chatglot.StateTranslating {
		return false
	}

	it.state = chatglot.StateError
	it.partialTranslation = ""
	it.progress = 0
	if err != nil {
		it.lastError = err.Error()
	}
	return true
}

// Toggle restores a Translated item to Untranslated, clearing the
// translation and quality metadata. The original text is untouched, so the
// restore is byte-for-byte exact. In every other state Toggle is a no-op.
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.state != chatglot.StateTranslated {
		return false
	}

	it.state = chatglot.StateUntranslated
	it.translation = ""
	it.quality = nil
	return true
}

// Get returns a snapshot of the item.
func (s *Store) Get(id string) (chatglot.TranslatableItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return chatglot.TranslatableItem{}, false
	}
	return s.snapshot(id, it), true
}

// Items returns snapshots of all bound items.
func (s *Store) Items() []chatglot.TranslatableItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chatglot.TranslatableItem, 0, len(s.items))
	for id, it := range s.items {
		out = append(out, s.snapshot(id, it))
	}
	return out
}

// snapshot copies an item into its exported form (must be called with lock held).
func (s *Store) snapshot(id string, it *item) chatglot.TranslatableItem {
	snap := chatglot.TranslatableItem{
		ID:                 id,
		OriginalText:       it.originalText,
		State:              it.state,
		Translation:        it.translation,
		PartialTranslation: it.partialTranslation,
		Progress:           it.progress,
		Pair:               it.pair,
		LastError:          it.lastError,
	}
	if it.quality != nil {
		q := *it.quality
		snap.Quality = &q
	}
	return snap
}

// Verify Store implements chatglot.StateStore
var _ chatglot.StateStore = (*Store)(nil)
