package store

import (
	"errors"
	"testing"

	"github.com/chatglot/chatglot"
)

var pair = chatglot.LanguagePair{Source: chatglot.AutoDetect, Target: "spa_Latn"}

func boundStore(t *testing.T, id, text string) *Store {
	t.Helper()
	s := New()
	if !s.Bind(id, text, pair) {
		t.Fatalf("Bind(%q) failed", id)
	}
	return s
}

func TestStore_BindIsWriteOnce(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	if s.Bind("1", "different text", pair) {
		t.Error("second Bind for the same id should fail")
	}

	item, _ := s.Get("1")
	if item.OriginalText != "Hello world" {
		t.Errorf("original text mutated: %q", item.OriginalText)
	}
}

func TestStore_BeginIsIdempotent(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	if !s.Begin("1") {
		t.Fatal("first Begin should succeed")
	}
	if s.Begin("1") {
		t.Error("second Begin while Translating should be a no-op")
	}

	item, _ := s.Get("1")
	if item.State != chatglot.StateTranslating {
		t.Errorf("unexpected state: %q", item.State)
	}
}

func TestStore_BeginUnknownID(t *testing.T) {
	s := New()
	if s.Begin("missing") {
		t.Error("Begin on an unbound id should fail")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	original := "  Hello\tworld  "
	s := boundStore(t, "1", original)

	s.Begin("1")
	s.ApplyResult("1", "Hola mundo", &chatglot.QualityInfo{Score: 0.95, Grade: "A"})

	item, _ := s.Get("1")
	if item.State != chatglot.StateTranslated {
		t.Fatalf("unexpected state: %q", item.State)
	}
	if item.Translation != "Hola mundo" {
		t.Errorf("unexpected translation: %q", item.Translation)
	}

	if !s.Toggle("1") {
		t.Fatal("Toggle on a translated item should succeed")
	}

	item, _ = s.Get("1")
	if item.State != chatglot.StateUntranslated {
		t.Errorf("unexpected state after toggle: %q", item.State)
	}
	if item.Translation != "" || item.Quality != nil {
		t.Error("toggle should clear translation and quality")
	}
	if item.OriginalText != original {
		t.Errorf("original not restored byte-for-byte: %q != %q", item.OriginalText, original)
	}
}

func TestStore_ToggleIsNoOpOtherwise(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	if s.Toggle("1") {
		t.Error("Toggle on an untranslated item should be a no-op")
	}

	s.Begin("1")
	if s.Toggle("1") {
		t.Error("Toggle while Translating should be a no-op")
	}
}

func TestStore_StaleResultSuppressed(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	s.Begin("1")
	if !s.ApplyResult("1", "Hola mundo", nil) {
		t.Fatal("first result should apply")
	}

	// The user dismisses the translation; a late duplicate result for the
	// same flight must not resurrect it.
	s.Toggle("1")
	if s.ApplyResult("1", "Hola mundo", nil) {
		t.Error("late result should be suppressed after toggle")
	}

	item, _ := s.Get("1")
	if item.State != chatglot.StateUntranslated {
		t.Errorf("unexpected state: %q", item.State)
	}
}

func TestStore_ApplyProgress(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	if s.ApplyProgress("1", chatglot.ProgressiveUpdate{Progress: 0.5}) {
		t.Error("progress before Begin should be suppressed")
	}

	s.Begin("1")
	if !s.ApplyProgress("1", chatglot.ProgressiveUpdate{Stage: "semantic", Progress: 0.2, PartialTranslation: "Hola"}) {
		t.Fatal("progress while Translating should apply")
	}

	item, _ := s.Get("1")
	if item.State != chatglot.StateTranslating {
		t.Errorf("progress must not change state, got %q", item.State)
	}
	if item.PartialTranslation != "Hola" || item.Progress != 0.2 {
		t.Errorf("unexpected partial state: %q at %v", item.PartialTranslation, item.Progress)
	}
}

func TestStore_FailClearsPartialAndAllowsRetry(t *testing.T) {
	s := boundStore(t, "1", "Hello world")

	s.Begin("1")
	s.ApplyProgress("1", chatglot.ProgressiveUpdate{Progress: 0.7, PartialTranslation: "Hola"})
	s.Fail("1", errors.New("connection reset"))

	item, _ := s.Get("1")
	if item.State != chatglot.StateError {
		t.Fatalf("unexpected state: %q", item.State)
	}
	if item.PartialTranslation != "" || item.Progress != 0 {
		t.Error("failure should clear partial output")
	}
	if item.LastError == "" {
		t.Error("failure should record the error")
	}

	// Error is re-enterable, not a dead end.
	if !s.Begin("1") {
		t.Error("Begin from Error should succeed (retry)")
	}
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := boundStore(t, "1", "Hello world")
	s.Begin("1")
	s.ApplyResult("1", "Hola mundo", &chatglot.QualityInfo{Score: 0.9, Grade: "A"})

	item, _ := s.Get("1")
	item.Quality.Grade = "F"

	again, _ := s.Get("1")
	if again.Quality.Grade != "A" {
		t.Error("mutating a snapshot must not affect the store")
	}
}

func TestStore_Items(t *testing.T) {
	s := New()
	s.Bind("1", "one", pair)
	s.Bind("2", "two", pair)

	if len(s.Items()) != 2 {
		t.Errorf("expected 2 items, got %d", len(s.Items()))
	}
}
