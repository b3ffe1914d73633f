package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chatglot/chatglot"
	"github.com/chatglot/chatglot/kv"
)

func testConfig(baseURL string, ttl time.Duration) chatglot.Config {
	cfg := chatglot.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.DirectoryTTL = ttl
	return cfg
}

func directoryServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/languages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if requests != nil {
			*requests++
		}

		json.NewEncoder(w).Encode(map[string]any{
			"languages": []map[string]any{
				{"code": "auto", "name": "Detect language", "native_name": "Detect language"},
				{"code": "eng_Latn", "name": "English", "native_name": "English", "script": "Latn"},
				{"code": "spa_Latn", "name": "Spanish", "native_name": "Español", "script": "Latn"},
				{"code": "ast_Latn", "name": "Asturian", "native_name": "Asturianu", "script": "Latn"},
				{"code": "arb_Arab", "name": "Arabic", "native_name": "العربية", "script": "Arab"},
			},
			"popular":       []string{"auto", "eng_Latn", "spa_Latn"},
			"popular_pairs": [][]string{{"auto", "eng_Latn"}, {"eng_Latn", "spa_Latn"}},
			"total_count":   5,
		})
	}))
}

func TestDirectory_Load(t *testing.T) {
	server := directoryServer(t, nil)
	defer server.Close()

	d := New(testConfig(server.URL, time.Hour))
	snap := d.Load(context.Background())

	if snap.FromFallback {
		t.Fatal("expected a remote snapshot")
	}
	if len(snap.Languages) != 5 {
		t.Fatalf("expected 5 languages, got %d", len(snap.Languages))
	}

	spanish, ok := d.Lookup(context.Background(), "spa_Latn")
	if !ok {
		t.Fatal("expected spa_Latn in directory")
	}
	if !spanish.IsPopular {
		t.Error("spa_Latn should be flagged popular from the popular list")
	}

	arabic, _ := d.Lookup(context.Background(), "arb_Arab")
	if !arabic.IsRightToLeft {
		t.Error("arb_Arab should be flagged right-to-left")
	}

	if len(snap.PopularPairs) != 2 || snap.PopularPairs[0].Target != "eng_Latn" {
		t.Errorf("unexpected popular pairs: %+v", snap.PopularPairs)
	}
}

func TestDirectory_CachesWithinTTL(t *testing.T) {
	requests := 0
	server := directoryServer(t, &requests)
	defer server.Close()

	d := New(testConfig(server.URL, time.Hour))
	d.Load(context.Background())
	d.Load(context.Background())
	d.Load(context.Background())

	if requests != 1 {
		t.Errorf("expected a single fetch within the TTL, got %d", requests)
	}
}

func TestDirectory_FallbackWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(nil)
	server.Close() // refuse connections

	d := New(testConfig(server.URL, time.Hour))
	snap := d.Load(context.Background())

	if !snap.FromFallback {
		t.Fatal("expected the built-in fallback set")
	}

	if _, ok := snap.byCode(chatglot.AutoDetect); !ok {
		t.Error("fallback set must contain auto-detect")
	}
	if len(snap.Languages) < 5 {
		t.Errorf("fallback set too small: %d", len(snap.Languages))
	}
}

func TestDirectory_StaleSnapshotBeatsFallback(t *testing.T) {
	requests := 0
	server := directoryServer(t, &requests)

	// TTL zero forces a refetch on every Load.
	d := New(testConfig(server.URL, 0))
	first := d.Load(context.Background())
	if first.FromFallback {
		t.Fatal("expected a remote snapshot")
	}

	server.Close()

	second := d.Load(context.Background())
	if second.FromFallback {
		t.Error("stale remote snapshot should be preferred over the builtins")
	}
	if len(second.Languages) != len(first.Languages) {
		t.Error("expected the cached snapshot to be served")
	}
}

func TestDirectory_Search(t *testing.T) {
	server := directoryServer(t, nil)
	defer server.Close()

	d := New(testConfig(server.URL, time.Hour))
	ctx := context.Background()

	// Popular-first, then alphabetical: Spanish (popular) before Asturian.
	results := d.Search(ctx, "as")
	if len(results) == 0 {
		t.Fatal("expected matches for \"as\"")
	}

	results = d.Search(ctx, "an")
	var codes []string
	for _, lang := range results {
		codes = append(codes, lang.Code)
	}
	// Popular entries first (alphabetical within the group), then the rest:
	// Asturian matches but ranks after the popular ones despite sorting first
	// alphabetically.
	want := []string{"auto", "spa_Latn", "ast_Latn"}
	if len(codes) != len(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, codes)
		}
	}

	// Native name matches, case-insensitive
	if len(d.Search(ctx, "ESPAÑOL")) != 1 {
		t.Error("expected a native-name match")
	}

	// Code matches
	if len(d.Search(ctx, "arb_")) != 1 {
		t.Error("expected a code match")
	}
}

func TestDirectory_SearchEmptyQuery(t *testing.T) {
	server := directoryServer(t, nil)
	defer server.Close()

	d := New(testConfig(server.URL, time.Hour))

	if results := d.Search(context.Background(), "   "); results != nil {
		t.Errorf("empty query should return nil, got %v", results)
	}
}

func TestDirectory_Recents(t *testing.T) {
	cfg := chatglot.DefaultConfig()
	cfg.MaxRecents = 3
	d := New(cfg, WithStore(kv.NewMemoryStore(0)))

	for _, code := range []string{"spa_Latn", "fra_Latn", "deu_Latn", "jpn_Jpan"} {
		d.RecordRecent(code)
	}

	recents := d.Recents()
	if len(recents) != 3 {
		t.Fatalf("expected the list bounded to 3, got %d", len(recents))
	}
	if recents[0] != "jpn_Jpan" {
		t.Errorf("expected newest first, got %v", recents)
	}

	// Re-recording moves to front without duplicating
	d.RecordRecent("fra_Latn")
	recents = d.Recents()
	if recents[0] != "fra_Latn" || len(recents) != 3 {
		t.Errorf("expected move-to-front, got %v", recents)
	}
}

func TestDirectory_RecentsIgnoreAuto(t *testing.T) {
	d := New(chatglot.DefaultConfig(), WithStore(kv.NewMemoryStore(0)))

	d.RecordRecent(chatglot.AutoDetect)
	d.RecordRecent("")

	if recents := d.Recents(); len(recents) != 0 {
		t.Errorf("auto and empty codes should not be recorded, got %v", recents)
	}
}

func TestDirectory_RecentPairs(t *testing.T) {
	d := New(chatglot.DefaultConfig(), WithStore(kv.NewMemoryStore(0)))

	d.RecordRecentPair("auto", "spa_Latn")
	d.RecordRecentPair("eng_Latn", "fra_Latn")

	pairs := d.RecentPairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Source != "eng_Latn" || pairs[0].Target != "fra_Latn" {
		t.Errorf("expected newest pair first, got %+v", pairs[0])
	}
}

func TestDirectory_RecentsPersistAcrossInstances(t *testing.T) {
	store := kv.NewMemoryStore(0)

	d1 := New(chatglot.DefaultConfig(), WithStore(store))
	d1.RecordRecent("spa_Latn")

	d2 := New(chatglot.DefaultConfig(), WithStore(store))
	if recents := d2.Recents(); len(recents) != 1 || recents[0] != "spa_Latn" {
		t.Errorf("recents should persist in the injected store, got %v", recents)
	}
}
