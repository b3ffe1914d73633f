// Command chatglot translates chat transcripts using a remote translation
// service.
//
// It feeds an HTML transcript through the same watcher, state store, and
// protocol client the embedded engine uses, which doubles as an end-to-end
// check of the classification heuristics against real markup.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/chatglot/chatglot"
	"github.com/chatglot/chatglot/client"
	"github.com/chatglot/chatglot/directory"
	"github.com/chatglot/chatglot/kv"
	"github.com/chatglot/chatglot/store"
	"github.com/chatglot/chatglot/watcher"
)

// Build-time variables (can be overridden with ldflags)
var (
	version = chatglot.Version
	commit  = chatglot.GitCommit
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// itemReport is one translated item in the output.
type itemReport struct {
	ID          string  `json:"id"`
	Original    string  `json:"original"`
	Translation string  `json:"translation,omitempty"`
	State       string  `json:"state"`
	Grade       string  `json:"grade,omitempty"`
	Score       float64 `json:"score,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("chatglot", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	target := fs.String("target", "", "Target language code (e.g., spa_Latn)")
	source := fs.String("source", chatglot.AutoDetect, "Source language code")
	baseURL := fs.String("base-url", "", "Translation service URL (default: CHATGLOT_BASE_URL env)")
	apiKey := fs.String("api-key", "", "Service API key (default: CHATGLOT_API_KEY env)")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	redisURL := fs.String("redis", "", "Redis URL for persistent caching and recents (optional)")
	search := fs.String("search", "", "Search the language directory and exit")
	listLangs := fs.Bool("languages", false, "List the language directory and exit")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	dryRun := fs.Bool("dry-run", false, "List what would be translated without calling the service")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// .env is a convenience for local runs; a missing file is fine.
	_ = godotenv.Load()

	if *quiet {
		logrus.SetLevel(logrus.ErrorLevel)
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", chatglot.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		return nil
	}

	cfg := chatglot.DefaultConfig()
	cfg.BaseURL = firstNonEmpty(*baseURL, os.Getenv("CHATGLOT_BASE_URL"))
	cfg.APIKey = firstNonEmpty(*apiKey, os.Getenv("CHATGLOT_API_KEY"))
	cfg.SourceLang = *source
	if *target != "" {
		cfg.TargetLang = *target
	}

	var kvStore kv.Store = kv.NewMemoryStore(cfg.DirectoryTTL)
	if *redisURL != "" {
		redisStore, err := kv.NewRedisStore(kv.RedisConfig{URL: *redisURL, TTL: cfg.DirectoryTTL})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisStore.Close()
		kvStore = redisStore
	}

	dir := directory.New(cfg, directory.WithStore(kvStore))
	ctx := context.Background()

	if *search != "" {
		for _, lang := range dir.Search(ctx, *search) {
			fmt.Fprintf(stdout, "%-12s %s (%s)\n", lang.Code, lang.DisplayName, lang.NativeName)
		}
		return nil
	}

	if *listLangs {
		snap := dir.Load(ctx)
		if snap.FromFallback {
			fmt.Fprintln(stderr, "warning: directory unreachable, showing built-in set")
		}
		for _, lang := range snap.Languages {
			marker := " "
			if lang.IsPopular {
				marker = "*"
			}
			fmt.Fprintf(stdout, "%s %-12s %s\n", marker, lang.Code, lang.DisplayName)
		}
		return nil
	}

	if *target == "" {
		return fmt.Errorf("--target is required")
	}

	transcript, err := readInput(fs.Args())
	if err != nil {
		return err
	}

	watchCfg := watcher.DefaultConfig()
	watchCfg.MinTextLength = cfg.MinTranslatableLength
	w := watcher.New(watchCfg)
	st := store.New()

	protocol := chatglot.NewRetryableClient(client.New(cfg), chatglot.DefaultRetryConfig())
	engine := chatglot.NewEngine(cfg, protocol, st,
		chatglot.WithWatcher(w),
		chatglot.WithTranslationCache(kvStore),
		chatglot.WithRateLimiter(chatglot.NewRateLimiter(chatglot.RateLimitConfig{RequestsPerMinute: 120})),
	)

	bindings := engine.Observe(chatglot.MutationBatch{AddedFragments: []string{transcript}})

	messages := 0
	for _, b := range bindings {
		if b.Kind == chatglot.ControlMessage {
			messages++
		}
	}

	if *dryRun {
		fmt.Fprintf(stdout, "Would translate %d message(s) to %s:\n", messages, cfg.TargetLang)
		for _, b := range bindings {
			if b.Kind == chatglot.ControlMessage {
				fmt.Fprintf(stdout, "  %s: %s\n", b.ID, excerpt(b.Text, 60))
			}
		}
		return nil
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required (use --api-key or CHATGLOT_API_KEY)")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("service URL is required (use --base-url or CHATGLOT_BASE_URL)")
	}

	translated := engine.TranslateAll(ctx)
	if translated > 0 {
		dir.RecordRecent(cfg.TargetLang)
		dir.RecordRecentPair(cfg.SourceLang, cfg.TargetLang)
	}

	if !*quiet {
		fmt.Fprintf(stderr, "translated %d/%d message(s)\n", translated, messages)
	}

	out := stdout
	outPath := firstNonEmpty(*output, *outputShort)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return writeReport(out, st.Items(), *jsonOutput)
}

// readInput reads the transcript from the first positional argument or stdin.
func readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading transcript: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// writeReport renders the final item states as JSON or plain text.
func writeReport(out io.Writer, items []chatglot.TranslatableItem, asJSON bool) error {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	reports := make([]itemReport, 0, len(items))
	for _, item := range items {
		r := itemReport{
			ID:          item.ID,
			Original:    item.OriginalText,
			Translation: item.Translation,
			State:       string(item.State),
			Error:       item.LastError,
		}
		if item.Quality != nil {
			r.Grade = item.Quality.Grade
			r.Score = item.Quality.Score
		}
		reports = append(reports, r)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		switch chatglot.ItemState(r.State) {
		case chatglot.StateTranslated:
			line := fmt.Sprintf("%s: %s => %s", r.ID, r.Original, r.Translation)
			if r.Grade != "" {
				line += fmt.Sprintf(" [%s]", r.Grade)
			}
			fmt.Fprintln(out, line)
		case chatglot.StateError:
			fmt.Fprintf(out, "%s: %s => ERROR: %s\n", r.ID, r.Original, r.Error)
		default:
			fmt.Fprintf(out, "%s: %s (untranslated)\n", r.ID, r.Original)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func excerpt(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
