package chatglot

import "time"

// Config is the engine configuration. It is an immutable value: construct it
// once (usually from DefaultConfig) and pass it into each component's
// constructor. Components never share a mutable configuration object.
type Config struct {
	// BaseURL is the translation service root (no trailing slash).
	BaseURL string

	// APIKey authenticates every request. Empty means requests fail eagerly
	// with a ConfigurationError.
	APIKey string

	// SourceLang is the default source language (AutoDetect by default).
	SourceLang string

	// TargetLang is the default target language.
	TargetLang string

	// AdaptiveEnabled allows quality-optimized translation for longer texts.
	AdaptiveEnabled bool

	// ProgressiveEnabled allows streaming translation for the longest texts.
	// Only meaningful when AdaptiveEnabled is set.
	ProgressiveEnabled bool

	// AdaptiveThreshold is the text length above which adaptive mode is used.
	AdaptiveThreshold int

	// ProgressiveThreshold is the text length above which progressive mode is
	// used.
	ProgressiveThreshold int

	// MinTranslatableLength is the minimum text length for the watcher to
	// bind an item at all.
	MinTranslatableLength int

	// DirectoryTTL bounds how long a loaded language directory is served
	// from memory before it is refetched.
	DirectoryTTL time.Duration

	// MaxRecents bounds the most-recently-used language and pair lists.
	MaxRecents int

	// RequestTimeout applies to standard and adaptive requests. Progressive
	// streams are not bounded by it.
	RequestTimeout time.Duration

	// UserPreference is forwarded to the adaptive endpoints
	// ("speed", "balanced" or "quality").
	UserPreference string

	// ForceOptimization asks the service to optimize even short texts.
	ForceOptimization bool

	// MaxOptimizationTime caps server-side optimization, in seconds.
	MaxOptimizationTime float64

	// MaxConcurrent bounds concurrently in-flight items for TranslateAll.
	MaxConcurrent int
}

// DefaultConfig returns the engine defaults. BaseURL and APIKey must still
// be filled in by the caller.
func DefaultConfig() Config {
	return Config{
		SourceLang:            AutoDetect,
		TargetLang:            "eng_Latn",
		AdaptiveEnabled:       true,
		ProgressiveEnabled:    true,
		AdaptiveThreshold:     500,
		ProgressiveThreshold:  1000,
		MinTranslatableLength: 2,
		DirectoryTTL:          time.Hour,
		MaxRecents:            5,
		RequestTimeout:        30 * time.Second,
		UserPreference:        "balanced",
		MaxOptimizationTime:   5.0,
		MaxConcurrent:         3,
	}
}

// Pair returns the configured default language pair.
func (c Config) Pair() LanguagePair {
	return LanguagePair{Source: c.SourceLang, Target: c.TargetLang}
}

// ModeFor selects the protocol mode for a text using the configured
// thresholds. See SelectMode.
func (c Config) ModeFor(text string) Mode {
	return SelectMode(c.AdaptiveEnabled, c.ProgressiveEnabled, len([]rune(text)),
		c.AdaptiveThreshold, c.ProgressiveThreshold)
}
