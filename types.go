// Package chatglot provides an inline machine translation engine for chat applications.
package chatglot

import "context"

// AutoDetect is the sentinel source language code meaning "let the service
// detect the source language".
const AutoDetect = "auto"

// Mode selects the translation protocol variant for a request.
type Mode string

const (
	// ModeStandard is a plain single request/response translation.
	ModeStandard Mode = "standard"
	// ModeAdaptive is a single request/response translation with server-side
	// optimization and quality scoring.
	ModeAdaptive Mode = "adaptive"
	// ModeProgressive is a streaming translation that reports intermediate
	// stages before the final result.
	ModeProgressive Mode = "progressive"
)

// ItemState is the lifecycle state of a bound translatable item.
type ItemState string

const (
	// StateUntranslated means the item shows its original text.
	StateUntranslated ItemState = "untranslated"
	// StateTranslating means a request for the item is in flight.
	StateTranslating ItemState = "translating"
	// StateTranslated means the item shows its translated text.
	StateTranslated ItemState = "translated"
	// StateError means the last translation attempt failed. The state is
	// re-enterable: a click retries the translation.
	StateError ItemState = "error"
)

// Language describes one entry of the language directory. Immutable once
// loaded; keyed by Code.
type Language struct {
	Code          string // Service language code (e.g. "eng_Latn", "spa_Latn")
	DisplayName   string // English display name
	NativeName    string // Endonym
	Family        string // Language family (e.g. "Indo-European")
	Script        string // Writing system code (e.g. "Latn", "Arab")
	IsPopular     bool   // Listed in the service's popular set
	IsRightToLeft bool   // Text direction hint for rendering
}

// LanguagePair is the active translation direction. Source may be the
// AutoDetect sentinel.
type LanguagePair struct {
	Source string
	Target string
}

// Key returns the pair's recency-tracking key ("source|target").
func (p LanguagePair) Key() string {
	return p.Source + "|" + p.Target
}

// QualityInfo carries the quality metadata an adaptive or progressive
// translation reports alongside its result.
type QualityInfo struct {
	Score               float64 // Numeric quality score in [0,1]
	Grade               string  // Letter grade A-F, see GradeForScore
	OptimizationApplied bool
	CacheHit            bool
	ProcessingTimeMs    float64
}

// TranslatableItem is one unit of on-screen text eligible for translation,
// bound 1:1 to a host element.
type TranslatableItem struct {
	ID                 string
	OriginalText       string
	State              ItemState
	Translation        string       // Set while Translated
	PartialTranslation string       // Set while Translating (progressive mode)
	Progress           float64      // In [0,1] while Translating
	Quality            *QualityInfo // Set when the result carried quality metadata
	Pair               LanguagePair
	LastError          string // Set while Error
}

// Request contains the parameters for one translation call. It is derived
// fresh per user action, never stored.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	Mode       Mode
}

// Result is the outcome of a translation call in any mode.
type Result struct {
	TranslatedText     string
	DetectedSourceLang string
	TimeMs             float64
	Quality            *QualityInfo      // nil for standard mode
	Metadata           map[string]string // Optional service metadata (adaptive mode)
}

// Progressive stream stages with defined terminal semantics. Other stage
// names ("semantic", "optimizing", ...) are passed through for display.
const (
	// StageCompleted terminates a progressive stream successfully.
	StageCompleted = "completed"
	// StageError terminates a progressive stream with a failure.
	StageError = "error"
)

// ProgressiveUpdate is a transient value decoded from one record of a
// progressive translation stream. The terminal StageCompleted update carries
// the same quality fields as QualityInfo.
type ProgressiveUpdate struct {
	Stage               string
	Progress            float64
	PartialTranslation  string
	QualityScore        *float64 // nil when the record omitted a score
	QualityGrade        string   // Derived via GradeForScore when omitted but scored
	StatusMessage       string
	OptimizationApplied bool
	CacheHit            bool
	ProcessingTimeMs    float64
}

// UpdateFunc receives progressive updates in arrival order. It may be called
// zero or more times and must be safe to call that way.
type UpdateFunc func(ProgressiveUpdate)

// MutationBatch is one batch of host tree changes, carrying the HTML
// fragments of added subtrees. Host adapters translate their native change
// notifications into batches so classification stays testable without a
// live document.
type MutationBatch struct {
	AddedFragments []string
}

// ControlKind distinguishes what a watcher binding attaches to.
type ControlKind string

const (
	// ControlMessage is a translate control on a message element.
	ControlMessage ControlKind = "message"
	// ControlInput is a pre-send translate control on an editable input region.
	ControlInput ControlKind = "input"
)

// Binding is the watcher's output for one newly discovered element: a stable
// id plus the text found at discovery time.
//
// Attributes carries the processed marker and, for elements without a native
// id, the synthesized id. The watcher classifies fragment snapshots, so it
// cannot mutate the live element itself: the host adapter must write these
// attributes onto the element before forwarding its next batch, or the
// element cannot be recognized when it reappears.
type Binding struct {
	ID         string
	Text       string
	Kind       ControlKind
	Attributes map[string]string
}

// ProtocolClient is the interface to the remote translation service.
type ProtocolClient interface {
	// Translate performs a standard translation.
	Translate(ctx context.Context, req Request) (*Result, error)

	// TranslateAdaptive performs a quality-optimized translation. On a non-2xx
	// response it returns a typed error; falling back to Translate is the
	// caller's responsibility.
	TranslateAdaptive(ctx context.Context, req Request) (*Result, error)

	// TranslateProgressive performs a streaming translation. Every decoded
	// update is delivered to onUpdate, in arrival order, before the call
	// returns.
	TranslateProgressive(ctx context.Context, req Request, onUpdate UpdateFunc) (*Result, error)
}

// StandardTranslator is the subset of ProtocolClient sufficient for plain
// translation. Fallback providers implement only this.
type StandardTranslator interface {
	Translate(ctx context.Context, req Request) (*Result, error)
}

// StateStore is the single source of truth for each item's current view.
// All mutating operations report whether they took effect, so late results
// for dismissed items are suppressed rather than applied.
type StateStore interface {
	// Bind registers a new item with its write-once original text. Returns
	// false if the id is already bound.
	Bind(id, originalText string, pair LanguagePair) bool

	// Begin moves an item to Translating. Idempotent: returns false if the
	// item is unknown, already Translating, or already Translated.
	Begin(id string) bool

	// ApplyResult moves a Translating item to Translated. Returns false (and
	// changes nothing) when the item is no longer Translating.
	ApplyResult(id, translation string, quality *QualityInfo) bool

	// ApplyProgress updates the partial translation and progress of a
	// Translating item without changing its state.
	ApplyProgress(id string, update ProgressiveUpdate) bool

	// Fail moves a Translating item to Error and clears any partial output.
	Fail(id string, err error) bool

	// Toggle restores a Translated item to Untranslated, clearing the
	// translation. A no-op (false) in every other state.
	Toggle(id string) bool

	// Get returns a snapshot of the item.
	Get(id string) (TranslatableItem, bool)

	// Items returns snapshots of all bound items.
	Items() []TranslatableItem
}

// Watcher classifies host tree changes into bindings. Implementations must
// never produce two bindings for the same element across batches.
type Watcher interface {
	Process(batch MutationBatch) []Binding
}

// Renderer is the host-side display surface. Implementations re-render the
// bound element from the item snapshot; a nil renderer is allowed and all
// rendering is skipped.
type Renderer interface {
	// AttachControl attaches the translate affordance for a fresh binding
	// and writes b.Attributes onto the bound element.
	AttachControl(b Binding)

	// Render updates the element bound to item.ID from the item snapshot.
	Render(item TranslatableItem)
}
