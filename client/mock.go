package client

import (
	"context"
	"sync"

	"github.com/chatglot/chatglot"
)

// MockClient is a scripted protocol client for testing and examples. It is
// safe for concurrent use.
type MockClient struct {
	Translations map[string]string            // Map of source text to translation
	Updates      []chatglot.ProgressiveUpdate // Updates emitted by TranslateProgressive
	Quality      *chatglot.QualityInfo        // Quality attached to adaptive results
	Err          error                        // When set, every call fails with it

	mu          sync.Mutex
	CallCount   int               // Number of calls across all modes
	LastRequest *chatglot.Request // Last request received
}

// NewMockClient creates a mock with a few default translations.
func NewMockClient() *MockClient {
	return &MockClient{
		Translations: map[string]string{
			"Hello":       "Hola",
			"World":       "Mundo",
			"Hello world": "Hola mundo",
			"Good night":  "Buenas noches",
		},
	}
}

func (m *MockClient) lookup(text string) string {
	if translation, ok := m.Translations[text]; ok {
		return translation
	}
	return "[" + text + "]"
}

func (m *MockClient) record(req chatglot.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastRequest = &req
}

// Translate returns the scripted translation.
func (m *MockClient) Translate(ctx context.Context, req chatglot.Request) (*chatglot.Result, error) {
	m.record(req)

	if m.Err != nil {
		return nil, m.Err
	}

	return &chatglot.Result{
		TranslatedText:     m.lookup(req.Text),
		DetectedSourceLang: "eng_Latn",
		TimeMs:             1,
	}, nil
}

// TranslateAdaptive returns the scripted translation with the configured
// quality metadata.
func (m *MockClient) TranslateAdaptive(ctx context.Context, req chatglot.Request) (*chatglot.Result, error) {
	m.record(req)

	if m.Err != nil {
		return nil, m.Err
	}

	quality := m.Quality
	if quality == nil {
		quality = &chatglot.QualityInfo{Score: 0.92, Grade: "A"}
	}

	return &chatglot.Result{
		TranslatedText: m.lookup(req.Text),
		TimeMs:         1,
		Quality:        quality,
	}, nil
}

// TranslateProgressive replays the scripted updates, then resolves from the
// terminal one (or the translation map when none is terminal).
func (m *MockClient) TranslateProgressive(ctx context.Context, req chatglot.Request, onUpdate chatglot.UpdateFunc) (*chatglot.Result, error) {
	m.record(req)

	if m.Err != nil {
		return nil, m.Err
	}

	var final *chatglot.ProgressiveUpdate
	for i := range m.Updates {
		u := m.Updates[i]
		if onUpdate != nil {
			onUpdate(u)
		}
		if u.Stage == chatglot.StageCompleted || u.Stage == chatglot.StageError {
			final = &u
			break
		}
	}

	if final != nil && final.Stage == chatglot.StageError {
		return nil, &chatglot.ServerError{Detail: final.StatusMessage}
	}

	result := &chatglot.Result{TranslatedText: m.lookup(req.Text), TimeMs: 1}
	if final != nil {
		if final.PartialTranslation != "" {
			result.TranslatedText = final.PartialTranslation
		}
		quality := &chatglot.QualityInfo{
			Grade:               final.QualityGrade,
			OptimizationApplied: final.OptimizationApplied,
			CacheHit:            final.CacheHit,
			ProcessingTimeMs:    final.ProcessingTimeMs,
		}
		if final.QualityScore != nil {
			quality.Score = *final.QualityScore
			if quality.Grade == "" {
				quality.Grade = chatglot.GradeForScore(quality.Score)
			}
		}
		result.Quality = quality
	}

	return result, nil
}

// Reset resets the call count and last request.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockClient implements chatglot.ProtocolClient
var _ chatglot.ProtocolClient = (*MockClient)(nil)
