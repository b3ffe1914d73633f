package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/chatglot/chatglot"
)

// OpenAIFallback is a secondary standard-mode translator backed by an OpenAI
// chat model, for degraded operation when the primary translation service is
// unreachable. It implements chatglot.StandardTranslator only; adaptive and
// progressive modes have no fallback.
type OpenAIFallback struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the fallback translator.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIFallback creates a new OpenAI-backed fallback translator.
func NewOpenAIFallback(cfg OpenAIConfig) *OpenAIFallback {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIFallback{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a single text via the chat completion API.
func (p *OpenAIFallback) Translate(ctx context.Context, req chatglot.Request) (*chatglot.Result, error) {
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildFallbackPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "openai fallback", Cause: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &chatglot.ServerError{Detail: "no response from fallback model"}
	}

	return &chatglot.Result{
		TranslatedText:     strings.TrimSpace(resp.Choices[0].Message.Content),
		DetectedSourceLang: req.SourceLang,
		TimeMs:             float64(time.Since(start).Milliseconds()),
	}, nil
}

// fallbackLanguageNames maps common service codes to names a chat model
// reliably understands. Unknown codes are passed through verbatim.
var fallbackLanguageNames = map[string]string{
	"eng_Latn": "English",
	"spa_Latn": "Spanish",
	"fra_Latn": "French",
	"deu_Latn": "German",
	"ita_Latn": "Italian",
	"por_Latn": "Portuguese",
	"rus_Cyrl": "Russian",
	"zho_Hans": "Chinese (Simplified)",
	"jpn_Jpan": "Japanese",
	"kor_Hang": "Korean",
	"arb_Arab": "Arabic",
	"hin_Deva": "Hindi",
	"tur_Latn": "Turkish",
	"ukr_Cyrl": "Ukrainian",
}

func fallbackLanguageName(code string) string {
	if name, ok := fallbackLanguageNames[code]; ok {
		return name
	}
	return code
}

func buildFallbackPrompt(req chatglot.Request) string {
	target := fallbackLanguageName(req.TargetLang)

	if req.SourceLang == "" || req.SourceLang == chatglot.AutoDetect {
		return fmt.Sprintf("You are a translation engine. Translate the user's message into %s. "+
			"Respond with the translation only, no commentary.", target)
	}

	source := fallbackLanguageName(req.SourceLang)
	return fmt.Sprintf("You are a translation engine. Translate the user's message from %s into %s. "+
		"Respond with the translation only, no commentary.", source, target)
}

// Verify OpenAIFallback implements chatglot.StandardTranslator
var _ chatglot.StandardTranslator = (*OpenAIFallback)(nil)
