// Package client implements the translation protocol client: the three
// request modes (standard, adaptive, progressive) against the remote
// translation service, including server-sent-event decoding for the
// progressive stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/chatglot/chatglot"
)

// HTTPClient talks to the translation service over HTTP. It implements
// chatglot.ProtocolClient.
type HTTPClient struct {
	cfg chatglot.Config

	// httpClient serves the single-shot modes and is bounded by
	// cfg.RequestTimeout. streamClient serves progressive streams and
	// carries no overall timeout; a stream lives as long as the server
	// keeps emitting records.
	httpClient   *http.Client
	streamClient *http.Client
	log          *logrus.Entry
}

// Option is a functional option for configuring the HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying HTTP client for the single-shot
// modes.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithStreamClient overrides the underlying HTTP client for progressive
// streams.
func WithStreamClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.streamClient = hc
	}
}

// WithLogger sets the log entry the client writes through.
func WithLogger(log *logrus.Entry) Option {
	return func(c *HTTPClient) {
		c.log = log
	}
}

// New creates a protocol client for the service at cfg.BaseURL.
func New(cfg chatglot.Config, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		streamClient: &http.Client{},
		log:          logrus.StandardLogger().WithField("component", "chatglot.client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkConfig validates required configuration before any network call.
func (c *HTTPClient) checkConfig() error {
	if c.cfg.BaseURL == "" {
		return &chatglot.ConfigurationError{Message: "missing base URL"}
	}
	if c.cfg.APIKey == "" {
		return &chatglot.ConfigurationError{Message: "missing API key"}
	}
	return nil
}

// Translate performs a standard single request/response translation.
func (c *HTTPClient) Translate(ctx context.Context, req chatglot.Request) (*chatglot.Result, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	body := map[string]any{
		"text":        req.Text,
		"source_lang": req.SourceLang,
		"target_lang": req.TargetLang,
	}

	raw, err := c.post(ctx, "/translate", body)
	if err != nil {
		return nil, err
	}

	g := gjson.ParseBytes(raw)
	translated := g.Get("translated_text")
	if !translated.Exists() {
		return nil, &chatglot.ServerError{
			Detail: "response missing translated_text",
			Cause:  &chatglot.ParseError{Message: "unexpected translate response shape", Input: string(raw)},
		}
	}

	return &chatglot.Result{
		TranslatedText:     translated.String(),
		DetectedSourceLang: firstString(g, "detected_source_lang", "detected_source"),
		TimeMs:             firstFloat(g, "processing_time_ms", "time_ms"),
	}, nil
}

// TranslateAdaptive performs a quality-optimized translation. Non-2xx
// responses surface as a typed error; the caller decides whether to fall
// back to Translate.
func (c *HTTPClient) TranslateAdaptive(ctx context.Context, req chatglot.Request) (*chatglot.Result, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, "/adaptive/translate", c.adaptiveBody(req))
	if err != nil {
		return nil, err
	}

	g := gjson.ParseBytes(raw)
	translated := g.Get("translation")
	if !translated.Exists() {
		return nil, &chatglot.ServerError{
			Detail: "response missing translation",
			Cause:  &chatglot.ParseError{Message: "unexpected adaptive response shape", Input: string(raw)},
		}
	}

	quality := &chatglot.QualityInfo{
		Score:               g.Get("quality_score").Float(),
		Grade:               g.Get("quality_grade").String(),
		OptimizationApplied: g.Get("optimization_applied").Bool(),
		CacheHit:            g.Get("cache_hit").Bool(),
		ProcessingTimeMs:    g.Get("processing_time").Float(),
	}
	if quality.Grade == "" && g.Get("quality_score").Exists() {
		quality.Grade = chatglot.GradeForScore(quality.Score)
	}

	result := &chatglot.Result{
		TranslatedText: translated.String(),
		TimeMs:         quality.ProcessingTimeMs,
		Quality:        quality,
	}

	if meta := g.Get("metadata"); meta.IsObject() {
		result.Metadata = make(map[string]string)
		meta.ForEach(func(key, value gjson.Result) bool {
			result.Metadata[key.String()] = value.String()
			return true
		})
	}

	return result, nil
}

// TranslateProgressive performs a streaming translation. Every decoded
// update is handed to onUpdate in arrival order before the call returns;
// updates after the terminal record are not delivered.
func (c *HTTPClient) TranslateProgressive(ctx context.Context, req chatglot.Request, onUpdate chatglot.UpdateFunc) (*chatglot.Result, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(c.adaptiveBody(req))
	if err != nil {
		return nil, &chatglot.ParseError{Message: "encoding request body", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/adaptive/translate/progressive", bytes.NewReader(payload))
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "progressive stream", Cause: err}
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: "progressive stream", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serverError(resp)
	}

	final, err := c.readStream(resp.Body, onUpdate)
	if err != nil {
		return nil, err
	}

	if final.Stage == chatglot.StageError {
		detail := final.StatusMessage
		if detail == "" {
			detail = "progressive translation failed"
		}
		return nil, &chatglot.ServerError{Detail: detail}
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

	return &chatglot.Result{
		TranslatedText: final.PartialTranslation,
		TimeMs:         final.ProcessingTimeMs,
		Quality:        quality,
	}, nil
}

// readStream consumes the chunked body until a terminal record or EOF,
// delivering every decoded update along the way. EOF without a terminal
// record yields a synthetic error.
func (c *HTTPClient) readStream(body io.Reader, onUpdate chatglot.UpdateFunc) (*chatglot.ProgressiveUpdate, error) {
	dec := newSSEDecoder(c.log)
	buf := make([]byte, 4*1024)

	deliver := func(updates []chatglot.ProgressiveUpdate) *chatglot.ProgressiveUpdate {
		for _, u := range updates {
			if onUpdate != nil {
				onUpdate(u)
			}
			if u.Stage == chatglot.StageCompleted || u.Stage == chatglot.StageError {
				final := u
				return &final
			}
		}
		return nil
	}

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if final := deliver(dec.feed(buf[:n])); final != nil {
				return final, nil
			}
		}
		if readErr == io.EOF {
			if final := deliver(dec.flush()); final != nil {
				return final, nil
			}
			return nil, &chatglot.NetworkError{
				Op:    "progressive stream",
				Cause: errors.New("stream ended without a terminal record"),
			}
		}
		if readErr != nil {
			return nil, &chatglot.NetworkError{Op: "progressive stream", Cause: readErr}
		}
	}
}

// adaptiveBody builds the request body shared by the adaptive and
// progressive endpoints.
func (c *HTTPClient) adaptiveBody(req chatglot.Request) map[string]any {
	return map[string]any{
		"text":                  req.Text,
		"source_lang":           req.SourceLang,
		"target_lang":           req.TargetLang,
		"api_key":               c.cfg.APIKey,
		"user_preference":       c.cfg.UserPreference,
		"force_optimization":    c.cfg.ForceOptimization,
		"max_optimization_time": c.cfg.MaxOptimizationTime,
	}
}

// post issues a JSON POST and returns the raw 2xx body.
func (c *HTTPClient) post(ctx context.Context, path string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &chatglot.ParseError{Message: "encoding request body", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &chatglot.NetworkError{Op: path, Cause: err}
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: path, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serverError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &chatglot.NetworkError{Op: path, Cause: err}
	}
	return raw, nil
}

// setHeaders applies the common request headers.
func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("User-Agent", chatglot.UserAgent())
}

// serverError builds a ServerError from a non-2xx response, pulling the
// detail payload out of the body when one is present.
func (c *HTTPClient) serverError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))

	detail := ""
	if gjson.ValidBytes(raw) {
		g := gjson.ParseBytes(raw)
		detail = firstString(g, "detail", "error", "message")
	}
	if detail == "" {
		detail = strings.TrimSpace(string(raw))
		if len(detail) > 200 {
			detail = detail[:200]
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("%s from translation service", resp.Status)
	}

	return &chatglot.ServerError{Status: resp.StatusCode, Detail: detail}
}

// firstString returns the first present key's string value.
func firstString(g gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := g.Get(key); v.Exists() {
			return v.String()
		}
	}
	return ""
}

// firstFloat returns the first present key's float value.
func firstFloat(g gjson.Result, keys ...string) float64 {
	for _, key := range keys {
		if v := g.Get(key); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

// Verify HTTPClient implements chatglot.ProtocolClient
var _ chatglot.ProtocolClient = (*HTTPClient)(nil)
