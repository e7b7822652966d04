// Package translator converts natural language questions into SQL queries
// against the CCTNS database using the Gemini API.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cctns/copilot/pkg/logging"
	"github.com/cctns/copilot/pkg/orchestration"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Config holds the settings for the Gemini translator.
type Config struct {
	APIKey string
	Model  string
	// Endpoint overrides the Gemini API base URL, mainly for tests.
	Endpoint string
	// CacheDir enables the file-backed translation cache when non-empty.
	CacheDir string
	// CacheTTL defaults to an hour when the cache is enabled.
	CacheTTL time.Duration
}

// Gemini implements orchestration.Translator against the Gemini API.
type Gemini struct {
	config Config
	client *http.Client
	cache  *Cache
	logger *logrus.Entry
}

// NewGemini creates a Gemini translator.
func NewGemini(cfg Config) *Gemini {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	var cache *Cache
	if cfg.CacheDir != "" {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		cache = NewCache(cfg.CacheDir, ttl)
	}

	return &Gemini{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  cache,
		logger: logging.New("translator"),
	}
}

// Translate converts a natural language question into a reviewed SQL query.
func (g *Gemini) Translate(ctx context.Context, text, locale string) (*orchestration.Translation, error) {
	if g.cache != nil {
		if cached := g.cache.Get(text, locale, g.config.Model); cached != nil {
			g.logger.Debug("Translation served from cache")
			return cached, nil
		}
	}

	prompt := BuildPrompt(text, locale)

	g.logger.WithFields(logrus.Fields{
		"model":  g.config.Model,
		"locale": locale,
		"chars":  len(text),
	}).Debug("Translating question")

	response, err := g.callGemini(ctx, prompt)
	if err != nil {
		return nil, &orchestration.TranslationError{Err: err}
	}

	result, err := parseResponse(response)
	if err != nil {
		return nil, &orchestration.TranslationError{Err: err}
	}

	if g.cache != nil {
		g.cache.Put(text, locale, g.config.Model, result)
	}

	g.logger.WithField("query_chars", len(result.Query)).Debug("Translation complete")
	return result, nil
}

// geminiRequest is the Gemini API request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the Gemini API response body.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (g *Gemini) callGemini(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		g.config.Endpoint, g.config.Model, g.config.APIKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	if geminiResp.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", geminiResp.Error.Code, geminiResp.Error.Message)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned empty response")
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
