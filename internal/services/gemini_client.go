package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

// GenerationConfig carries the optional sampling settings a caller may pin.
// Nil fields are omitted from the request so the model uses its defaults.
type GenerationConfig struct {
	Temperature     *float64
	MaxOutputTokens *int
}

// GeminiClient is the generative-language API boundary. It is an interface so
// the AI orchestrator can be tested against a fake.
type GeminiClient interface {
	GenerateContent(ctx context.Context, prompt string, cfg *GenerationConfig) (string, error)
}

type geminiClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logger.Logger
}

func NewGeminiClient(baseLog *logger.Logger) GeminiClient {
	clientLog := baseLog.With("service", "GeminiClient")
	baseURL := utils.GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com", baseLog)
	apiKey := utils.GetEnv("GEMINI_API_KEY", "", baseLog)
	model := utils.GetEnv("GEMINI_MODEL", "gemini-1.5-flash", baseLog)
	timeoutSeconds := utils.GetEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60, baseLog)

	if apiKey == "" {
		clientLog.Warn("GEMINI_API_KEY is not set, model calls will fail")
	}

	return &geminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		log:     clientLog,
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type geminiHTTPError struct {
	Status int
	Body   string
}

func (e *geminiHTTPError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("gemini returned status %d: %s", e.Status, body)
}

// GenerateContent performs exactly one model call. Failures surface
// immediately; retry policy is deliberately absent.
func (c *geminiClient) GenerateContent(ctx context.Context, prompt string, cfg *GenerationConfig) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if cfg != nil {
		reqBody.GenerationConfig = &geminiGenConfig{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("Failed to encode gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("Failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Failed to read gemini response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &geminiHTTPError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("Failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	c.log.Debug("Gemini call completed",
		"model", c.model,
		"prompt_chars", len(prompt),
		"duration_ms", time.Since(start).Milliseconds())
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
