package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

// TTSClient converts text to spoken audio. The HTTP implementation talks to
// an OpenAI-compatible speech endpoint that serves the neural voices named in
// the language registry.
type TTSClient interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

type ttsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

func NewTTSClient(baseLog *logger.Logger) TTSClient {
	clientLog := baseLog.With("service", "TTSClient")
	baseURL := utils.GetEnv("TTS_BASE_URL", "http://localhost:5050", baseLog)
	apiKey := utils.GetEnv("TTS_API_KEY", "", baseLog)
	timeoutSeconds := utils.GetEnvAsInt("TTS_TIMEOUT_SECONDS", 30, baseLog)

	return &ttsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
		log:     clientLog,
	}
}

type ttsRequest struct {
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

type ttsHTTPError struct {
	Status int
	Body   string
}

func (e *ttsHTTPError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300]
	}
	return fmt.Sprintf("tts returned status %d: %s", e.Status, body)
}

// Synthesize performs exactly one synthesis call and returns the mp3 bytes.
func (c *ttsClient) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	payload, err := json.Marshal(ttsRequest{Input: text, Voice: voice, ResponseFormat: "mp3"})
	if err != nil {
		return nil, fmt.Errorf("Failed to encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("Failed to build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to read tts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ttsHTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("TTS returned an empty audio stream")
	}

	c.log.Debug("TTS call completed", "voice", voice, "text_chars", len(text), "audio_bytes", len(body))
	return body, nil
}
