package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/eleven-am/audiogen/internal/fallback"
	"github.com/eleven-am/audiogen/internal/metrics"
	"github.com/eleven-am/audiogen/internal/shared"
)

const healthPath = "/api/whisper/health"

type Client struct {
	baseURL string
	paths   []string
	http    *http.Client
	logger  *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	paths := cfg.Paths
	if paths == nil {
		paths = DefaultPaths
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths:   append([]string(nil), paths...),
		http:    httpClient,
		logger:  cfg.Logger.With("component", "stt_client"),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the clip to each candidate path until one answers with a
// 2xx status. The language hint is omitted when lang is empty.
func (c *Client) Transcribe(ctx context.Context, clip []byte, lang shared.Language) (string, error) {
	if len(clip) == 0 {
		return "", ErrEmptyAudio
	}

	strategies := make([]fallback.Strategy[[]byte], 0, len(c.paths))
	for _, path := range c.paths {
		strategies = append(strategies, fallback.Strategy[[]byte]{
			Name: path,
			Call: func(ctx context.Context) ([]byte, error) {
				return c.post(ctx, path, clip, lang)
			},
		})
	}

	raw, path, err := fallback.Run(ctx, strategies, func(name string, err error) {
		metrics.TranscriptionAttempts.WithLabelValues(name, "failure").Inc()
		c.logger.Warn("transcription endpoint failed", "path", name, "error", err)
	})
	if err != nil {
		if errors.Is(err, fallback.ErrNoStrategies) {
			return "", ErrNoEndpoint
		}
		return "", err
	}

	metrics.TranscriptionAttempts.WithLabelValues(path, "success").Inc()

	// The first 2xx ends the walk even when its body is unusable.
	var out transcriptionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode transcription response from %s: %w", path, err)
	}
	c.logger.Debug("transcription complete", "path", path, "chars", len(out.Text))
	return out.Text, nil
}

func (c *Client) post(ctx context.Context, path string, clip []byte, lang shared.Language) ([]byte, error) {
	body, contentType, err := buildForm(clip, lang)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}

func buildForm(clip []byte, lang shared.Language) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(clip); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if lang != "" {
		if err := w.WriteField(languageField, lang.Code()); err != nil {
			return nil, "", fmt.Errorf("write language field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		c.logger.Debug("whisper health check failed", "error", err)
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("whisper health check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
