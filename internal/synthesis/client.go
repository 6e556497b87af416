package synthesis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/eleven-am/audiogen/internal/fallback"
	"github.com/eleven-am/audiogen/internal/metrics"
	"github.com/eleven-am/audiogen/internal/shared"
)

const (
	voicesPath = "/api/tts/voices"
	speechPath = "/api/tts"
	healthPath = "/api/tts/health"

	translateReferer = "https://translate.google.com/"
	healthProbeText  = "test"
)

type Client struct {
	baseURL      string
	provider     Provider
	translateURL string
	secondaryURL string
	outputFormat string
	http         *http.Client
	logger       *slog.Logger
}

func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderProxy
	}
	if cfg.TranslateURL == "" {
		cfg.TranslateURL = DefaultTranslateURL
	}
	if cfg.SecondaryURL == "" {
		cfg.SecondaryURL = DefaultSecondaryURL
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
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
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		provider:     cfg.Provider,
		translateURL: cfg.TranslateURL,
		secondaryURL: cfg.SecondaryURL,
		outputFormat: cfg.OutputFormat,
		http:         httpClient,
		logger:       cfg.Logger.With("component", "tts_client", "provider", string(cfg.Provider)),
	}
}

func (c *Client) Provider() Provider {
	return c.provider
}

// ListVoices never fails because of the remote service: any fetch or parse
// problem degrades to the built-in catalog. Only a cancelled context is
// reported as an error.
func (c *Client) ListVoices(ctx context.Context) ([]shared.VoiceOption, error) {
	voices, err := c.fetchVoices(ctx)
	if err == nil && len(voices) > 0 {
		c.logger.Debug("voice catalog loaded", "count", len(voices))
		return voices, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if err != nil {
		c.logger.Warn("falling back to built-in voice catalog", "error", err)
	} else {
		c.logger.Warn("no usable voices in remote catalog, falling back to built-in voice catalog")
	}
	metrics.CatalogFallbacks.Inc()
	return FallbackCatalog(), nil
}

func (c *Client) fetchVoices(ctx context.Context) ([]shared.VoiceOption, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+voicesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build voices request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch voices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read voices response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch voices: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseCatalog(body, c.logger)
}

func (c *Client) Synthesize(ctx context.Context, text string, voice *shared.VoiceOption, lang shared.Language) (*shared.AudioResult, error) {
	if voice == nil {
		return nil, ErrNoVoice
	}

	strategies := c.strategies(text, voice, lang)
	result, provider, err := fallback.Run(ctx, strategies, func(name string, err error) {
		metrics.ProviderFailures.WithLabelValues(name).Inc()
		c.logger.Warn("tts provider failed", "attempt", name, "voice_id", voice.ID, "error", err)
	})
	if err != nil {
		if len(strategies) > 1 {
			return nil, fmt.Errorf("All TTS services failed. Last error: %w", err)
		}
		return nil, err
	}

	c.logger.Debug("speech synthesized",
		"attempt", provider,
		"voice_id", voice.ID,
		"bytes", len(result.Data),
		"mime_type", result.MIMEType)
	return result, nil
}

func (c *Client) strategies(text string, voice *shared.VoiceOption, lang shared.Language) []fallback.Strategy[*shared.AudioResult] {
	if c.provider == ProviderTranslate {
		tl := voiceLanguage(voice.ID, lang)
		return []fallback.Strategy[*shared.AudioResult]{
			{Name: "translate", Call: func(ctx context.Context) (*shared.AudioResult, error) {
				return c.fetchAudio(ctx, "translate", c.translateQuery(text, tl), translateHeaders())
			}},
			{Name: "secondary", Call: func(ctx context.Context) (*shared.AudioResult, error) {
				return c.fetchAudio(ctx, "secondary", c.secondaryQuery(text, tl), nil)
			}},
		}
	}

	return []fallback.Strategy[*shared.AudioResult]{
		{Name: "proxy", Call: func(ctx context.Context) (*shared.AudioResult, error) {
			return c.fetchAudio(ctx, "proxy", c.proxyQuery(text, voice.ID), nil)
		}},
	}
}

func (c *Client) proxyQuery(text, voiceID string) string {
	q := url.Values{}
	q.Set("text", text)
	q.Set("voice", voiceID)
	q.Set("output_format", c.outputFormat)
	return c.baseURL + speechPath + "?" + q.Encode()
}

func (c *Client) translateQuery(text, tl string) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", tl)
	q.Set("client", "tw-ob")
	return c.translateURL + "?" + q.Encode()
}

func (c *Client) secondaryQuery(text, tl string) string {
	q := url.Values{}
	q.Set("speaker", "oksana")
	q.Set("format", "mp3")
	q.Set("quality", "hi")
	q.Set("lang", tl)
	q.Set("text", text)
	return c.secondaryURL + "?" + q.Encode()
}

func translateHeaders() http.Header {
	h := http.Header{}
	h.Set("Referer", translateReferer)
	return h
}

// voiceLanguage takes the language prefix of a voice ID such as
// "zh-CN-XiaoxiaoNeural"; IDs without one use the requested language.
func voiceLanguage(voiceID string, lang shared.Language) string {
	if i := strings.Index(voiceID, "-"); i > 0 {
		return voiceID[:i]
	}
	return lang.Code()
}

func (c *Client) fetchAudio(ctx context.Context, provider, rawURL string, header http.Header) (*shared.AudioResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", provider, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if len(body) == 0 {
		return nil, ErrEmptyAudio
	}

	return &shared.AudioResult{
		Data:     body,
		MIMEType: inferMIMEType(resp.Header.Get("Content-Type"), body),
	}, nil
}

func inferMIMEType(contentType string, body []byte) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mediaType, "audio/") {
		return mediaType
	}
	if sniffed := http.DetectContentType(body); strings.HasPrefix(sniffed, "audio/") {
		return sniffed
	}
	return "audio/mpeg"
}

// CheckHealth reports whether the configured provider answers. It never
// returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	if c.provider == ProviderTranslate {
		_, err := c.fetchAudio(ctx, "translate", c.translateQuery(healthProbeText, "en"), translateHeaders())
		if err != nil {
			c.logger.Debug("tts health check failed", "error", err)
			return false
		}
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		c.logger.Debug("tts health check failed", "error", err)
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("tts health check failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
