package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/eleven-am/audiogen/internal/transcription"
	"github.com/labstack/echo/v4"
)

const (
	maxFileSize    = 25 * 1024 * 1024
	maxInputLength = 4096
)

// Handler exposes one-shot synthesis and transcription without a studio
// session.
type Handler struct {
	tts    synthesis.Synthesizer
	stt    transcription.Transcriber
	logger *slog.Logger
}

func NewHandler(tts synthesis.Synthesizer, stt transcription.Transcriber, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tts:    tts,
		stt:    stt,
		logger: logger.With("handler", "audio"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/speech", h.HandleSpeech)
	g.POST("/transcriptions", h.HandleTranscriptions)
	g.GET("/voices", h.HandleListVoices)
}

type SpeechRequest struct {
	Input    string `json:"input" example:"Hello there"`
	Voice    string `json:"voice" example:"en-US-JennyNeural"`
	Language string `json:"language" example:"English"`
}

type TranscriptionResponse struct {
	Text string `json:"text"`
}

type VoiceResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
	Style  string `json:"style,omitempty"`
}

type VoicesListResponse struct {
	Voices []VoiceResponse `json:"voices"`
}

// HandleSpeech generates audio from text
// @Summary      Create speech
// @Description  Synthesizes the input text with the given voice and returns the audio bytes.
// @Tags         audio
// @Accept       json
// @Produce      audio/mpeg,audio/wav,audio/ogg
// @Param        request body SpeechRequest true "Speech synthesis request"
// @Success      200 {file} binary "Audio data"
// @Failure      400 {object} shared.APIError "Invalid request (missing input or voice, input too long)"
// @Failure      502 {object} shared.APIError "Synthesis failed"
// @Router       /api/v1/audio/speech [post]
func (h *Handler) HandleSpeech(c echo.Context) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "Invalid request body")
	}

	text := strings.TrimSpace(req.Input)
	if text == "" {
		return shared.BadRequest("missing_input", "Input text is required")
	}
	if len(text) > maxInputLength {
		return shared.BadRequest("input_too_long", fmt.Sprintf("Input text exceeds maximum length of %d characters", maxInputLength))
	}
	if req.Voice == "" {
		return shared.BadRequest("missing_voice", "Voice is required")
	}

	lang := shared.LanguageEnglish
	if req.Language != "" {
		parsed, ok := shared.ParseLanguage(req.Language)
		if !ok {
			return shared.BadRequest("invalid_language", "Language must be English or Chinese")
		}
		lang = parsed
	}

	voice := &shared.VoiceOption{ID: req.Voice, Name: req.Voice}
	result, err := h.tts.Synthesize(c.Request().Context(), text, voice, lang)
	if err != nil {
		h.logger.Error("synthesis failed", "voice", req.Voice, "error", err)
		var statusErr *synthesis.StatusError
		if errors.As(err, &statusErr) {
			return shared.NewAPIError("synthesis_failed", err.Error()).
				WithDetails(map[string]any{"status": statusErr.StatusCode, "body": statusErr.Body}).
				ToHTTP(http.StatusBadGateway)
		}
		return shared.BadGateway("synthesis_failed", err.Error())
	}

	return c.Blob(http.StatusOK, result.MIMEType, result.Data)
}

// HandleTranscriptions transcribes audio to text
// @Summary      Create transcription
// @Description  Transcribes an uploaded audio clip. The language hint is optional.
// @Tags         audio
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Audio file to transcribe (max 25MB)"
// @Param        language formData string false "English or Chinese"
// @Success      200 {object} TranscriptionResponse "Transcription result"
// @Failure      400 {object} shared.APIError "Invalid request (missing file)"
// @Failure      413 {object} shared.APIError "File too large (max 25MB)"
// @Failure      502 {object} shared.APIError "Transcription failed"
// @Router       /api/v1/audio/transcriptions [post]
func (h *Handler) HandleTranscriptions(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "File is required")
	}

	if file.Size > maxFileSize {
		return shared.NewAPIError("file_too_large", "File too large (max 25MB)").ToHTTP(http.StatusRequestEntityTooLarge)
	}

	var lang shared.Language
	if raw := c.FormValue("language"); raw != "" {
		parsed, ok := shared.ParseLanguage(raw)
		if !ok {
			return shared.BadRequest("invalid_language", "Language must be English or Chinese")
		}
		lang = parsed
	}

	src, err := file.Open()
	if err != nil {
		return shared.InternalError("file_error", "Failed to open file")
	}
	defer src.Close()

	audioData, err := io.ReadAll(src)
	if err != nil {
		return shared.InternalError("file_error", "Failed to read file")
	}

	text, err := h.stt.Transcribe(c.Request().Context(), audioData, lang)
	if err != nil {
		if errors.Is(err, transcription.ErrEmptyAudio) {
			return shared.BadRequest("empty_file", "File is empty")
		}
		h.logger.Error("transcription failed", "error", err)
		return shared.BadGateway("transcription_failed", err.Error())
	}

	return c.JSON(http.StatusOK, TranscriptionResponse{Text: text})
}

// HandleListVoices lists the voice catalog
// @Summary      List voices
// @Description  Returns the remote voice catalog, or the built-in catalog when the service is unreachable.
// @Tags         audio
// @Produce      json
// @Success      200 {object} VoicesListResponse "List of available voices"
// @Failure      500 {object} shared.APIError "Failed to list voices"
// @Router       /api/v1/audio/voices [get]
func (h *Handler) HandleListVoices(c echo.Context) error {
	voices, err := h.tts.ListVoices(c.Request().Context())
	if err != nil {
		h.logger.Error("list voices failed", "error", err)
		return shared.InternalError("list_failed", "Failed to list voices")
	}

	resp := VoicesListResponse{
		Voices: make([]VoiceResponse, 0, len(voices)),
	}
	for _, v := range voices {
		resp.Voices = append(resp.Voices, VoiceResponse{
			ID:     v.ID,
			Name:   v.Name,
			Gender: string(v.Gender),
			Style:  v.Style,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
