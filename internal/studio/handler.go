package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/audiogen/internal/capture"
	"github.com/eleven-am/audiogen/internal/dto"
	"github.com/eleven-am/audiogen/internal/playback"
	"github.com/eleven-am/audiogen/internal/shared"
	"github.com/eleven-am/audiogen/internal/synthesis"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const SessionCookie = "audiogen_session"

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger.With("component", "studio_handler"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/state", h.GetState)
	g.GET("/events", h.Events)
	g.GET("/voices", h.ListVoices)
	g.PUT("/text", h.SetText)
	g.POST("/text/upload", h.UploadText)
	g.PUT("/gender", h.SetGender)
	g.PUT("/voice", h.SelectVoice)
	g.PUT("/language", h.SetLanguage)
	g.POST("/generate", h.Generate)
	g.POST("/reset", h.Reset)
	g.GET("/record", h.Record)
	g.POST("/playback/toggle", h.TogglePlay)
	g.PUT("/playback/speed", h.SetSpeed)
	g.POST("/playback/progress", h.Progress)
	g.POST("/playback/ended", h.Ended)
	g.GET("/download", h.Download)
	g.DELETE("/session", h.DeleteSession)
}

func (h *Handler) RegisterMediaRoutes(e *echo.Echo) {
	e.GET("/media/:id", h.Media)
}

// session resolves the caller's studio from its cookie, creating one when
// the cookie is missing or stale.
func (h *Handler) session(c echo.Context) *Orchestrator {
	var id string
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		id = cookie.Value
	}

	o, created := h.manager.GetOrCreate(id)
	if created {
		c.SetCookie(&http.Cookie{
			Name:     SessionCookie,
			Value:    o.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	o.Touch()
	return o
}

// GetState godoc
// @Summary      Get studio state
// @Description  Returns the full state of the caller's studio session
// @Tags         studio
// @Produce      json
// @Success      200  {object}  State
// @Router       /api/v1/studio/state [get]
func (h *Handler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session(c).State())
}

// Events godoc
// @Summary      Stream studio state
// @Description  Server-Sent Events stream of state snapshots; the first event is the current state
// @Tags         studio
// @Produce      text/event-stream
// @Success      200
// @Router       /api/v1/studio/events [get]
func (h *Handler) Events(c echo.Context) error {
	o := h.session(c)

	events, unsubscribe := o.Subscribe()
	defer unsubscribe()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	stream, err := newSSEStream(c.Response())
	if err != nil {
		h.logger.Error("failed to create SSE stream", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create SSE stream")
	}

	if err := stream.writeEvent(StateEvent{Reason: "snapshot", State: o.State()}); err != nil {
		return nil
	}

	h.logger.Debug("state stream opened", "session_id", o.ID())
	_ = stream.Run(c.Request().Context(), events)
	h.logger.Debug("state stream closed", "session_id", o.ID())
	return nil
}

// ListVoices godoc
// @Summary      List voices
// @Description  Returns the voice catalog loaded for the session
// @Tags         studio
// @Produce      json
// @Success      200  {object}  dto.VoiceListResponse
// @Router       /api/v1/studio/voices [get]
func (h *Handler) ListVoices(c echo.Context) error {
	voices := h.session(c).Voices()
	resp := dto.VoiceListResponse{Voices: make([]dto.VoiceResponse, len(voices))}
	for i, v := range voices {
		resp.Voices[i] = dto.VoiceResponse{
			ID:     v.ID,
			Name:   v.Name,
			Gender: string(v.Gender),
			Style:  v.Style,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// SetText godoc
// @Summary      Set text
// @Tags         studio
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SetTextRequest  true  "Text to synthesize"
// @Success      200      {object}  State
// @Failure      400      {object}  shared.APIError
// @Router       /api/v1/studio/text [put]
func (h *Handler) SetText(c echo.Context) error {
	var req dto.SetTextRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	o := h.session(c)
	o.SetText(req.Text)
	return c.JSON(http.StatusOK, o.State())
}

// UploadText godoc
// @Summary      Upload text file
// @Description  Replaces the text with the contents of an uploaded .txt file
// @Tags         studio
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Plain text file"
// @Success      200   {object}  State
// @Failure      400   {object}  shared.APIError
// @Router       /api/v1/studio/text/upload [post]
func (h *Handler) UploadText(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return shared.BadRequest("missing_file", "a .txt file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return shared.BadRequest("invalid_file", "could not read the uploaded file")
	}
	defer f.Close()

	o := h.session(c)
	if err := o.UploadText(fh.Filename, f); err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			return shared.BadRequest("invalid_file", verr.Message)
		}
		h.logger.Error("failed to read upload", "error", err)
		return shared.InternalError("upload_failed", "failed to read the uploaded file")
	}
	return c.JSON(http.StatusOK, o.State())
}

// SetGender godoc
// @Summary      Set gender filter
// @Tags         studio
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SetGenderRequest  true  "Male or Female"
// @Success      200      {object}  State
// @Failure      400      {object}  shared.APIError
// @Router       /api/v1/studio/gender [put]
func (h *Handler) SetGender(c echo.Context) error {
	var req dto.SetGenderRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	gender, ok := shared.ParseGender(req.Gender)
	if !ok {
		return shared.BadRequest("invalid_gender", "gender must be Male or Female")
	}
	o := h.session(c)
	o.SetGender(gender)
	return c.JSON(http.StatusOK, o.State())
}

// SelectVoice godoc
// @Summary      Select voice
// @Tags         studio
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SelectVoiceRequest  true  "Voice ID from the catalog"
// @Success      200      {object}  State
// @Failure      400      {object}  shared.APIError
// @Failure      404      {object}  shared.APIError
// @Router       /api/v1/studio/voice [put]
func (h *Handler) SelectVoice(c echo.Context) error {
	var req dto.SelectVoiceRequest
	if err := c.Bind(&req); err != nil || req.VoiceID == "" {
		return shared.BadRequest("invalid_request", "voice_id is required")
	}
	o := h.session(c)
	if err := o.SelectVoice(req.VoiceID); err != nil {
		return shared.NotFound("voice_not_found", "voice not found")
	}
	return c.JSON(http.StatusOK, o.State())
}

// SetLanguage godoc
// @Summary      Set language
// @Tags         studio
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SetLanguageRequest  true  "English or Chinese"
// @Success      200      {object}  State
// @Failure      400      {object}  shared.APIError
// @Router       /api/v1/studio/language [put]
func (h *Handler) SetLanguage(c echo.Context) error {
	var req dto.SetLanguageRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	lang, ok := shared.ParseLanguage(req.Language)
	if !ok {
		return shared.BadRequest("invalid_language", "language must be English or Chinese")
	}
	o := h.session(c)
	o.SetLanguage(lang)
	return c.JSON(http.StatusOK, o.State())
}

// Generate godoc
// @Summary      Generate speech
// @Description  Synthesizes the current text with the selected voice
// @Tags         studio
// @Produce      json
// @Success      200  {object}  State
// @Failure      400  {object}  shared.APIError
// @Failure      409  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Router       /api/v1/studio/generate [post]
func (h *Handler) Generate(c echo.Context) error {
	o := h.session(c)
	err := o.Generate()
	if err == nil {
		return c.JSON(http.StatusOK, o.State())
	}

	var verr *shared.ValidationError
	var statusErr *synthesis.StatusError
	switch {
	case errors.As(err, &verr):
		return shared.BadRequest("invalid_request", verr.Message)
	case errors.Is(err, ErrGenerationInFlight):
		return shared.Conflict("generation_in_progress", "a generation is already in progress")
	case errors.Is(err, ErrClosed):
		return shared.Conflict("session_closed", "the session has been closed")
	case errors.As(err, &statusErr):
		return shared.NewAPIError("synthesis_failed", err.Error()).
			WithDetails(map[string]any{"status": statusErr.StatusCode, "body": statusErr.Body}).
			ToHTTP(http.StatusBadGateway)
	default:
		return shared.BadGateway("synthesis_failed", err.Error())
	}
}

// Reset godoc
// @Summary      Reset result
// @Description  Clears the generated audio and the error; text and voice are kept
// @Tags         studio
// @Produce      json
// @Success      200  {object}  State
// @Router       /api/v1/studio/reset [post]
func (h *Handler) Reset(c echo.Context) error {
	o := h.session(c)
	o.Reset()
	return c.JSON(http.StatusOK, o.State())
}

// Record godoc
// @Summary      Record voice input
// @Description  WebSocket microphone. Binary messages are audio fragments; a text "stop" or closing the socket ends the recording and starts transcription. Opening the socket while a recording is active stops it.
// @Tags         studio
// @Success      101
// @Router       /api/v1/studio/record [get]
func (h *Handler) Record(c echo.Context) error {
	o := h.session(c)
	ctx := context.WithoutCancel(c.Request().Context())

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("microphone upgrade failed", "session_id", o.ID(), "error", err)
		denied := capture.DeviceFunc(func(context.Context) (capture.Stream, error) {
			return nil, fmt.Errorf("%w: %v", capture.ErrPermissionDenied, err)
		})
		_ = o.StartRecording(ctx, denied)
		return nil
	}

	dev := capture.NewWSDevice(ws, h.logger)
	if _, err := o.ToggleRecording(ctx, dev); err != nil {
		h.logger.Warn("failed to toggle recording", "session_id", o.ID(), "error", err)
	}
	dev.ReleaseIfUnused()
	<-dev.Ended()
	return nil
}

// TogglePlay godoc
// @Summary      Toggle playback
// @Tags         playback
// @Produce      json
// @Success      200  {object}  dto.PlayStateResponse
// @Failure      409  {object}  shared.APIError
// @Router       /api/v1/studio/playback/toggle [post]
func (h *Handler) TogglePlay(c echo.Context) error {
	playing, err := h.session(c).TogglePlay()
	if err != nil {
		return shared.Conflict("nothing_loaded", "no audio has been generated")
	}
	return c.JSON(http.StatusOK, dto.PlayStateResponse{Playing: playing})
}

// SetSpeed godoc
// @Summary      Set playback speed
// @Tags         playback
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SetSpeedRequest  true  "One of 0.5, 0.75, 1, 1.25, 1.5, 2"
// @Success      200      {object}  playback.Snapshot
// @Failure      400      {object}  shared.APIError
// @Router       /api/v1/studio/playback/speed [put]
func (h *Handler) SetSpeed(c echo.Context) error {
	var req dto.SetSpeedRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	o := h.session(c)
	if err := o.SetSpeed(req.Speed); err != nil {
		return shared.NewAPIError("invalid_speed", "unsupported playback speed").
			WithDetails(map[string]any{"allowed": playback.AllowedSpeeds}).
			ToHTTP(http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, o.State().Playback)
}

// Progress godoc
// @Summary      Report playback progress
// @Tags         playback
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ProgressRequest  true  "Current position and duration in seconds"
// @Success      200      {object}  playback.Snapshot
// @Failure      400      {object}  shared.APIError
// @Router       /api/v1/studio/playback/progress [post]
func (h *Handler) Progress(c echo.Context) error {
	var req dto.ProgressRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	o := h.session(c)
	o.UpdateProgress(req.Current, req.Duration)
	return c.JSON(http.StatusOK, o.State().Playback)
}

// Ended godoc
// @Summary      Report end of playback
// @Tags         playback
// @Produce      json
// @Success      200  {object}  playback.Snapshot
// @Router       /api/v1/studio/playback/ended [post]
func (h *Handler) Ended(c echo.Context) error {
	o := h.session(c)
	o.PlaybackEnded()
	return c.JSON(http.StatusOK, o.State().Playback)
}

// Download godoc
// @Summary      Download audio
// @Description  Returns the generated audio as an attachment
// @Tags         playback
// @Produce      octet-stream
// @Success      200
// @Failure      404  {object}  shared.APIError
// @Router       /api/v1/studio/download [get]
func (h *Handler) Download(c echo.Context) error {
	result := h.session(c).Result()
	if result == nil {
		return shared.NotFound("nothing_loaded", "no audio has been generated")
	}
	filename := "speech-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "." + result.Extension()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, result.MIMEType, result.Data)
}

// DeleteSession godoc
// @Summary      End session
// @Description  Closes the caller's studio session and releases its resources
// @Tags         studio
// @Success      204  "No Content"
// @Router       /api/v1/studio/session [delete]
func (h *Handler) DeleteSession(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		_ = h.manager.RemoveSession(cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Media godoc
// @Summary      Stream generated audio
// @Tags         playback
// @Produce      octet-stream
// @Param        id   path      string  true  "Media handle ID"
// @Success      200
// @Failure      404  {object}  shared.APIError
// @Router       /media/{id} [get]
func (h *Handler) Media(c echo.Context) error {
	result, err := h.manager.Handles().Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("media_not_found", "media not found")
		}
		h.logger.Error("failed to load media", "error", err)
		return shared.InternalError("media_failed", "failed to load media")
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, result.MIMEType, result.Data)
}
