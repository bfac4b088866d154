package handler

import (
	"errors"
	"io"
	"net/http"

	"signal-desk/internal/inference"
	"signal-desk/internal/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const maxScreenshotBytes = 10 << 20

type toggleRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type screenshotRequest struct {
	Image string `json:"image" binding:"required"`
}

// CreateSession godoc
// @Summary      Create a session
// @Description  Starts a new empty session and returns its snapshot
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  session.Snapshot
// @Router       /api/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.create-session")
	defer span.End()

	sess := h.sessions.Create()
	span.SetAttributes(attribute.String("session.id", sess.ID()))
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// GetSession godoc
// @Summary      Get session state
// @Tags         sessions
// @Produce      json
// @Param        id   path  string  true  "Session id"
// @Success      200  {object}  session.Snapshot
// @Failure      404  {object}  map[string]string
// @Router       /api/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Snapshot())
}

// DeleteSession godoc
// @Summary      Close a session
// @Tags         sessions
// @Param        id   path  string  true  "Session id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleInstrument godoc
// @Summary      Toggle one instrument
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Session id"
// @Param        body  body  toggleRequest  true  "Instrument symbol"
// @Success      200  {object}  session.Snapshot
// @Failure      400  {object}  map[string]string
// @Router       /api/sessions/{id}/toggle [post]
func (h *Handler) ToggleInstrument(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	sess := currentSession(c)
	if err := sess.Toggle(req.Symbol); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// ToggleAll godoc
// @Summary      Select or clear every instrument
// @Description  Clears the selection when everything is selected, otherwise selects the whole registry
// @Tags         sessions
// @Produce      json
// @Param        id   path  string  true  "Session id"
// @Success      200  {object}  session.Snapshot
// @Router       /api/sessions/{id}/toggle-all [post]
func (h *Handler) ToggleAll(c *gin.Context) {
	sess := currentSession(c)
	if err := sess.ToggleAll(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// AnalyzeScreenshot godoc
// @Summary      Analyze a chart screenshot
// @Description  Replaces the session screenshot and predicts the next candle. Accepts a multipart "file" or JSON {"image": "data:image/png;base64,..."}
// @Tags         analysis
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      string  true   "Session id"
// @Param        file  formData  file    false  "Chart image"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/sessions/{id}/screenshot [post]
func (h *Handler) AnalyzeScreenshot(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze-screenshot")
	defer span.End()

	shot, err := readScreenshot(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.String("image.mime", shot.MIMEType), attribute.Int("image.bytes", len(shot.Data)))

	sess := currentSession(c)
	result, err := sess.Analyze(ctx, shot)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": bannerOr(sess, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"action": result.Verdict.Action(),
	})
}

// GenerateSignals godoc
// @Summary      Generate future signals
// @Description  Requests a batch of one-minute signals for the selected instruments. Only signals at or above the probability threshold are returned, sorted by time.
// @Tags         signals
// @Produce      json
// @Param        id   path  string  true  "Session id"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/sessions/{id}/signals [post]
func (h *Handler) GenerateSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.generate-signals")
	defer span.End()

	sess := currentSession(c)
	signals, err := sess.Generate(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": bannerOr(sess, err)})
		return
	}
	span.SetAttributes(attribute.Int("signals.count", len(signals)))

	resp := gin.H{"signals": signals}
	if notice := sess.Snapshot().Notice; notice != "" {
		resp["notice"] = notice
	}
	c.JSON(http.StatusOK, resp)
}

// DismissError godoc
// @Summary      Dismiss the error banner
// @Tags         sessions
// @Produce      json
// @Param        id   path  string  true  "Session id"
// @Success      200  {object}  session.Snapshot
// @Router       /api/sessions/{id}/error [delete]
func (h *Handler) DismissError(c *gin.Context) {
	sess := currentSession(c)
	sess.DismissError()
	c.JSON(http.StatusOK, sess.Snapshot())
}

func readScreenshot(c *gin.Context) (inference.Screenshot, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxScreenshotBytes {
			return inference.Screenshot{}, errors.New("image too large")
		}
		f, err := fh.Open()
		if err != nil {
			return inference.Screenshot{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxScreenshotBytes))
		if err != nil {
			return inference.Screenshot{}, err
		}
		return inference.ScreenshotFromBytes(data)
	}

	var req screenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return inference.Screenshot{}, errors.New(`expected multipart "file" or JSON {"image": "..."}`)
	}
	return inference.DecodeScreenshot(req.Image)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrUnknownInstrument),
		errors.Is(err, inference.ErrNoInstruments),
		errors.Is(err, inference.ErrEmptyImage),
		errors.Is(err, inference.ErrNotAnImage):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inference.ErrSignalRejected), errors.Is(err, inference.ErrMarketNoise):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// bannerOr prefers the session banner, which is what a user would see.
func bannerOr(sess *session.Session, err error) string {
	if msg := sess.Snapshot().Error; msg != "" {
		return msg
	}
	return err.Error()
}
