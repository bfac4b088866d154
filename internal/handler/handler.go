package handler

import (
	"signal-desk/internal/clock"
	"signal-desk/internal/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// ClockSource provides the header clock and gauge.
type ClockSource interface {
	Current() clock.Tick
}

type Handler struct {
	tracer   trace.Tracer
	sessions *session.Store
	clock    ClockSource
}

func New(tracer trace.Tracer, sessions *session.Store, clk ClockSource) *Handler {
	return &Handler{
		tracer:   tracer,
		sessions: sessions,
		clock:    clk,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/instruments", h.ListInstruments)
	r.GET("/api/clock", h.GetClock)

	r.POST("/api/sessions", h.CreateSession)

	s := r.Group("/api/sessions/:id", h.LoadSession())
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)
	s.POST("/toggle", h.ToggleInstrument)
	s.POST("/toggle-all", h.ToggleAll)
	s.POST("/screenshot", h.AnalyzeScreenshot)
	s.POST("/signals", h.GenerateSignals)
	s.DELETE("/error", h.DismissError)
	s.GET("/events", h.Events)
}
