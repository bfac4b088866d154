package handler

import (
	"net/http"

	"signal-desk/internal/domain"

	"github.com/gin-gonic/gin"
)

// ListInstruments godoc
// @Summary      List tradable instruments
// @Description  Returns the static instrument registry in display order
// @Tags         instruments
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/instruments [get]
func (h *Handler) ListInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": domain.Instruments})
}

// GetClock godoc
// @Summary      Header clock
// @Description  Returns the local time in the configured zone and the cosmetic accuracy gauge
// @Tags         instruments
// @Produce      json
// @Success      200  {object}  clock.Tick
// @Router       /api/clock [get]
func (h *Handler) GetClock(c *gin.Context) {
	c.JSON(http.StatusOK, h.clock.Current())
}
