package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/leaderboards?type=individual|team|both
func (h *Handlers) Leaderboards(c *gin.Context) {
	lb, err := h.svc.Reports.Leaderboard(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lb)
}

// GET /api/analytics/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.svc.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
