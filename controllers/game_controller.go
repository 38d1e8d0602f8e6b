package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/services"
)

// GET /api/game-sessions
func (h *Handlers) ListGameSessions(c *gin.Context) {
	sessions, err := h.svc.Games.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/game-sessions/:id
func (h *Handlers) GetGameSession(c *gin.Context) {
	gs, err := h.svc.Games.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// POST /api/game-sessions
func (h *Handlers) CreateGameSession(c *gin.Context) {
	var req services.CreateGameSessionInput
	if !bindJSON(c, &req) {
		return
	}
	gs, err := h.svc.Games.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gs)
}

// PUT /api/game-sessions/:id
func (h *Handlers) UpdateGameSession(c *gin.Context) {
	var req services.UpdateGameSessionInput
	if !bindJSON(c, &req) {
		return
	}
	gs, err := h.svc.Games.UpdateSession(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gs)
}

// POST /api/game-sessions/:id/start
func (h *Handlers) StartGameSession(c *gin.Context) {
	gs, err := h.svc.Games.StartSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Game session started successfully",
		"gameSession": gs,
	})
}

// ====== round ======

// GET /api/rounds?gameSessionId=
func (h *Handlers) ListRounds(c *gin.Context) {
	rounds, err := h.svc.Games.ListRounds(c.Request.Context(), c.Query("gameSessionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// POST /api/rounds
func (h *Handlers) CreateRound(c *gin.Context) {
	var req services.CreateRoundInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Games.CreateRound(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// PUT /api/rounds/:id
func (h *Handlers) UpdateRound(c *gin.Context) {
	var req services.UpdateRoundInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Games.UpdateRound(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// POST /api/rounds/:id/activate
func (h *Handlers) ActivateRound(c *gin.Context) {
	r, err := h.svc.Games.ActivateRound(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Round activated successfully",
		"round":   r,
	})
}
