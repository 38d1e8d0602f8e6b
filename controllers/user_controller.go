package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/services"
)

// GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GET /api/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	u, err := h.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Users.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// PUT /api/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.svc.Users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /api/users/:id (soft delete)
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.svc.Users.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated successfully"})
}

// ====== team ======

// GET /api/teams
func (h *Handlers) ListTeams(c *gin.Context) {
	teams, err := h.svc.Teams.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// GET /api/teams/:id
func (h *Handlers) GetTeam(c *gin.Context) {
	t, err := h.svc.Teams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// POST /api/teams
func (h *Handlers) CreateTeam(c *gin.Context) {
	var req services.CreateTeamInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Teams.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// PUT /api/teams/:id
func (h *Handlers) UpdateTeam(c *gin.Context) {
	var req services.UpdateTeamInput
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Teams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DELETE /api/teams/:id (xoá hẳn, thành viên được gỡ khỏi team)
func (h *Handlers) DeleteTeam(c *gin.Context) {
	if err := h.svc.Teams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team deleted successfully"})
}
