package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/services"
)

// GET /api/questions?roundId=&includeInactive=
// includeInactive chỉ có tác dụng với admin.
func (h *Handlers) ListQuestions(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	if u := currentUser(c); u == nil || u.Role != models.RoleAdmin {
		includeInactive = false
	}

	questions, err := h.svc.Questions.List(c.Request.Context(), c.Query("roundId"), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GET /api/questions/:id
func (h *Handlers) GetQuestion(c *gin.Context) {
	q, err := h.svc.Questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// POST /api/questions
func (h *Handlers) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionInput
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.svc.Questions.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

// PUT /api/questions/:id
func (h *Handlers) UpdateQuestion(c *gin.Context) {
	var req services.UpdateQuestionInput
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.svc.Questions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// DELETE /api/questions/:id
func (h *Handlers) DeleteQuestion(c *gin.Context) {
	if err := h.svc.Questions.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deactivated successfully"})
}

/* ========== danh mục ========== */

func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.svc.Questions.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.Questions.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handlers) UpdateCategory(c *gin.Context) {
	var req services.UpdateCategoryInput
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.svc.Questions.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.svc.Questions.DeactivateCategory(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deactivated successfully"})
}

/* ========== tag ========== */

func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.svc.Questions.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handlers) CreateTag(c *gin.Context) {
	var req services.CreateTagInput
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.svc.Questions.CreateTag(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}
