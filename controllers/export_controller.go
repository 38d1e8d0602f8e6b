package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/services"
)

/* ========== bulk operations ========== */

// GET /api/bulk-operations?type=&status=
func (h *Handlers) ListBulkOperations(c *gin.Context) {
	ops, err := h.svc.Bulk.List(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ops)
}

// POST /api/bulk-operations
func (h *Handlers) CreateBulkOperation(c *gin.Context) {
	var req services.CreateBulkOperationInput
	if !bindJSON(c, &req) {
		return
	}
	op, err := h.svc.Bulk.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// PUT /api/bulk-operations/:id
func (h *Handlers) UpdateBulkOperation(c *gin.Context) {
	var req services.UpdateBulkOperationInput
	if !bindJSON(c, &req) {
		return
	}
	op, err := h.svc.Bulk.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

/* ========== import ========== */

type importUsersRequest struct {
	Users   json.RawMessage        `json:"users"`
	Options services.ImportOptions `json:"options"`
}

// POST /api/import/users
func (h *Handlers) ImportUsers(c *gin.Context) {
	var req importUsersRequest
	if !bindJSON(c, &req) {
		return
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(req.Users, &raw); err != nil || raw == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Users data must be an array"})
		return
	}
	// Phần tử hỏng thành bản ghi rỗng và bị tính là một lỗi riêng lẻ.
	records := make([]services.ImportRecord, len(raw))
	for i, item := range raw {
		_ = json.Unmarshal(item, &records[i])
	}

	res, err := h.svc.Bulk.ImportUsers(c.Request.Context(), currentUser(c), records, req.Options, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/import/users/file (multipart: file, updateExisting)
func (h *Handlers) ImportUsersFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	records, err := services.ParseImportFile(fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	updateExisting, _ := strconv.ParseBool(c.PostForm("updateExisting"))
	filename := fh.Filename

	res, err := h.svc.Bulk.ImportUsers(c.Request.Context(), currentUser(c), records,
		services.ImportOptions{UpdateExisting: updateExisting}, &filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

/* ========== export ========== */

// GET /api/export/users?format=json|csv|xlsx&includeInactive=
func (h *Handlers) ExportUsers(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))

	exp, err := h.svc.Bulk.ExportUsers(c.Request.Context(), currentUser(c), c.Query("format"), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	switch exp.Format {
	case services.ExportCSV:
		c.Header("Content-Disposition", "attachment; filename="+exp.Filename())
		c.Header("Content-Type", exp.ContentType())
		c.Status(http.StatusOK)
		if err := exp.WriteCSV(c.Writer); err != nil {
			h.log.Error("write csv export", "error", err)
		}
	case services.ExportXLSX:
		var buf bytes.Buffer
		if err := exp.WriteXLSX(&buf); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+exp.Filename())
		c.Data(http.StatusOK, exp.ContentType(), buf.Bytes())
	default:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    exp.Users,
			"meta": gin.H{
				"total":           len(exp.Users),
				"exportedAt":      exp.ExportedAt,
				"includeInactive": exp.IncludeInactive,
			},
		})
	}
}
