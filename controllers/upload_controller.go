package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/services"
)

func formUpload(c *gin.Context) (services.UploadInput, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return services.UploadInput{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return services.UploadInput{}, nil, false
	}

	in := services.UploadInput{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}
	if d, ok := c.GetPostForm("description"); ok {
		in.Description = &d
	}
	return in, func() { f.Close() }, true
}

// POST /api/upload/case-file
func (h *Handlers) UploadCaseFile(c *gin.Context) {
	in, done, ok := formUpload(c)
	if !ok {
		return
	}
	defer done()

	cf, err := h.svc.CaseFiles.UploadCaseFile(c.Request.Context(), currentUser(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Case file uploaded successfully",
		"caseFile": cf,
	})
}

// POST /api/upload
func (h *Handlers) UploadFile(c *gin.Context) {
	in, done, ok := formUpload(c)
	if !ok {
		return
	}
	defer done()

	stored, err := h.svc.CaseFiles.Upload(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"filename": stored.Filename,
		"url":      stored.URL,
		"size":     stored.Size,
		"type":     stored.ContentType,
	})
}

// GET /api/files/*path
func (h *Handlers) ServeFile(c *gin.Context) {
	rc, contentType, err := h.svc.CaseFiles.Open(c.Request.Context(), c.Param("path"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=31536000",
	})
}

/* ========== case file metadata ========== */

// GET /api/case-files
func (h *Handlers) ListCaseFiles(c *gin.Context) {
	files, err := h.svc.CaseFiles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// POST /api/case-files
func (h *Handlers) RegisterCaseFile(c *gin.Context) {
	var req services.RegisterCaseFileInput
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.CaseFiles.Register(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// PUT /api/case-files/:id
func (h *Handlers) UpdateCaseFile(c *gin.Context) {
	var req services.UpdateCaseFileInput
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.CaseFiles.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DELETE /api/case-files/:id
func (h *Handlers) DeleteCaseFile(c *gin.Context) {
	if err := h.svc.CaseFiles.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Case file deactivated successfully"})
}
