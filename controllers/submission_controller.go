package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/services"
)

// optionIDs nhận cả một id đơn lẻ lẫn mảng id.
type optionIDs []string

func (o *optionIDs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*o = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		if one == "" {
			*o = nil
			return nil
		}
		*o = optionIDs{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*o = many
	return nil
}

type submitRequest struct {
	QuestionID        string    `json:"questionId"`
	SelectedOptions   optionIDs `json:"selectedOptions"`
	Reasoning         string    `json:"reasoning"`
	IsGroupSubmission bool      `json:"isGroupSubmission"`
	IsIndividualPhase bool      `json:"isIndividualPhase"`
}

// POST /api/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	var req submitRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.svc.Submissions.Submit(c.Request.Context(), currentUser(c), services.SubmitInput{
		QuestionID:        req.QuestionID,
		SelectedOptions:   req.SelectedOptions,
		Reasoning:         req.Reasoning,
		IsGroupSubmission: req.IsGroupSubmission,
		IsIndividualPhase: req.IsIndividualPhase,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// GET /api/submissions?questionId=&roundId=&userId=&teamId=
func (h *Handlers) ListSubmissions(c *gin.Context) {
	subs, err := h.svc.Submissions.List(c.Request.Context(), currentUser(c), services.SubmissionFilter{
		QuestionID: c.Query("questionId"),
		RoundID:    c.Query("roundId"),
		UserID:     c.Query("userId"),
		TeamID:     c.Query("teamId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}
