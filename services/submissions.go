package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnkhanh/bizsim-server/events"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

// SubmissionService chấm điểm câu trả lời và cộng vào điểm cá nhân hoặc điểm team.
type SubmissionService struct {
	*core
}

type SubmitInput struct {
	QuestionID        string
	SelectedOptions   []string
	Reasoning         string
	IsGroupSubmission bool
	IsIndividualPhase bool
}

type SubmissionFilter = store.SubmissionFilter

type submissionEvent struct {
	SubmissionID      string  `json:"submissionId"`
	UserID            string  `json:"userId"`
	TeamID            *string `json:"teamId"`
	QuestionID        string  `json:"questionId"`
	RoundID           string  `json:"roundId"`
	Points            int     `json:"points"`
	IsGroupSubmission bool    `json:"isGroupSubmission"`
	CreditedTo        string  `json:"creditedTo"` // individual | team
}

// Submit kiểm tra theo thứ tự: thiếu field, câu hỏi, số từ, round active, quyền nhóm.
// Bản ghi submission và phần cộng điểm nằm trong cùng một transaction.
// Nộp lại cùng câu hỏi tạo bản ghi mới và cộng dồn điểm.
func (s *SubmissionService) Submit(ctx context.Context, user *models.User, in SubmitInput) (*models.Submission, error) {
	selected := make([]string, 0, len(in.SelectedOptions))
	for _, id := range in.SelectedOptions {
		if id = strings.TrimSpace(id); id != "" {
			selected = append(selected, id)
		}
	}
	// reasoning chỉ gồm khoảng trắng không tính là thiếu; nó có 0 từ và do minReasoningWords quyết định
	if in.QuestionID == "" || len(selected) == 0 || in.Reasoning == "" {
		return nil, ErrValidation("Missing required fields")
	}

	q, err := s.repo.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return nil, notFound(err, "Question not found")
	}
	if utils.CountWords(in.Reasoning) < q.MinReasoningWords {
		return nil, ErrValidation(fmt.Sprintf("Reasoning must be at least %d words", q.MinReasoningWords))
	}
	if q.Round == nil || !q.Round.IsActive {
		return nil, ErrValidation("Round is not active")
	}
	if q.Round.Type == models.RoundGroup && !user.IsGroupLeader && in.IsGroupSubmission {
		return nil, ErrForbidden("Only group leaders can submit for group rounds")
	}

	points := Score(q.Options, selected)
	teamLedger := in.IsGroupSubmission && user.TeamID != nil

	sub := &models.Submission{
		UserID:            user.ID,
		QuestionID:        q.ID,
		RoundID:           q.RoundID,
		TeamID:            user.TeamID,
		SelectedOptions:   selected,
		Reasoning:         in.Reasoning,
		Points:            points,
		IsGroupSubmission: in.IsGroupSubmission,
		IsIndividualPhase: in.IsIndividualPhase,
		SubmittedAt:       s.now(),
	}

	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		if err := tx.CreateSubmission(ctx, sub); err != nil {
			return err
		}
		if teamLedger {
			return tx.AddTeamScore(ctx, *user.TeamID, points)
		}
		return tx.AddIndividualScore(ctx, user.ID, points)
	})
	if err != nil {
		return nil, fmt.Errorf("record submission: %w", err)
	}

	credited := "individual"
	if teamLedger {
		credited = "team"
	}
	s.log.Info("submission recorded",
		"submission_id", sub.ID,
		"user_id", user.ID,
		"question_id", q.ID,
		"points", points,
		"credited_to", credited,
	)
	s.metrics.SubmissionRecorded(string(q.Round.Type), teamLedger, points)
	s.publish(ctx, events.SubmissionCreated, submissionEvent{
		SubmissionID:      sub.ID,
		UserID:            user.ID,
		TeamID:            user.TeamID,
		QuestionID:        q.ID,
		RoundID:           q.RoundID,
		Points:            points,
		IsGroupSubmission: in.IsGroupSubmission,
		CreditedTo:        credited,
	})

	sub.User = user
	sub.Question = q
	sub.Round = q.Round
	return sub, nil
}

// Score cộng điểm các phương án có id nằm trong selected; id lạ được bỏ qua.
// Mỗi phương án chỉ được tính một lần.
func Score(options []models.QuestionOption, selected []string) int {
	picked := make(map[string]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}
	total := 0
	for _, o := range options {
		if picked[o.ID] {
			total += o.Points
		}
	}
	return total
}

// List: user không phải admin chỉ thấy submission của chính mình.
func (s *SubmissionService) List(ctx context.Context, caller *models.User, f SubmissionFilter) ([]models.Submission, error) {
	if caller.Role != models.RoleAdmin {
		f.UserID = caller.ID
	}
	return s.repo.ListSubmissions(ctx, f)
}
