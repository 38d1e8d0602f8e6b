package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/vnkhanh/bizsim-server/models"
)

func (r *gormRepo) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	var subs []models.Submission
	q := r.conn(ctx).
		Preload("User").
		Preload("Question").
		Preload("Question.Options", byOrder).
		Preload("Round").
		Preload("Team")
	if f.QuestionID != "" {
		q = q.Where("question_id = ?", f.QuestionID)
	}
	if f.RoundID != "" {
		q = q.Where("round_id = ?", f.RoundID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.TeamID != "" {
		q = q.Where("team_id = ?", f.TeamID)
	}
	err := q.Order("submitted_at DESC").Find(&subs).Error
	return subs, translate(err)
}

func (r *gormRepo) CreateSubmission(ctx context.Context, s *models.Submission) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *gormRepo) SubmissionTotals(ctx context.Context) (map[string]SubmissionTotal, error) {
	var rows []SubmissionTotal
	err := r.conn(ctx).Model(&models.Submission{}).
		Select("user_id, COALESCE(SUM(points), 0) AS points, COUNT(*) AS count").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[string]SubmissionTotal, len(rows))
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}

func (r *gormRepo) SubmissionTimesSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var subs []models.Submission
	err := r.conn(ctx).
		Select("id", "submitted_at").
		Where("submitted_at >= ?", since).
		Order("submitted_at ASC").
		Find(&subs).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]time.Time, len(subs))
	for i := range subs {
		out[i] = subs[i].SubmittedAt
	}
	return out, nil
}
