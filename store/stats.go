package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/bizsim-server/models"
)

func (r *gormRepo) Overview(ctx context.Context, since time.Time) (*Overview, error) {
	db := r.conn(ctx)
	var o Overview
	counts := []struct {
		dst   *int64
		model interface{}
		scope func(*gorm.DB) *gorm.DB
	}{
		{&o.TotalUsers, &models.User{}, nil},
		{&o.ActiveUsers, &models.User{}, isActive},
		{&o.TotalTeams, &models.Team{}, nil},
		{&o.ActiveTeams, &models.Team{}, isActive},
		{&o.TotalGameSessions, &models.GameSession{}, nil},
		{&o.ActiveGameSessions, &models.GameSession{}, isActive},
		{&o.TotalQuestions, &models.Question{}, isActive},
		{&o.TotalSubmissions, &models.Submission{}, nil},
		{&o.NewUsers, &models.User{}, createdSince(since)},
		{&o.NewTeams, &models.Team{}, createdSince(since)},
		{&o.NewSubmissions, &models.Submission{}, submittedSince(since)},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.scope != nil {
			q = q.Scopes(c.scope)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, translate(err)
		}
	}
	return &o, nil
}

func (r *gormRepo) ActiveQuestionsByCategory(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.conn(ctx).Model(&models.Question{}).
		Select("category_id, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("category_id").
		Scan(&rows).Error
	return rows, translate(err)
}

func isActive(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

func createdSince(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_at >= ?", t)
	}
}

func submittedSince(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("submitted_at >= ?", t)
	}
}
