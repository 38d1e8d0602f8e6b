package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/bizsim-server/models"
)

func (r *gormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.conn(ctx).
		Preload("Team").
		Order("role DESC").
		Order("created_at DESC").
		Find(&users).Error
	return users, translate(err)
}

func (r *gormRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).Preload("Team").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormRepo) GetUserDetail(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.conn(ctx).
		Preload("Team").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at DESC")
		}).
		Preload("Submissions.Question").
		Preload("Submissions.Round").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.conn(ctx).Preload("Team").Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *gormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.conn(ctx).Omit("Team", "Submissions").Create(u).Error)
}

func (r *gormRepo) UpdateUser(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) AddIndividualScore(ctx context.Context, userID string, delta int) error {
	err := r.conn(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("individual_score", gorm.Expr("individual_score + ?", delta)).Error
	return translate(err)
}

func (r *gormRepo) ListStudentRanking(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.conn(ctx).
		Preload("Team").
		Where("role = ? AND is_active = ?", models.RoleStudent, true).
		Order("individual_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	return users, translate(err)
}

func (r *gormRepo) ListUsersForExport(ctx context.Context, includeInactive bool) ([]models.User, error) {
	var users []models.User
	q := r.conn(ctx).Preload("Team")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("role ASC").Order("name ASC").Find(&users).Error
	return users, translate(err)
}
