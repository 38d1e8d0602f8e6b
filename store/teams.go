package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/vnkhanh/bizsim-server/models"
)

func activeMembers(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("name ASC")
}

func (r *gormRepo) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := r.conn(ctx).
		Preload("Members", activeMembers).
		Preload("GameSession").
		Order("total_score DESC").
		Find(&teams).Error
	return teams, translate(err)
}

func (r *gormRepo) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := r.conn(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormRepo) GetTeamDetail(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	err := r.conn(ctx).
		Preload("Members", activeMembers).
		Preload("GameSession").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submitted_at DESC")
		}).
		Preload("Submissions.User").
		Preload("Submissions.Question").
		Preload("Submissions.Round").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormRepo) FindTeamByName(ctx context.Context, name string) (*models.Team, error) {
	var t models.Team
	if err := r.conn(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *gormRepo) CreateTeam(ctx context.Context, t *models.Team) error {
	return translate(r.conn(ctx).Omit("GameSession", "Members", "Submissions").Create(t).Error)
}

func (r *gormRepo) UpdateTeam(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.Team{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) AddTeamScore(ctx context.Context, teamID string, delta int) error {
	err := r.conn(ctx).Model(&models.Team{}).
		Where("id = ?", teamID).
		UpdateColumn("total_score", gorm.Expr("total_score + ?", delta)).Error
	return translate(err)
}

func (r *gormRepo) UnlinkTeamMembers(ctx context.Context, teamID string) error {
	err := r.conn(ctx).Model(&models.User{}).
		Where("team_id = ?", teamID).
		Updates(map[string]interface{}{"team_id": nil, "is_group_leader": false}).Error
	return translate(err)
}

func (r *gormRepo) DeleteTeam(ctx context.Context, id string) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&models.Team{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) ListTeamRanking(ctx context.Context, limit int) ([]models.Team, error) {
	var teams []models.Team
	err := r.conn(ctx).
		Preload("Members", activeMembers).
		Where("is_active = ?", true).
		Order("total_score DESC").
		Order("name ASC").
		Limit(limit).
		Find(&teams).Error
	return teams, translate(err)
}
