package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/vnkhanh/bizsim-server/models"
)

func (r *gormRepo) ListGameSessions(ctx context.Context) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := r.conn(ctx).
		Preload("Teams").
		Preload("Rounds", byRoundNumber).
		Preload("CurrentRound").
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, translate(err)
}

func (r *gormRepo) GetGameSession(ctx context.Context, id string) (*models.GameSession, error) {
	var s models.GameSession
	if err := r.conn(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepo) GetGameSessionDetail(ctx context.Context, id string) (*models.GameSession, error) {
	var s models.GameSession
	err := r.conn(ctx).
		Preload("Teams").
		Preload("Teams.Members", activeMembers).
		Preload("Rounds", byRoundNumber).
		Preload("Rounds.Questions", byOrder).
		Preload("Rounds.Questions.Options", byOrder).
		Preload("CurrentRound").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepo) LockGameSession(ctx context.Context, id string) (*models.GameSession, error) {
	var s models.GameSession
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *gormRepo) CreateGameSession(ctx context.Context, s *models.GameSession) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(s).Error)
}

func (r *gormRepo) UpdateGameSession(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.GameSession{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) ListRounds(ctx context.Context, f RoundFilter) ([]models.Round, error) {
	var rounds []models.Round
	q := r.conn(ctx).
		Preload("GameSession").
		Preload("Questions", byOrder).
		Preload("Questions.Options", byOrder)
	if f.GameSessionID != "" {
		q = q.Where("game_session_id = ?", f.GameSessionID)
	}
	err := q.Order("game_session_id DESC").Order("round_number ASC").Find(&rounds).Error
	return rounds, translate(err)
}

func (r *gormRepo) GetRound(ctx context.Context, id string) (*models.Round, error) {
	var round models.Round
	if err := r.conn(ctx).Preload("GameSession").First(&round, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *gormRepo) FindRoundByNumber(ctx context.Context, gameSessionID string, number int) (*models.Round, error) {
	var round models.Round
	err := r.conn(ctx).
		Where("game_session_id = ? AND round_number = ?", gameSessionID, number).
		First(&round).Error
	if err != nil {
		return nil, translate(err)
	}
	return &round, nil
}

func (r *gormRepo) CreateRound(ctx context.Context, round *models.Round) error {
	return translate(r.conn(ctx).Omit(clause.Associations).Create(round).Error)
}

func (r *gormRepo) UpdateRound(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Model(&models.Round{}).Where("id = ?", id).Updates(updates).Error)
}

func (r *gormRepo) DeactivateOtherRounds(ctx context.Context, gameSessionID, exceptID string, at time.Time) error {
	err := r.conn(ctx).Model(&models.Round{}).
		Where("game_session_id = ? AND id <> ? AND is_active = ?", gameSessionID, exceptID, true).
		Updates(map[string]interface{}{"is_active": false, "ended_at": at}).Error
	return translate(err)
}

