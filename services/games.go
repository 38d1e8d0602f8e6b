package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/bizsim-server/events"
	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

// GameService quản lý game session và round. Một session có tối đa một round active.
type GameService struct {
	*core
}

type CreateGameSessionInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MaxRounds   *int    `json:"maxRounds"`
}

type UpdateGameSessionInput struct {
	Name           *string                `json:"name"`
	Description    utils.Nullable[string] `json:"description"`
	MaxRounds      *int                   `json:"maxRounds"`
	IsActive       *bool                  `json:"isActive"`
	CurrentRoundID utils.Nullable[string] `json:"currentRoundId"`
}

type CreateRoundInput struct {
	GameSessionID string  `json:"gameSessionId"`
	RoundNumber   int     `json:"roundNumber"`
	Type          string  `json:"type"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	TimeLimit     *int    `json:"timeLimit"`
}

type UpdateRoundInput struct {
	Title       *string                `json:"title"`
	Description utils.Nullable[string] `json:"description"`
	TimeLimit   utils.Nullable[int]    `json:"timeLimit"`
	Type        *string                `json:"type"`
	IsCompleted *bool                  `json:"isCompleted"`
}

type roundEvent struct {
	GameSessionID string `json:"gameSessionId"`
	RoundID       string `json:"roundId"`
	RoundNumber   int    `json:"roundNumber"`
}

// ====== game session ======

func (s *GameService) ListSessions(ctx context.Context) ([]models.GameSession, error) {
	return s.repo.ListGameSessions(ctx)
}

func (s *GameService) GetSession(ctx context.Context, id string) (*models.GameSession, error) {
	gs, err := s.repo.GetGameSessionDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, "Game session not found")
	}
	return gs, nil
}

func (s *GameService) CreateSession(ctx context.Context, in CreateGameSessionInput) (*models.GameSession, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation("Game session name is required")
	}
	maxRounds := 1
	if in.MaxRounds != nil {
		if *in.MaxRounds < 1 {
			return nil, ErrValidation("maxRounds must be at least 1")
		}
		maxRounds = *in.MaxRounds
	}

	gs := &models.GameSession{
		Name:        name,
		Description: in.Description,
		MaxRounds:   maxRounds,
	}
	if err := s.repo.CreateGameSession(ctx, gs); err != nil {
		return nil, err
	}
	s.log.Info("game session created", "game_session_id", gs.ID, "max_rounds", gs.MaxRounds)
	return gs, nil
}

// UpdateSession: bật isActive đóng dấu startedAt, tắt đóng dấu endedAt.
func (s *GameService) UpdateSession(ctx context.Context, id string, in UpdateGameSessionInput) (*models.GameSession, error) {
	if _, err := s.repo.GetGameSession(ctx, id); err != nil {
		return nil, notFound(err, "Game session not found")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrValidation("Game session name is required")
		}
		updates["name"] = name
	}
	in.Description.Apply(updates, "description")
	if in.MaxRounds != nil {
		if *in.MaxRounds < 1 {
			return nil, ErrValidation("maxRounds must be at least 1")
		}
		updates["max_rounds"] = *in.MaxRounds
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
		if *in.IsActive {
			updates["started_at"] = s.now()
		} else {
			updates["ended_at"] = s.now()
		}
	}
	if in.CurrentRoundID.Value != nil {
		r, err := s.repo.GetRound(ctx, *in.CurrentRoundID.Value)
		if err != nil {
			return nil, notFound(err, "Round not found")
		}
		if r.GameSessionID != id {
			return nil, ErrValidation("Round does not belong to this game session")
		}
	}
	in.CurrentRoundID.Apply(updates, "current_round_id")

	if err := s.repo.UpdateGameSession(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetGameSession(ctx, id)
}

// StartSession kích hoạt round số 1 và session trong cùng một transaction.
func (s *GameService) StartSession(ctx context.Context, id string) (*models.GameSession, error) {
	var first *models.Round
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.LockGameSession(ctx, id); err != nil {
			return notFound(err, "Game session not found")
		}

		r, err := tx.FindRoundByNumber(ctx, id, 1)
		if errors.Is(err, store.ErrNotFound) {
			return ErrValidation("No rounds found for this game session")
		}
		if err != nil {
			return err
		}
		first = r

		now := s.now()
		if err := tx.DeactivateOtherRounds(ctx, id, r.ID, now); err != nil {
			return err
		}
		err = tx.UpdateRound(ctx, r.ID, map[string]interface{}{
			"is_active":  true,
			"started_at": now,
			"ended_at":   nil,
		})
		if err != nil {
			return err
		}
		return tx.UpdateGameSession(ctx, id, map[string]interface{}{
			"is_active":        true,
			"started_at":       now,
			"current_round_id": r.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("game session started", "game_session_id", id, "round_id", first.ID)
	s.publish(ctx, events.GameSessionStarted, roundEvent{GameSessionID: id, RoundID: first.ID, RoundNumber: first.RoundNumber})
	return s.repo.GetGameSession(ctx, id)
}

// ====== round ======

func (s *GameService) ListRounds(ctx context.Context, gameSessionID string) ([]models.Round, error) {
	return s.repo.ListRounds(ctx, store.RoundFilter{GameSessionID: gameSessionID})
}

func (s *GameService) CreateRound(ctx context.Context, in CreateRoundInput) (*models.Round, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.GameSessionID == "" || in.RoundNumber == 0 || in.Type == "" || in.Title == "" {
		return nil, ErrValidation("Missing required fields")
	}
	if in.RoundNumber < 1 {
		return nil, ErrValidation("roundNumber must be positive")
	}
	rt := models.RoundType(in.Type)
	if !rt.Valid() {
		return nil, ErrValidation("Invalid round type")
	}
	if in.TimeLimit != nil && *in.TimeLimit < 0 {
		return nil, ErrValidation("timeLimit cannot be negative")
	}
	if _, err := s.repo.GetGameSession(ctx, in.GameSessionID); err != nil {
		return nil, notFound(err, "Game session not found")
	}

	if _, err := s.repo.FindRoundByNumber(ctx, in.GameSessionID, in.RoundNumber); err == nil {
		return nil, ErrConflict("Round number already exists in this game session")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	r := &models.Round{
		GameSessionID: in.GameSessionID,
		RoundNumber:   in.RoundNumber,
		Type:          rt,
		Title:         in.Title,
		Description:   in.Description,
		TimeLimit:     in.TimeLimit,
	}
	if err := s.repo.CreateRound(ctx, r); err != nil {
		return nil, conflict(err, "Round number already exists in this game session")
	}
	s.log.Info("round created", "round_id", r.ID, "game_session_id", r.GameSessionID, "round_number", r.RoundNumber)
	return s.repo.GetRound(ctx, r.ID)
}

func (s *GameService) UpdateRound(ctx context.Context, id string, in UpdateRoundInput) (*models.Round, error) {
	if _, err := s.repo.GetRound(ctx, id); err != nil {
		return nil, notFound(err, "Round not found")
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrValidation("Round title is required")
		}
		updates["title"] = title
	}
	in.Description.Apply(updates, "description")
	if in.TimeLimit.Value != nil && *in.TimeLimit.Value < 0 {
		return nil, ErrValidation("timeLimit cannot be negative")
	}
	in.TimeLimit.Apply(updates, "time_limit")
	if in.Type != nil {
		if !models.RoundType(*in.Type).Valid() {
			return nil, ErrValidation("Invalid round type")
		}
		updates["type"] = *in.Type
	}
	if in.IsCompleted != nil {
		updates["is_completed"] = *in.IsCompleted
	}

	if err := s.repo.UpdateRound(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.repo.GetRound(ctx, id)
}

// ActivateRound tắt mọi round khác của session rồi bật round id, với row session bị khoá.
// Sau khi xong, round id là round active duy nhất của session.
func (s *GameService) ActivateRound(ctx context.Context, id string) (*models.Round, error) {
	var activated *models.Round
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		r, err := tx.GetRound(ctx, id)
		if err != nil {
			return notFound(err, "Round not found")
		}
		if _, err := tx.LockGameSession(ctx, r.GameSessionID); err != nil {
			return notFound(err, "Game session not found")
		}

		now := s.now()
		if err := tx.DeactivateOtherRounds(ctx, r.GameSessionID, r.ID, now); err != nil {
			return err
		}
		err = tx.UpdateRound(ctx, r.ID, map[string]interface{}{
			"is_active":  true,
			"started_at": now,
			"ended_at":   nil,
		})
		if err != nil {
			return err
		}
		err = tx.UpdateGameSession(ctx, r.GameSessionID, map[string]interface{}{"current_round_id": r.ID})
		if err != nil {
			return err
		}

		activated, err = tx.GetRound(ctx, r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("round activated", "round_id", activated.ID, "game_session_id", activated.GameSessionID)
	s.publish(ctx, events.RoundActivated, roundEvent{
		GameSessionID: activated.GameSessionID,
		RoundID:       activated.ID,
		RoundNumber:   activated.RoundNumber,
	})
	return activated, nil
}
