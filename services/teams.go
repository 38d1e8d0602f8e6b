package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

type TeamService struct {
	*core
}

type CreateTeamInput struct {
	Name          string  `json:"name"`
	GameSessionID *string `json:"gameSessionId"`
}

type UpdateTeamInput struct {
	Name          *string                `json:"name"`
	GameSessionID utils.Nullable[string] `json:"gameSessionId"`
	TotalScore    *int                   `json:"totalScore"`
	IsActive      *bool                  `json:"isActive"`
}

func (s *TeamService) List(ctx context.Context) ([]models.Team, error) {
	return s.repo.ListTeams(ctx)
}

func (s *TeamService) Get(ctx context.Context, id string) (*models.Team, error) {
	t, err := s.repo.GetTeamDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, "Team not found")
	}
	return t, nil
}

func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrValidation("Team name is required")
	}
	if err := s.checkNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	sessionID := in.GameSessionID
	if sessionID != nil && *sessionID == "" {
		sessionID = nil
	}
	if sessionID != nil {
		if _, err := s.repo.GetGameSession(ctx, *sessionID); err != nil {
			return nil, notFound(err, "Game session not found")
		}
	}

	t := &models.Team{Name: name, GameSessionID: sessionID, IsActive: true}
	if err := s.repo.CreateTeam(ctx, t); err != nil {
		return nil, conflict(err, "Team name already exists")
	}
	s.log.Info("team created", "team_id", t.ID, "name", t.Name)
	return t, nil
}

func (s *TeamService) Update(ctx context.Context, id string, in UpdateTeamInput) (*models.Team, error) {
	if _, err := s.repo.GetTeam(ctx, id); err != nil {
		return nil, notFound(err, "Team not found")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrValidation("Team name is required")
		}
		if err := s.checkNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if in.GameSessionID.Set && in.GameSessionID.Value != nil && *in.GameSessionID.Value == "" {
		in.GameSessionID = utils.Null[string]()
	}
	if in.GameSessionID.Value != nil {
		if _, err := s.repo.GetGameSession(ctx, *in.GameSessionID.Value); err != nil {
			return nil, notFound(err, "Game session not found")
		}
	}
	in.GameSessionID.Apply(updates, "game_session_id")
	if in.TotalScore != nil {
		updates["total_score"] = *in.TotalScore
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if err := s.repo.UpdateTeam(ctx, id, updates); err != nil {
		return nil, conflict(err, "Team name already exists")
	}
	return s.repo.GetTeamDetail(ctx, id)
}

// Delete gỡ thành viên khỏi team rồi xoá hẳn team, trong một transaction.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		if _, err := tx.GetTeam(ctx, id); err != nil {
			return notFound(err, "Team not found")
		}
		if err := tx.UnlinkTeamMembers(ctx, id); err != nil {
			return err
		}
		return notFound(tx.DeleteTeam(ctx, id), "Team not found")
	})
	if err != nil {
		return err
	}
	s.log.Info("team deleted", "team_id", id)
	return nil
}

func (s *TeamService) checkNameFree(ctx context.Context, name, selfID string) error {
	other, err := s.repo.FindTeamByName(ctx, name)
	switch {
	case err == nil && other.ID != selfID:
		return ErrConflict("Team name already exists")
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}
	return nil
}
