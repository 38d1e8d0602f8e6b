package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vnkhanh/bizsim-server/models"
	"github.com/vnkhanh/bizsim-server/store"
	"github.com/vnkhanh/bizsim-server/utils"
)

type UserService struct {
	*core
}

type CreateUserInput struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	Role          string  `json:"role"`
	TeamID        *string `json:"teamId"`
	IsGroupLeader bool    `json:"isGroupLeader"`
}

type UpdateUserInput struct {
	Name          *string                `json:"name"`
	Email         *string                `json:"email"`
	Password      *string                `json:"password"`
	Role          *string                `json:"role"`
	TeamID        utils.Nullable[string] `json:"teamId"`
	IsGroupLeader *bool                  `json:"isGroupLeader"`
	IsActive      *bool                  `json:"isActive"`
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUserDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrValidation("Missing required fields")
	}

	role := models.RoleStudent
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			return nil, ErrValidation("Invalid role")
		}
	}

	if _, err := s.repo.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrConflict("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if in.TeamID != nil && *in.TeamID != "" {
		if _, err := s.repo.GetTeam(ctx, *in.TeamID); err != nil {
			return nil, notFound(err, "Team not found")
		}
	} else {
		in.TeamID = nil
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		Password:      hash,
		Role:          role,
		TeamID:        in.TeamID,
		IsGroupLeader: in.IsGroupLeader,
		IsActive:      true,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, conflict(err, "User already exists")
	}
	s.log.Info("user created", "user_id", u.ID, "role", u.Role)
	return s.repo.GetUser(ctx, u.ID)
}

// Update chỉ ghi các field client gửi lên.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return nil, notFound(err, "User not found")
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, ErrValidation("Email cannot be empty")
		}
		other, err := s.repo.FindUserByEmail(ctx, email)
		switch {
		case err == nil && other.ID != id:
			return nil, ErrConflict("User already exists")
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
		updates["email"] = email
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if in.Role != nil {
		if !models.Role(*in.Role).Valid() {
			return nil, ErrValidation("Invalid role")
		}
		updates["role"] = *in.Role
	}
	if in.TeamID.Set && in.TeamID.Value != nil && *in.TeamID.Value == "" {
		in.TeamID = utils.Null[string]()
	}
	if in.TeamID.Value != nil {
		if _, err := s.repo.GetTeam(ctx, *in.TeamID.Value); err != nil {
			return nil, notFound(err, "Team not found")
		}
	}
	in.TeamID.Apply(updates, "team_id")
	if in.IsGroupLeader != nil {
		updates["is_group_leader"] = *in.IsGroupLeader
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if err := s.repo.UpdateUser(ctx, id, updates); err != nil {
		return nil, conflict(err, "User already exists")
	}
	return s.repo.GetUser(ctx, id)
}

// Deactivate là soft delete: user không bao giờ bị xoá khỏi DB.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return notFound(err, "User not found")
	}
	if err := s.repo.UpdateUser(ctx, id, map[string]interface{}{"is_active": false}); err != nil {
		return err
	}
	s.log.Info("user deactivated", "user_id", id)
	return nil
}
