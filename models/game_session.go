package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameSession struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	Name           string     `gorm:"size:200;not null" json:"name"`
	Description    *string    `gorm:"type:text" json:"description"`
	MaxRounds      int        `gorm:"not null;default:1" json:"maxRounds"`
	IsActive       bool       `gorm:"not null" json:"isActive"`
	CurrentRoundID *string    `gorm:"size:36" json:"currentRoundId"`
	CurrentRound   *Round     `gorm:"foreignKey:CurrentRoundID" json:"currentRound,omitempty"`
	StartedAt      *time.Time `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	Rounds         []Round    `gorm:"foreignKey:GameSessionID" json:"rounds,omitempty"`
	Teams          []Team     `gorm:"foreignKey:GameSessionID" json:"teams,omitempty"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

func (s *GameSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
