package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoundType string

const (
	RoundIndividual RoundType = "INDIVIDUAL"
	RoundGroup      RoundType = "GROUP"
	RoundMix        RoundType = "MIX"
)

func (t RoundType) Valid() bool {
	switch t {
	case RoundIndividual, RoundGroup, RoundMix:
		return true
	}
	return false
}

// Round: một phần thi trong game session. Tối đa một round active trên mỗi session.
type Round struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	GameSessionID string       `gorm:"size:36;not null;uniqueIndex:idx_rounds_session_number" json:"gameSessionId"`
	GameSession   *GameSession `gorm:"foreignKey:GameSessionID" json:"gameSession,omitempty"`
	RoundNumber   int          `gorm:"not null;uniqueIndex:idx_rounds_session_number" json:"roundNumber"`
	Type          RoundType    `gorm:"size:16;not null" json:"type"`
	Title         string       `gorm:"size:200;not null" json:"title"`
	Description   *string      `gorm:"type:text" json:"description"`
	TimeLimit     *int         `json:"timeLimit"` // phút
	IsActive      bool         `gorm:"not null;index" json:"isActive"`
	IsCompleted   bool         `gorm:"not null" json:"isCompleted"`
	StartedAt     *time.Time   `json:"startedAt"`
	EndedAt       *time.Time   `json:"endedAt"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
	Questions     []Question   `gorm:"foreignKey:RoundID" json:"questions,omitempty"`
}

func (Round) TableName() string {
	return "rounds"
}

func (r *Round) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
