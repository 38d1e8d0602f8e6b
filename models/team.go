package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID            string       `gorm:"primaryKey;size:36" json:"id"`
	Name          string       `gorm:"size:100;uniqueIndex;not null" json:"name"`
	GameSessionID *string      `gorm:"size:36;index" json:"gameSessionId"`
	GameSession   *GameSession `gorm:"foreignKey:GameSessionID" json:"gameSession,omitempty"`
	TotalScore    int          `gorm:"not null;default:0;index" json:"totalScore"`
	IsActive      bool         `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
	Members       []User       `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Submissions   []Submission `gorm:"foreignKey:TeamID" json:"submissions,omitempty"`

	// MemberCount is filled by leaderboard reads.
	MemberCount *int `gorm:"-" json:"memberCount,omitempty"`
}

func (Team) TableName() string {
	return "teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
