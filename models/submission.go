package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Submission struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID            string                      `gorm:"size:36;not null;index" json:"userId"`
	User              *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	QuestionID        string                      `gorm:"size:36;not null;index" json:"questionId"`
	Question          *Question                   `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	RoundID           string                      `gorm:"size:36;not null;index" json:"roundId"`
	Round             *Round                      `gorm:"foreignKey:RoundID" json:"round,omitempty"`
	TeamID            *string                     `gorm:"size:36;index" json:"teamId"`
	Team              *Team                       `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	SelectedOptions   datatypes.JSONSlice[string] `json:"selectedOptions"`
	Reasoning         string                      `gorm:"type:text;not null" json:"reasoning"`
	Points            int                         `gorm:"not null;default:0" json:"points"`
	IsGroupSubmission bool                        `gorm:"not null" json:"isGroupSubmission"`
	IsIndividualPhase bool                        `gorm:"not null" json:"isIndividualPhase"`
	SubmittedAt       time.Time                   `gorm:"not null;index" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	return nil
}
