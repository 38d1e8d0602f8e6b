package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionOption: điểm có thể âm (phương án bị trừ điểm).
type QuestionOption struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	QuestionID string    `gorm:"size:36;not null;index" json:"questionId"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Points     int       `gorm:"not null;default:0" json:"points"`
	IsCorrect  bool      `gorm:"not null" json:"isCorrect"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}

func (o *QuestionOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
