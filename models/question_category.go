package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategoryColor      = "#3B82F6"
	DefaultTagColor           = "#10B981"
	UncategorizedColor        = "#6B7280"
	UncategorizedCategoryName = "Uncategorized"
)

type QuestionCategory struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:16;not null" json:"color"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	QuestionCount *int64 `gorm:"-" json:"questionCount,omitempty"`
}

func (QuestionCategory) TableName() string {
	return "question_categories"
}

func (c *QuestionCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type QuestionTag struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:16;not null" json:"color"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	QuestionCount *int64 `gorm:"-" json:"questionCount,omitempty"`
}

func (QuestionTag) TableName() string {
	return "question_tags"
}

func (t *QuestionTag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
