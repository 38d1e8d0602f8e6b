package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	MultiSelect    QuestionType = "MULTI_SELECT"
)

func (t QuestionType) Valid() bool {
	return t == MultipleChoice || t == MultiSelect
}

const DefaultMinReasoningWords = 15

type Question struct {
	ID                string            `gorm:"primaryKey;size:36" json:"id"`
	RoundID           string            `gorm:"size:36;not null;index" json:"roundId"`
	Round             *Round            `gorm:"foreignKey:RoundID" json:"round,omitempty"`
	Title             string            `gorm:"size:255;not null" json:"title"`
	Description       string            `gorm:"type:text;not null" json:"description"`
	CaseFileURL       *string           `gorm:"column:case_file_url;type:text" json:"caseFileUrl"`
	CaseFileID        *string           `gorm:"size:36;index" json:"caseFileId"`
	CaseFile          *CaseFile         `gorm:"foreignKey:CaseFileID" json:"caseFile,omitempty"`
	CategoryID        *string           `gorm:"size:36;index" json:"categoryId"`
	Category          *QuestionCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	QuestionType      QuestionType      `gorm:"size:32;not null;default:'MULTIPLE_CHOICE'" json:"questionType"`
	MinReasoningWords int               `gorm:"not null" json:"minReasoningWords"`
	Order             int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive          bool              `gorm:"not null;index" json:"isActive"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
	Options           []QuestionOption  `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	Tags              []QuestionTag     `gorm:"many2many:question_tag_relations;" json:"tags,omitempty"`

	SubmissionCount *int64 `gorm:"-" json:"submissionCount,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}
