package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseFile struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	OriginalName string    `gorm:"size:255;not null" json:"originalName"`
	Filepath     string    `gorm:"type:text;not null" json:"filepath"`
	Filesize     int64     `gorm:"not null;default:0" json:"filesize"`
	MimeType     string    `gorm:"size:150;not null" json:"mimeType"`
	URL          string    `gorm:"column:url;type:text;not null" json:"url"`
	Description  *string   `gorm:"type:text" json:"description"`
	UploadedBy   string    `gorm:"size:36;not null;index" json:"uploadedBy"`
	Uploader     *User     `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	QuestionCount *int64 `gorm:"-" json:"questionCount,omitempty"`
}

func (CaseFile) TableName() string {
	return "case_files"
}

func (f *CaseFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
