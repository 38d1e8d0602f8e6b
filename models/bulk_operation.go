package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BulkStatus string

const (
	BulkPending    BulkStatus = "PENDING"
	BulkProcessing BulkStatus = "PROCESSING"
	BulkCompleted  BulkStatus = "COMPLETED"
	BulkFailed     BulkStatus = "FAILED"
)

func (s BulkStatus) Valid() bool {
	switch s {
	case BulkPending, BulkProcessing, BulkCompleted, BulkFailed:
		return true
	}
	return false
}

// Terminal: COMPLETED hoặc FAILED thì đóng dấu completedAt.
func (s BulkStatus) Terminal() bool {
	return s == BulkCompleted || s == BulkFailed
}

const (
	BulkImportUsers = "IMPORT_USERS"
	BulkExportUsers = "EXPORT_USERS"
)

type BulkOperation struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Type           string         `gorm:"size:50;not null;index" json:"type"`
	Status         BulkStatus     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	TotalItems     int            `gorm:"not null;default:0" json:"totalItems"`
	ProcessedItems int            `gorm:"not null;default:0" json:"processedItems"`
	FailedItems    int            `gorm:"not null;default:0" json:"failedItems"`
	Filename       *string        `gorm:"size:255" json:"filename"`
	ResultData     datatypes.JSON `json:"resultData"`
	InitiatedBy    string         `gorm:"size:36;not null;index" json:"initiatedBy"`
	User           *User          `gorm:"foreignKey:InitiatedBy" json:"user,omitempty"`
	StartedAt      time.Time      `gorm:"not null;index" json:"startedAt"`
	CompletedAt    *time.Time     `json:"completedAt"`
}

func (BulkOperation) TableName() string {
	return "bulk_operations"
}

func (b *BulkOperation) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.StartedAt.IsZero() {
		b.StartedAt = time.Now()
	}
	return nil
}
