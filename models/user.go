package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

type User struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	Name            string       `gorm:"size:100" json:"name"`
	Email           string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password        string       `gorm:"size:255;not null" json:"-"`
	Role            Role         `gorm:"size:16;not null;default:'STUDENT';index" json:"role"`
	TeamID          *string      `gorm:"size:36;index" json:"teamId"`
	Team            *Team        `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	IsGroupLeader   bool         `gorm:"not null" json:"isGroupLeader"`
	IndividualScore int          `gorm:"not null;default:0" json:"individualScore"`
	IsActive        bool         `gorm:"not null;index" json:"isActive"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
	Submissions     []Submission `gorm:"foreignKey:UserID" json:"submissions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
