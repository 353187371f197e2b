package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	FirstName    string     `json:"first_name" gorm:"size:50;not null"`
	LastName     string     `json:"last_name" gorm:"size:50;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsActive     bool       `json:"is_active" gorm:"default:true;index"`
	IsVerified   bool       `json:"is_verified" gorm:"default:false"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Calculations []Calculation `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
