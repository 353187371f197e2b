package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InputList stores an ordered list of operands as a JSON column.
type InputList []float64

// Value implements driver.Valuer.
func (l InputList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *InputList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("unsupported inputs column type %T", value)
	}
}

// Calculation is a persisted arithmetic operation owned by a user. Result is
// always derived server-side from Type and Inputs, never taken from a client.
type Calculation struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Type      string    `json:"type" gorm:"size:32;not null"`
	Inputs    InputList `json:"inputs" gorm:"type:json;not null"`
	Result    float64   `json:"result" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Calculation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
