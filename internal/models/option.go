package models

import (
	"time"

	"gorm.io/datatypes"
)

// Option is a named serialized value, used for the bounded logs.
type Option struct {
	Name      string         `gorm:"primaryKey;size:191" json:"name"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Option) TableName() string {
	return "options"
}
