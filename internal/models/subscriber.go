package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscriber is one accepted form submission. Records are never updated in place.
type Subscriber struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Surname      string    `gorm:"size:100;not null" json:"surname"`
	Email        string    `gorm:"size:255;index;not null" json:"email"`
	SubscribedAt time.Time `gorm:"index;not null" json:"subscribed_at"`
	SourceIP     string    `gorm:"size:45" json:"source_ip"`
	Lists        []List    `gorm:"many2many:subscriber_lists;" json:"lists,omitempty"`
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Subscriber) TableName() string {
	return "subscribers"
}

// ListNames returns the names of the lists the subscriber is tagged with.
func (s *Subscriber) ListNames() []string {
	names := make([]string, 0, len(s.Lists))
	for _, l := range s.Lists {
		names = append(names, l.Name)
	}
	return names
}
