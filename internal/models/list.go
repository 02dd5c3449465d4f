package models

import "time"

// List is the tag subscribers are grouped under.
type List struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (List) TableName() string {
	return "lists"
}

// ListSummary is a list with its derived subscriber count
type ListSummary struct {
	List
	SubscriberCount int64 `json:"subscriber_count"`
}
