package activity

import (
	"context"
	"time"
)

const (
	CampaignLogOption = "ml_bulk_email_logs"
	ActivityLogOption = "ml_activity_logs"

	DefaultCampaignCap = 100
	DefaultActivityCap = 500
)

// Activity actions
const (
	ActionSubscription = "subscription"
	ActionBulkEmail    = "bulk_email"
	ActionExport       = "export"
)

// CampaignEntry records one bulk-email send.
// SentCount never exceeds TotalCount.
type CampaignEntry struct {
	Date       time.Time `json:"date"`
	ListID     uint      `json:"list_id"`
	Subject    string    `json:"subject"`
	SentCount  int       `json:"sent_count"`
	TotalCount int       `json:"total_count"`
	UserID     string    `json:"user_id"`
}

type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	UserID    string    `json:"user_id,omitempty"`
	IP        string    `json:"ip"`
}

// Logs bundles the two bounded logs kept in the option store.
type Logs struct {
	Campaigns *BoundedLog[CampaignEntry]
	Activity  *BoundedLog[ActivityEntry]
	now       func() time.Time
}

func NewLogs(store OptionStore, campaignCap, activityCap int) *Logs {
	if campaignCap <= 0 {
		campaignCap = DefaultCampaignCap
	}
	if activityCap <= 0 {
		activityCap = DefaultActivityCap
	}

	return &Logs{
		Campaigns: NewBoundedLog[CampaignEntry](store, CampaignLogOption, campaignCap),
		Activity:  NewBoundedLog[ActivityEntry](store, ActivityLogOption, activityCap),
		now:       time.Now,
	}
}

// Record appends an activity entry stamped with the current time.
func (l *Logs) Record(ctx context.Context, action, details, userID, ip string) error {
	return l.Activity.Append(ctx, ActivityEntry{
		Timestamp: l.now(),
		Action:    action,
		Details:   details,
		UserID:    userID,
		IP:        ip,
	})
}
