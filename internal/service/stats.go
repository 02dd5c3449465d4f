package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/models"
)

const DefaultRecentActivity = 50

type StatsService struct {
	subscribers SubscriberStore
	lists       ListStore
	logs        *activity.Logs
}

func NewStatsService(subscribers SubscriberStore, lists ListStore, logs *activity.Logs) *StatsService {
	return &StatsService{
		subscribers: subscribers,
		lists:       lists,
		logs:        logs,
	}
}

type ListStats struct {
	TotalLists       int                  `json:"total_lists"`
	TotalSubscribers int64                `json:"total_subscribers"`
	Lists            []models.ListSummary `json:"lists"`
}

type EmailStats struct {
	TotalCampaigns   int        `json:"total_campaigns"`
	TotalEmailsSent  int        `json:"total_emails_sent"`
	LastCampaignDate *time.Time `json:"last_campaign_date"`
}

type ExportStats struct {
	TotalSubscribers int64            `json:"total_subscribers"`
	TotalLists       int              `json:"total_lists"`
	ListsBreakdown   map[string]int64 `json:"lists_breakdown"`
}

type Stats struct {
	Lists  ListStats   `json:"lists"`
	Emails EmailStats  `json:"emails"`
	Export ExportStats `json:"export"`
}

func (s *StatsService) ListStats(ctx context.Context) (*ListStats, error) {
	summaries, err := s.lists.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}

	total, err := s.subscribers.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers: %w", err)
	}

	if summaries == nil {
		summaries = []models.ListSummary{}
	}

	return &ListStats{
		TotalLists:       len(summaries),
		TotalSubscribers: total,
		Lists:            summaries,
	}, nil
}

// EmailStats totals the campaign log. Entries trimmed from the log are no longer counted.
func (s *StatsService) EmailStats(ctx context.Context) (*EmailStats, error) {
	campaigns, err := s.logs.Campaigns.All(ctx)
	if err != nil {
		return nil, err
	}

	stats := &EmailStats{TotalCampaigns: len(campaigns)}
	for _, c := range campaigns {
		stats.TotalEmailsSent += c.SentCount
	}
	if len(campaigns) > 0 {
		last := campaigns[len(campaigns)-1].Date
		stats.LastCampaignDate = &last
	}

	return stats, nil
}

func (s *StatsService) ExportStats(ctx context.Context) (*ExportStats, error) {
	lists, err := s.ListStats(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int64, len(lists.Lists))
	for _, l := range lists.Lists {
		breakdown[l.Name] = l.SubscriberCount
	}

	return &ExportStats{
		TotalSubscribers: lists.TotalSubscribers,
		TotalLists:       lists.TotalLists,
		ListsBreakdown:   breakdown,
	}, nil
}

func (s *StatsService) Summary(ctx context.Context) (*Stats, error) {
	lists, err := s.ListStats(ctx)
	if err != nil {
		return nil, err
	}

	emails, err := s.EmailStats(ctx)
	if err != nil {
		return nil, err
	}

	export, err := s.ExportStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{Lists: *lists, Emails: *emails, Export: *export}, nil
}

// RecentActivity returns up to limit activity entries, newest first.
func (s *StatsService) RecentActivity(ctx context.Context, limit int) ([]activity.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentActivity
	}
	return s.logs.Activity.Recent(ctx, limit)
}

// RecentCampaigns returns up to limit campaign entries, newest first.
func (s *StatsService) RecentCampaigns(ctx context.Context, limit int) ([]activity.CampaignEntry, error) {
	if limit <= 0 {
		limit = s.logs.Campaigns.Capacity()
	}
	return s.logs.Campaigns.Recent(ctx, limit)
}
