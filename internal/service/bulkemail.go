package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/mail"
	"github.com/aman-churiwal/mailing-lists/internal/metrics"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"go.uber.org/zap"
)

var (
	ErrCampaignIncomplete = errors.New("list, sender, subject and body are required")
	ErrInvalidSender      = errors.New("invalid sender address")
	ErrListNotFound       = errors.New("list not found")
)

// Campaign is one bulk send composed in the admin.
type Campaign struct {
	ListID      uint   `json:"list_id"`
	FromName    string `json:"from_name"`
	FromAddress string `json:"from_address"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	BodyFormat  string `json:"body_format"`

	// Preview sends a single personalized copy to the sender instead of the list
	Preview bool `json:"preview"`

	UserID string `json:"-"`
	IP     string `json:"-"`
}

type BulkResult struct {
	ListID  uint `json:"list_id"`
	Sent    int  `json:"sent_count"`
	Total   int  `json:"total_count"`
	Preview bool `json:"preview"`
}

type BulkEmailService struct {
	subscribers SubscriberStore
	lists       ListStore
	transport   mail.Transport
	logs        *activity.Logs
	pause       time.Duration
	logger      *zap.Logger
	now         func() time.Time
	sleep       func(time.Duration)
}

func NewBulkEmailService(
	subscribers SubscriberStore,
	lists ListStore,
	transport mail.Transport,
	logs *activity.Logs,
	pause time.Duration,
	logger *zap.Logger,
) *BulkEmailService {
	return &BulkEmailService{
		subscribers: subscribers,
		lists:       lists,
		transport:   transport,
		logs:        logs,
		pause:       pause,
		logger:      logger.Named("bulk_email"),
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Send delivers the campaign to every subscriber of the list, one message at a time,
// pausing between sends. Once started the run is not cancelled by ctx.
// Individual failures are counted, not retried.
func (s *BulkEmailService) Send(ctx context.Context, c Campaign) (*BulkResult, error) {
	c.Subject = strings.TrimSpace(c.Subject)
	c.FromName = strings.TrimSpace(c.FromName)
	c.FromAddress = strings.TrimSpace(c.FromAddress)

	if c.ListID == 0 || c.Subject == "" || strings.TrimSpace(c.Body) == "" || c.FromAddress == "" {
		return nil, ErrCampaignIncomplete
	}
	if !security.IsEmail(c.FromAddress) {
		return nil, ErrInvalidSender
	}

	list, err := s.lists.FindByID(ctx, c.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	if list == nil {
		return nil, ErrListNotFound
	}

	body, err := mail.RenderBody(c.Body, c.BodyFormat)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subscribers.FindByList(ctx, c.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}

	ctx = context.WithoutCancel(ctx)

	if c.Preview {
		return s.sendPreview(ctx, c, body, subscribers), nil
	}

	result := &BulkResult{ListID: c.ListID, Total: len(subscribers)}
	for i, sub := range subscribers {
		if s.deliver(ctx, c, body, mail.Recipient{Name: sub.Name, Surname: sub.Surname, Email: sub.Email}) {
			result.Sent++
		}

		if i < len(subscribers)-1 && s.pause > 0 {
			s.sleep(s.pause)
		}
	}

	s.logger.Info("campaign sent",
		zap.Uint("list_id", c.ListID),
		zap.String("subject", c.Subject),
		zap.Int("sent_count", result.Sent),
		zap.Int("total_count", result.Total))

	metrics.BulkCampaigns.Inc()

	if err := s.logs.Campaigns.Append(ctx, activity.CampaignEntry{
		Date:       s.now(),
		ListID:     c.ListID,
		Subject:    c.Subject,
		SentCount:  result.Sent,
		TotalCount: result.Total,
		UserID:     c.UserID,
	}); err != nil {
		s.logger.Error("failed to append campaign log", zap.Error(err))
	}

	details := fmt.Sprintf("list_id=%d sent=%d total=%d", c.ListID, result.Sent, result.Total)
	if err := s.logs.Record(ctx, activity.ActionBulkEmail, details, c.UserID, c.IP); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}

	return result, nil
}

// sendPreview personalizes with the first subscriber, or blanks when the list is empty.
func (s *BulkEmailService) sendPreview(ctx context.Context, c Campaign, body string, subscribers []models.Subscriber) *BulkResult {
	sample := mail.Recipient{Email: c.FromAddress}
	if len(subscribers) > 0 {
		sample.Name = subscribers[0].Name
		sample.Surname = subscribers[0].Surname
		sample.Email = subscribers[0].Email
	}

	result := &BulkResult{ListID: c.ListID, Total: 1, Preview: true}
	err := s.transport.Send(ctx, mail.Message{
		FromName:    c.FromName,
		FromAddress: c.FromAddress,
		To:          c.FromAddress,
		Subject:     c.Subject,
		HTML:        mail.Personalize(body, sample),
	})
	if err != nil {
		s.logger.Warn("preview send failed", zap.Uint("list_id", c.ListID), zap.Error(err))
		return result
	}

	result.Sent = 1
	return result
}

func (s *BulkEmailService) deliver(ctx context.Context, c Campaign, body string, to mail.Recipient) bool {
	if !security.IsEmail(to.Email) {
		s.logger.Warn("skipping invalid recipient address", zap.Uint("list_id", c.ListID))
		return false
	}

	err := s.transport.Send(ctx, mail.Message{
		FromName:    c.FromName,
		FromAddress: c.FromAddress,
		To:          to.Email,
		Subject:     c.Subject,
		HTML:        mail.Personalize(body, to),
	})
	if err != nil {
		s.logger.Warn("send failed", zap.Uint("list_id", c.ListID), zap.Error(err))
		return false
	}

	return true
}
