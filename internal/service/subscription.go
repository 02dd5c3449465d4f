package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/events"
	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/metrics"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeSecurity   Outcome = "security"
	OutcomeSpam       Outcome = "spam"
	OutcomeThrottled  Outcome = "throttled"
	OutcomeValidation Outcome = "validation"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeFailed     Outcome = "failed"
)

// SubmissionRequest is one posted subscription form.
type SubmissionRequest struct {
	ListID   uint
	Name     string
	Surname  string
	Email    string
	Nonce    string
	Honeypot string
	IP       string

	// Complete is false when a required form field was absent from the post
	Complete bool
}

type Result struct {
	Outcome Outcome  `json:"outcome"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (r Result) Accepted() bool {
	return r.Outcome == OutcomeAccepted
}

type SubscriptionService struct {
	tokens      *security.TokenIssuer
	attempts    AttemptLimiter
	subscribers SubscriberStore
	hooks       *events.Hooks
	logs        *activity.Logs
	logger      *zap.Logger
	now         func() time.Time
}

func NewSubscriptionService(
	tokens *security.TokenIssuer,
	attempts AttemptLimiter,
	subscribers SubscriberStore,
	hooks *events.Hooks,
	logs *activity.Logs,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		tokens:      tokens,
		attempts:    attempts,
		subscribers: subscribers,
		hooks:       hooks,
		logs:        logs,
		logger:      logger.Named("subscription"),
		now:         time.Now,
	}
}

// FormToken issues the token a rendered form for listID must post back.
func (s *SubscriptionService) FormToken(listID uint) (string, error) {
	return s.tokens.Create(security.SubscriptionAction(listID), "")
}

// Subscribe runs one submission through the intake checks in order and stops at the first rejection.
// Nothing is written unless every check passes.
func (s *SubscriptionService) Subscribe(ctx context.Context, req SubmissionRequest, msgs *i18n.Catalog) Result {
	result := s.subscribe(ctx, req, msgs)
	metrics.SubscriptionAttempts.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

func (s *SubscriptionService) subscribe(ctx context.Context, req SubmissionRequest, msgs *i18n.Catalog) Result {
	if !req.Complete {
		return reject(OutcomeIncomplete, msgs.T(i18n.FormIncomplete))
	}

	if !s.tokens.Verify(strings.TrimSpace(req.Nonce), security.SubscriptionAction(req.ListID), "") {
		return reject(OutcomeSecurity, msgs.T(i18n.SecurityError))
	}

	if security.IsHoneypotTriggered(req.Honeypot) {
		return reject(OutcomeSpam, msgs.T(i18n.SpamDetected))
	}

	allowed, err := s.attempts.Allow(ctx, req.IP)
	if err != nil {
		s.logger.Error("rate limit check failed", zap.String("ip", req.IP), zap.Error(err))
		return reject(OutcomeFailed, msgs.T(i18n.PersistFailed))
	}
	if !allowed {
		return reject(OutcomeThrottled, msgs.T(i18n.Throttled))
	}

	data := security.SubscriptionData{
		Name:    security.SanitizeText(req.Name),
		Surname: security.SanitizeText(req.Surname),
		Email:   security.SanitizeEmail(req.Email),
	}

	validation := security.ValidateSubscription(data, msgs)
	if !validation.Valid {
		return Result{
			Outcome: OutcomeValidation,
			Message: validation.Message,
			Errors:  validation.Errors,
		}
	}

	exists, err := s.subscribers.ExistsInList(ctx, data.Email, req.ListID)
	if err != nil {
		s.logger.Error("duplicate check failed", zap.Uint("list_id", req.ListID), zap.Error(err))
		return reject(OutcomeFailed, msgs.T(i18n.PersistFailed))
	}
	if exists {
		return reject(OutcomeDuplicate, msgs.T(i18n.Duplicate))
	}

	subscriber := &models.Subscriber{
		ID:           uuid.New(),
		Name:         s.hooks.ApplyFilter(events.FilterName, data.Name),
		Surname:      s.hooks.ApplyFilter(events.FilterSurname, data.Surname),
		Email:        s.hooks.ApplyFilter(events.FilterEmail, data.Email),
		SubscribedAt: s.now(),
		SourceIP:     req.IP,
	}

	if err := s.subscribers.CreateWithList(ctx, subscriber, req.ListID); err != nil {
		s.logger.Error("failed to persist subscriber", zap.Uint("list_id", req.ListID), zap.Error(err))
		return reject(OutcomeFailed, msgs.T(i18n.PersistFailed))
	}

	// The subscriber exists from here on; later failures are only logged.
	if err := s.attempts.Increment(ctx, req.IP); err != nil {
		s.logger.Warn("failed to increment rate limit", zap.String("ip", req.IP), zap.Error(err))
	}

	s.hooks.Created(ctx, events.SubscriptionCreated{
		SubscriberID: subscriber.ID,
		ListID:       req.ListID,
		Name:         subscriber.Name,
		Surname:      subscriber.Surname,
		Email:        subscriber.Email,
		IP:           req.IP,
		OccurredAt:   subscriber.SubscribedAt,
	})

	details := fmt.Sprintf("list_id=%d subscriber_id=%s", req.ListID, subscriber.ID)
	if err := s.logs.Record(ctx, activity.ActionSubscription, details, "", req.IP); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}

	s.logger.Info("subscription accepted",
		zap.Uint("list_id", req.ListID),
		zap.String("subscriber_id", subscriber.ID.String()))

	return Result{Outcome: OutcomeAccepted, Message: msgs.T(i18n.Success)}
}

func reject(outcome Outcome, message string) Result {
	return Result{Outcome: outcome, Message: message}
}
