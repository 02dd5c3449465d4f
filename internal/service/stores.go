package service

import (
	"context"

	"github.com/aman-churiwal/mailing-lists/internal/models"
)

type SubscriberStore interface {
	ExistsInList(ctx context.Context, email string, listID uint) (bool, error)
	CreateWithList(ctx context.Context, subscriber *models.Subscriber, listID uint) error
	FindByList(ctx context.Context, listID uint) ([]models.Subscriber, error)
	FindAll(ctx context.Context, listID uint) ([]models.Subscriber, error)
	Count(ctx context.Context) (int64, error)
}

type ListStore interface {
	FindByID(ctx context.Context, id uint) (*models.List, error)
	Summaries(ctx context.Context) ([]models.ListSummary, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AttemptLimiter bounds accepted subscriptions per IP.
type AttemptLimiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
	Increment(ctx context.Context, ip string) error
}
