package repository

import (
	"context"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"gorm.io/gorm"
)

const subscriberListsTable = "subscriber_lists"

type SubscriberRepository struct {
	db *storage.Postgres
}

func NewSubscriberRepository(db *storage.Postgres) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

// Reports whether email already has a record tagged with listID
func (r *SubscriberRepository) ExistsInList(ctx context.Context, email string, listID uint) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Subscriber{}).
		Joins("JOIN subscriber_lists ON subscriber_lists.subscriber_id = subscribers.id").
		Where("subscribers.email = ? AND subscriber_lists.list_id = ?", email, listID).
		Count(&count).Error

	return count > 0, err
}

// Inserts the subscriber and tags it with listID in one transaction
func (r *SubscriberRepository) CreateWithList(ctx context.Context, subscriber *models.Subscriber, listID uint) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit("Lists").Create(subscriber).Error; err != nil {
			return err
		}

		return tx.Table(subscriberListsTable).Create(map[string]interface{}{
			"subscriber_id": subscriber.ID,
			"list_id":       listID,
		}).Error
	})
}

// Retrieves every subscriber tagged with listID, or all subscribers when listID is 0
func (r *SubscriberRepository) FindAll(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	var subscribers []models.Subscriber

	query := r.db.DB.WithContext(ctx).Preload("Lists")
	if listID > 0 {
		query = query.
			Joins("JOIN subscriber_lists ON subscriber_lists.subscriber_id = subscribers.id").
			Where("subscriber_lists.list_id = ?", listID)
	}

	err := query.Order("subscribers.subscribed_at ASC").Find(&subscribers).Error
	return subscribers, err
}

// Retrieves the subscribers tagged with listID. Bulk sends use this.
func (r *SubscriberRepository) FindByList(ctx context.Context, listID uint) ([]models.Subscriber, error) {
	if listID == 0 {
		return nil, nil
	}
	return r.FindAll(ctx, listID)
}

func (r *SubscriberRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Subscriber{}).
		Count(&count).Error

	return count, err
}
