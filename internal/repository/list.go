package repository

import (
	"context"
	"errors"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"gorm.io/gorm"
)

type ListRepository struct {
	db *storage.Postgres
}

func NewListRepository(db *storage.Postgres) *ListRepository {
	return &ListRepository{db: db}
}

func (r *ListRepository) Create(ctx context.Context, list *models.List) error {
	return r.db.DB.WithContext(ctx).Create(list).Error
}

func (r *ListRepository) FindByID(ctx context.Context, id uint) (*models.List, error) {
	var list models.List
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&list).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &list, nil
}

// Returns every list with its subscriber count, including empty lists
func (r *ListRepository) Summaries(ctx context.Context) ([]models.ListSummary, error) {
	var summaries []models.ListSummary

	err := r.db.DB.WithContext(ctx).
		Model(&models.List{}).
		Select("lists.*, COUNT(subscriber_lists.subscriber_id) AS subscriber_count").
		Joins("LEFT JOIN subscriber_lists ON subscriber_lists.list_id = lists.id").
		Group("lists.id").
		Order("lists.name ASC").
		Scan(&summaries).Error

	return summaries, err
}
