package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OptionRepository struct {
	db *storage.Postgres
}

func NewOptionRepository(db *storage.Postgres) *OptionRepository {
	return &OptionRepository{db: db}
}

// Decodes the named option into dst. Reports false when the option was never written.
func (r *OptionRepository) Get(ctx context.Context, name string, dst interface{}) (bool, error) {
	var option models.Option
	err := r.db.DB.WithContext(ctx).
		Where("name = ?", name).
		First(&option).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(option.Value, dst); err != nil {
		return false, fmt.Errorf("failed to decode option %s: %w", name, err)
	}

	return true, nil
}

// Serializes value and upserts it under name
func (r *OptionRepository) Set(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode option %s: %w", name, err)
	}

	option := models.Option{
		Name:  name,
		Value: datatypes.JSON(raw),
	}

	return r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&option).Error
}
