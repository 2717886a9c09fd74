package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

type ContentRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ContentItem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error)
	Upsert(ctx context.Context, tx *gorm.DB, items []*types.ContentItem) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	repoLog := baseLog.With("repo", "ContentRepo")
	return &contentRepo{db: db, log: repoLog}
}

func (cr *contentRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.ContentItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ContentItem
	if err := transaction.WithContext(ctx).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *contentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ContentItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.ContentItem
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert is used by the seed importer; re-importing the same pack is a
// harmless overwrite keyed on id.
func (cr *contentRepo) Upsert(ctx context.Context, tx *gorm.DB, items []*types.ContentItem) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(items) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&items).Error
}
