package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

type ScheduledNotificationRepo interface {
	GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ScheduledNotification, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ScheduledNotification) error
}

type scheduledNotificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledNotificationRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledNotificationRepo {
	repoLog := baseLog.With("repo", "ScheduledNotificationRepo")
	return &scheduledNotificationRepo{db: db, log: repoLog}
}

func (nr *scheduledNotificationRepo) GetPendingByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ScheduledNotification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	var results []*types.ScheduledNotification
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("fire_at asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (nr *scheduledNotificationRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.ScheduledNotification{}).Error
}

func (nr *scheduledNotificationRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ScheduledNotification) error {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}

	if len(rows) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).Create(&rows).Error
}
