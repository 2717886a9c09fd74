package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

type StreakRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.StreakState, error)
	Save(ctx context.Context, tx *gorm.DB, state *types.StreakState) error
}

type streakRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStreakRepo(db *gorm.DB, baseLog *logger.Logger) StreakRepo {
	repoLog := baseLog.With("repo", "StreakRepo")
	return &streakRepo{db: db, log: repoLog}
}

func (sr *streakRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.StreakState, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.StreakState
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *streakRepo) Save(ctx context.Context, tx *gorm.DB, state *types.StreakState) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if state == nil {
		return nil
	}

	return transaction.WithContext(ctx).Save(state).Error
}
