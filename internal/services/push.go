package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// dbNotificationPlatform persists the schedule for the push delivery
// process to pick up. Schedule replaces the user's rows in one
// transaction, so a delivery reader never observes a half-written horizon.
type dbNotificationPlatform struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ScheduledNotificationRepo
}

func NewDBNotificationPlatform(db *gorm.DB, log *logger.Logger, repo repos.ScheduledNotificationRepo) NotificationPlatform {
	serviceLog := log.With("service", "DBNotificationPlatform")
	return &dbNotificationPlatform{db: db, log: serviceLog, repo: repo}
}

func (p *dbNotificationPlatform) CancelAll(ctx context.Context, userID uuid.UUID) error {
	return p.repo.DeleteByUserID(ctx, nil, userID)
}

func (p *dbNotificationPlatform) Schedule(ctx context.Context, userID uuid.UUID, reqs []*types.NotificationRequest) error {
	rows := make([]*types.ScheduledNotification, 0, len(reqs))
	for _, req := range reqs {
		rows = append(rows, &types.ScheduledNotification{
			UserID:          userID,
			Identifier:      req.Identifier,
			FireAt:          req.FireAt,
			Title:           req.Title,
			Subtitle:        req.Subtitle,
			Body:            req.Body,
			SourceContentID: req.SourceContentID,
			BibleBookName:   req.BibleBookName,
			BibleChapter:    req.BibleChapter,
		})
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := p.repo.DeleteByUserID(ctx, tx, userID); err != nil {
			return err
		}
		return p.repo.Create(ctx, tx, rows)
	})
}
