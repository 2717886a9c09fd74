package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
)

// RescheduleWorker periodically rebuilds every user's notification horizon
// so schedules keep rolling forward even when a profile never changes.
type RescheduleWorker struct {
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
	profileSvc  ProfileService
	notifSvc    NotificationService
	interval    time.Duration
}

func NewRescheduleWorker(
	log *logger.Logger,
	profileRepo repos.UserProfileRepo,
	profileSvc ProfileService,
	notifSvc NotificationService,
	interval time.Duration,
) *RescheduleWorker {
	workerLog := log.With("service", "RescheduleWorker")
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RescheduleWorker{
		log:         workerLog,
		profileRepo: profileRepo,
		profileSvc:  profileSvc,
		notifSvc:    notifSvc,
		interval:    interval,
	}
}

func (w *RescheduleWorker) Start(ctx context.Context) {
	go func() {
		// Run once at startup so a fresh deploy does not wait a full
		// interval before scheduling anything.
		w.runOnce(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.log.Info("reschedule worker stopping")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *RescheduleWorker) runOnce(ctx context.Context) {
	profiles, err := w.profileRepo.GetAll(ctx, nil)
	if err != nil {
		w.log.Warn("listing profiles for reschedule failed", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, profile := range profiles {
		userID := profile.UserID
		g.Go(func() error {
			snap, err := w.profileSvc.Snapshot(gctx, userID)
			if err != nil {
				w.log.Warn("profile snapshot failed during reschedule", "user_id", userID.String(), "error", err)
				return nil
			}
			if err := w.notifSvc.RescheduleAll(gctx, snap, defaultHorizonDays); err != nil {
				w.log.Warn("reschedule failed", "user_id", userID.String(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	w.log.Info("daily reschedule pass complete", "profiles", len(profiles))
}
