package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/requestdata"
	"github.com/quietwaters-app/quietwaters-backend/internal/services"
)

type ProfileHandler struct {
	log            *logger.Logger
	profileService services.ProfileService
	notifService   services.NotificationService
}

func NewProfileHandler(log *logger.Logger, profileService services.ProfileService, notifService services.NotificationService) *ProfileHandler {
	return &ProfileHandler{
		log:            log.With("handler", "ProfileHandler"),
		profileService: profileService,
		notifService:   notifService,
	}
}

func (ph *ProfileHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}
	profile, err := ph.profileService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, profile)
}

// Update saves the profile and kicks off a notification reschedule in the
// background, since the new preferences change what should be delivered.
// The response does not wait on the reschedule.
func (ph *ProfileHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}

	var update services.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	profile, err := ph.profileService.Update(c.Request.Context(), rd.UserID, update)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}

	userID := rd.UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := ph.profileService.Snapshot(ctx, userID)
		if err != nil {
			ph.log.Warn("snapshot for reschedule failed", "user_id", userID.String(), "error", err)
			return
		}
		if err := ph.notifService.RescheduleAll(ctx, snap, 0); err != nil {
			ph.log.Warn("background reschedule failed", "user_id", userID.String(), "error", err)
		}
	}()

	RespondOK(c, profile)
}
