package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/requestdata"
	"github.com/quietwaters-app/quietwaters-backend/internal/services"
)

type NotificationHandler struct {
	notifService   services.NotificationService
	profileService services.ProfileService
	notifRepo      repos.ScheduledNotificationRepo
}

func NewNotificationHandler(
	notifService services.NotificationService,
	profileService services.ProfileService,
	notifRepo repos.ScheduledNotificationRepo,
) *NotificationHandler {
	return &NotificationHandler{
		notifService:   notifService,
		profileService: profileService,
		notifRepo:      notifRepo,
	}
}

func (nh *NotificationHandler) Reschedule(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}

	var req struct {
		HorizonDays int `json:"horizon_days"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}

	snap, err := nh.profileService.Snapshot(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if err := nh.notifService.RescheduleAll(c.Request.Context(), snap, req.HorizonDays); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (nh *NotificationHandler) ListScheduled(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}
	rows, err := nh.notifRepo.GetPendingByUserID(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"notifications": rows, "count": len(rows)})
}
