package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/requestdata"
	"github.com/quietwaters-app/quietwaters-backend/internal/services"
)

const (
	defaultBatchCount = 20
	maxBatchCount     = 100
)

type FeedHandler struct {
	feedService    services.FeedService
	profileService services.ProfileService
}

func NewFeedHandler(feedService services.FeedService, profileService services.ProfileService) *FeedHandler {
	return &FeedHandler{feedService: feedService, profileService: profileService}
}

func (fh *FeedHandler) GenerateBatch(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}

	var req struct {
		Count      int      `json:"count"`
		ExcludeIDs []string `json:"exclude_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Count == 0 {
		req.Count = defaultBatchCount
	}
	if req.Count > maxBatchCount {
		req.Count = maxBatchCount
	}

	exclude := make(map[uuid.UUID]struct{}, len(req.ExcludeIDs))
	for _, raw := range req.ExcludeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_exclude_id", fmt.Errorf("exclude id %q is not a uuid", raw))
			return
		}
		exclude[id] = struct{}{}
	}

	snap, err := fh.profileService.Snapshot(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	batch, err := fh.feedService.GenerateBatch(c.Request.Context(), snap, req.Count, exclude)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	// The batch is about to be presented, so it counts as shown now.
	fh.feedService.MarkShown(rd.UserID, batch)

	RespondOK(c, gin.H{"items": batch, "count": len(batch)})
}
