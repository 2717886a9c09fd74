package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quietwaters-app/quietwaters-backend/internal/requestdata"
	"github.com/quietwaters-app/quietwaters-backend/internal/services"
)

type StreakHandler struct {
	streakService services.StreakService
}

func NewStreakHandler(streakService services.StreakService) *StreakHandler {
	return &StreakHandler{streakService: streakService}
}

func (sh *StreakHandler) CheckIn(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}
	result, err := sh.streakService.CheckAndUpdate(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (sh *StreakHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", fmt.Errorf("missing request identity"))
		return
	}
	state, err := sh.streakService.Get(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, state)
}
