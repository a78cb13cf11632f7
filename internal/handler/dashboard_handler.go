package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/service"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/response"
)

// DashboardHandler exposes the landing-page aggregate.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Dashboard
// @Description Assignment counts, average grade, upcoming work and recent grades
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}
