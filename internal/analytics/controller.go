package analytics

import (
	"net/http"
	"strconv"

	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetOverview(c *gin.Context)
	GetBatchAnalytics(c *gin.Context)
	GetTagAnalytics(c *gin.Context)
	GetDeviceBreakdown(c *gin.Context)
	GetDailyStats(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetOverview(c *gin.Context) {
	overview, err := ctrl.service.GetOverview()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Overview analytics retrieved successfully", overview, nil)
}

func (ctrl *controller) GetBatchAnalytics(c *gin.Context) {
	results, err := ctrl.service.GetBatchAnalytics()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Batch analytics retrieved successfully", results, nil)
}

func (ctrl *controller) GetTagAnalytics(c *gin.Context) {
	var batchID *uuid.UUID
	if raw := c.Query("batch_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid batch_id", nil)
			return
		}
		batchID = &parsed
	}

	results, err := ctrl.service.GetTagAnalytics(batchID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tag analytics retrieved successfully", results, nil)
}

func (ctrl *controller) GetDeviceBreakdown(c *gin.Context) {
	results, err := ctrl.service.GetDeviceBreakdown()
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Device breakdown retrieved successfully", results, nil)
}

func (ctrl *controller) GetDailyStats(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	results, err := ctrl.service.GetDailyStats(days)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Daily stats retrieved successfully", results, nil)
}
