package batches

import (
	"errors"
	"net/http"

	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateBatch(c *gin.Context)
	GetBatch(c *gin.Context)
	UpdateBatch(c *gin.Context)
	GetAllBatches(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	adminID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Admin not authenticated", nil, nil)
		return
	}

	adminUUID, err := uuid.Parse(adminID.(string))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Invalid admin ID format", nil)
		return
	}

	batch, err := ctrl.service.CreateBatch(adminUUID, req)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.RespondError(c, http.StatusConflict, response.CodeValidation, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Batch created successfully", batch, nil)
}

func (ctrl *controller) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid batch ID", err.Error())
		return
	}

	batch, err := ctrl.service.GetBatchByID(batchID)
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Batch retrieved successfully", batch, nil)
}

func (ctrl *controller) UpdateBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid batch ID", err.Error())
		return
	}

	var req UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	batch, err := ctrl.service.UpdateBatch(batchID, req)
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Batch updated successfully", batch, nil)
}

func (ctrl *controller) GetAllBatches(c *gin.Context) {
	var query BatchListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters", err.Error())
		return
	}

	result, err := ctrl.service.GetAllBatches(query)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Batches retrieved successfully", result, nil)
}
