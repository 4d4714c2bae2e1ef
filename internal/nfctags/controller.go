package nfctags

import (
	"errors"
	"net/http"

	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateTags(c *gin.Context)
	GetTag(c *gin.Context)
	UpdateTag(c *gin.Context)
	GetAllTags(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateTags(c *gin.Context) {
	var req CreateTagRequest
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

	tags, err := ctrl.service.CreateTags(adminUUID, req)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Tags created successfully", tags, nil)
}

func (ctrl *controller) GetTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("tagId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid tag ID", err.Error())
		return
	}

	tag, err := ctrl.service.GetTagByID(tagID)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tag retrieved successfully", tag, nil)
}

func (ctrl *controller) UpdateTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("tagId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid tag ID", err.Error())
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	tag, err := ctrl.service.UpdateTag(tagID, req)
	if err != nil {
		if errors.Is(err, ErrTagNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tag updated successfully", tag, nil)
}

func (ctrl *controller) GetAllTags(c *gin.Context) {
	var query TagListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters", err.Error())
		return
	}

	result, err := ctrl.service.GetAllTags(query)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tags retrieved successfully", result, nil)
}
