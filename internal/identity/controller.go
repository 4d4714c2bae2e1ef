package identity

import (
	"errors"
	"net/http"

	"taplist/internal/fingerprint"
	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	Claim(c *gin.Context)
	Attach(c *gin.Context)
	LinkTag(c *gin.Context)
}

type controller struct {
	service Service
	cfg     *config.AttributionConfig
}

func NewController(service Service, cfg *config.AttributionConfig) Controller {
	return &controller{service: service, cfg: cfg}
}

func (ctrl *controller) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	rawUserID, exists := c.Get("user_id")
	if !exists {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	userID, err := uuid.Parse(rawUserID.(string))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Invalid user ID format", nil)
		return
	}

	result, err := ctrl.service.Claim(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrClaimConflict) {
			response.RespondError(c, http.StatusConflict, response.CodeClaimConflict,
				"This anonymous history already belongs to another account", nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Claim failed", nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Claim processed", result, nil)
}

func (ctrl *controller) Attach(c *gin.Context) {
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	ipHash := fingerprint.HashIP(fingerprint.ClientIP(c.Request), ctrl.cfg.IPHashSalt)

	result, err := ctrl.service.Attach(c.Request.Context(), req, ipHash, c.Request.UserAgent())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Attach failed", nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Attach processed", result, nil)
}

func (ctrl *controller) LinkTag(c *gin.Context) {
	tagID, err := uuid.Parse(c.Param("tagId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid tag ID", err.Error())
		return
	}

	var req LinkTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	result, err := ctrl.service.LinkTag(c.Request.Context(), tagID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
		case errors.Is(err, nfctags.ErrTagNotFound):
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
		default:
			response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Failed to link tag", nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Tag linked successfully", result, nil)
}
