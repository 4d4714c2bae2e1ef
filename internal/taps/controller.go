package taps

import (
	"net/http"

	"taplist/internal/fingerprint"
	"taplist/internal/shared/config"
	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnonVisitorHeader carries the client's anonymous id on tap requests. The
// query parameter is a fallback for contexts that cannot set headers (the
// NFC tag URL itself).
const (
	AnonVisitorHeader = "X-Anon-Visitor-Id"
	AnonVisitorQuery  = "av"
)

type Controller interface {
	Tap(c *gin.Context)
	Identify(c *gin.Context)
}

type controller struct {
	service Service
	cfg     *config.AttributionConfig
}

func NewController(service Service, cfg *config.AttributionConfig) Controller {
	return &controller{service: service, cfg: cfg}
}

// Tap always answers with a 302; error states are query parameters on the
// landing path, never HTTP errors.
func (ctrl *controller) Tap(c *gin.Context) {
	in := TapInput{
		BatchSlug:      c.Param("batchSlug"),
		TagPublicUUID:  c.Param("tagUuid"),
		IPHash:         fingerprint.HashIP(fingerprint.ClientIP(c.Request), ctrl.cfg.IPHashSalt),
		UserAgent:      c.Request.UserAgent(),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		Referer:        c.Request.Referer(),
		AnonVisitorID:  extractAnonVisitorID(c),
		SessionUserID:  extractSessionUserID(c),
	}

	result := ctrl.service.HandleTap(c.Request.Context(), in)
	c.Redirect(http.StatusFound, result.RedirectPath)
}

func (ctrl *controller) Identify(c *gin.Context) {
	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	ipHash := fingerprint.HashIP(fingerprint.ClientIP(c.Request), ctrl.cfg.IPHashSalt)

	result, err := ctrl.service.Identify(c.Request.Context(), req, ipHash, c.Request.UserAgent())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Failed to identify visitor", nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Visitor identified", result, nil)
}

func extractAnonVisitorID(c *gin.Context) *string {
	id := c.GetHeader(AnonVisitorHeader)
	if id == "" {
		id = c.Query(AnonVisitorQuery)
	}
	if id == "" {
		return nil
	}
	return &id
}

func extractSessionUserID(c *gin.Context) *uuid.UUID {
	raw, exists := c.Get("user_id")
	if !exists {
		return nil
	}

	str, ok := raw.(string)
	if !ok {
		return nil
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return nil
	}
	return &userID
}
