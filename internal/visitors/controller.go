package visitors

import (
	"net/http"

	"taplist/internal/fingerprint"
	"taplist/internal/shared/config"
	"taplist/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Ping(c *gin.Context)
}

type controller struct {
	service Service
	cfg     *config.AttributionConfig
}

func NewController(service Service, cfg *config.AttributionConfig) Controller {
	return &controller{service: service, cfg: cfg}
}

func (ctrl *controller) Ping(c *gin.Context) {
	var req PingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	ipHash := fingerprint.HashIP(fingerprint.ClientIP(c.Request), ctrl.cfg.IPHashSalt)

	visitor, err := ctrl.service.Ping(req, ipHash, c.Request.UserAgent())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Failed to record ping", nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Ping recorded", visitor, nil)
}
