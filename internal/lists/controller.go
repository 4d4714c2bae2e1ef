package lists

import (
	"errors"
	"net/http"

	"taplist/internal/shared/utils/response"
	"taplist/internal/visitors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnonVisitorHeader mirrors the tap endpoints: anonymous list access is
// keyed by the same client-generated id the attribution pipeline uses.
const AnonVisitorHeader = "X-Anon-Visitor-Id"

type Controller interface {
	GetMyList(c *gin.Context)
	AddItem(c *gin.Context)
	UpdateItem(c *gin.Context)
	DeleteItem(c *gin.Context)
	SharePin(c *gin.Context)
	AccessByPin(c *gin.Context)
}

type controller struct {
	service  Service
	visitors visitors.Service
}

func NewController(service Service, visitorService visitors.Service) Controller {
	return &controller{service: service, visitors: visitorService}
}

// resolveOwner maps the request to a list owner: the session user when
// authenticated, otherwise the visitor behind the anonymous id header.
func (ctrl *controller) resolveOwner(c *gin.Context) (ListOwner, bool) {
	if raw, exists := c.Get("user_id"); exists {
		if str, ok := raw.(string); ok {
			if userID, err := uuid.Parse(str); err == nil {
				return ListOwner{UserID: &userID}, true
			}
		}
	}

	anonID := c.GetHeader(AnonVisitorHeader)
	if anonID == "" {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation,
			"Authentication or an anonymous visitor id is required", nil)
		return ListOwner{}, false
	}

	visitor, err := ctrl.visitors.UpsertPing(anonID, "", c.Request.UserAgent())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, "Failed to resolve visitor", nil)
		return ListOwner{}, false
	}

	return ListOwner{VisitorID: &visitor.ID}, true
}

func (ctrl *controller) GetMyList(c *gin.Context) {
	owner, ok := ctrl.resolveOwner(c)
	if !ok {
		return
	}

	list, err := ctrl.service.GetOrCreateList(owner)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "List retrieved successfully", list, nil)
}

func (ctrl *controller) AddItem(c *gin.Context) {
	owner, ok := ctrl.resolveOwner(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	item, err := ctrl.service.AddItem(owner, req)
	if err != nil {
		if errors.Is(err, ErrItemExists) {
			response.RespondError(c, http.StatusConflict, response.CodeValidation, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Item added successfully", item, nil)
}

func (ctrl *controller) UpdateItem(c *gin.Context) {
	owner, ok := ctrl.resolveOwner(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid item ID", err.Error())
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	item, err := ctrl.service.UpdateItem(owner, itemID, req)
	if err != nil {
		if errors.Is(err, ErrListNotFound) || errors.Is(err, ErrItemNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item updated successfully", item, nil)
}

func (ctrl *controller) DeleteItem(c *gin.Context) {
	owner, ok := ctrl.resolveOwner(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid item ID", err.Error())
		return
	}

	if err := ctrl.service.DeleteItem(owner, itemID); err != nil {
		if errors.Is(err, ErrListNotFound) || errors.Is(err, ErrItemNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item deleted successfully", nil, nil)
}

func (ctrl *controller) SharePin(c *gin.Context) {
	owner, ok := ctrl.resolveOwner(c)
	if !ok {
		return
	}

	pin, err := ctrl.service.SharePin(owner)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Share pin created", pin, nil)
}

func (ctrl *controller) AccessByPin(c *gin.Context) {
	var req AccessByPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, "Invalid request body", err.Error())
		return
	}

	list, err := ctrl.service.AccessByPin(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrPinThrottled):
			response.RespondError(c, http.StatusTooManyRequests, response.CodeValidation, err.Error(), nil)
		case errors.Is(err, ErrListNotFound), errors.Is(err, ErrNoPin), errors.Is(err, ErrPinMismatch):
			// One generic answer for all three, so a prober cannot tell a
			// wrong pin from a missing list.
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, "List not found or pin incorrect", nil)
		default:
			response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, err.Error(), nil)
		}
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "List retrieved successfully", list, nil)
}
