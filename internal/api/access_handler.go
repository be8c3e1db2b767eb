package api

import (
	"errors"
	"net/http"

	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessHandler serves the turnstile membership check. The endpoint is
// consumed by the door controller, not by app users, so it is not
// behind JWT auth; malformed or unknown ids simply read as deny.
type AccessHandler struct {
	accessService service.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(accessService service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

type SetMembershipRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// VerifyMembership answers allow/deny for one member id.
func (h *AccessHandler) VerifyMembership(c *gin.Context) {
	memberID, err := primitive.ObjectIDFromHex(c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"allowed": false, "reason": "invalid member id"})
		return
	}

	allowed, err := h.accessService.VerifyMembership(c.Request.Context(), memberID)
	if err != nil {
		// The turnstile treats errors as deny; fail closed.
		c.JSON(http.StatusOK, gin.H{"allowed": false, "reason": "verification unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

// SetMembership toggles a member's subscription state (gym owner only).
func (h *AccessHandler) SetMembership(c *gin.Context) {
	memberID, err := primitive.ObjectIDFromHex(c.Param("memberId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid member ID format")
		return
	}
	var req SetMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.accessService.SetMembershipActive(c.Request.Context(), memberID, *req.Active); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update membership")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
