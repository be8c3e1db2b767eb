package api

import (
	"errors"
	"net/http"

	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler serves friendship requests and the friends list.
type FriendHandler struct {
	friendService service.FriendService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

type FriendRequestBody struct {
	UserID string `json:"userId" binding:"required"`
}

// RequestFriend sends a friend request to another user.
func (h *FriendHandler) RequestFriend(c *gin.Context) {
	callerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	var req FriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.friendService.RequestFriend(c.Request.Context(), callerID, targetID); err != nil {
		mapFriendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// AcceptFriend accepts a pending friend request.
func (h *FriendHandler) AcceptFriend(c *gin.Context) {
	callerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	var req FriendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	fromID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.friendService.AcceptFriend(c.Request.Context(), callerID, fromID); err != nil {
		mapFriendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListFriends returns the caller's accepted friends.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	callerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return
	}
	friends, err := h.friendService.ListFriends(c.Request.Context(), callerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list friends")
		return
	}
	out := make([]UserResponse, 0, len(friends))
	for i := range friends {
		out = append(out, MapUserToResponse(&friends[i]))
	}
	c.JSON(http.StatusOK, gin.H{"friends": out})
}

func mapFriendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyFriends), errors.Is(err, service.ErrRequestPending):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSelfFriendship), errors.Is(err, service.ErrNoPendingRequest):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Friendship operation failed")
	}
}
