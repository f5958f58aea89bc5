package handler

import (
	"net/http"
	"strconv"

	"educonnect/backend/internal/database"
	"educonnect/backend/internal/models"
	"educonnect/backend/internal/social"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// FriendRequestResponse describes a pending friend request.
type FriendRequestResponse struct {
	ID        uint               `json:"id"`
	Requester PublicUserResponse `json:"requester"`
	CreatedAt string             `json:"created_at"`
}

// endregion

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Relation already exists"
// @Router       /users/{id}/request [post]
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
		return
	}

	if _, err := social.RequestFriendship(database.DB, viewerID.(uint), uint(targetUserID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully"})
}

// AcceptFriendRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request addressed to the current user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      403  {object}  ErrorResponse "Not the addressee"
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/requests/{id}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if _, err := social.AcceptFriendship(database.DB, uint(requestID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// RejectFriendRequest godoc
// @Summary      Reject friend request
// @Description  Rejects a pending friend request addressed to the current user. The request is deleted, not archived.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  map[string]string "{"message": "Request rejected"}"
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Router       /friends/requests/{id}/reject [post]
func RejectFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	if err := social.RejectFriendship(database.DB, uint(requestID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request rejected"})
}

// Unfriend godoc
// @Summary      Remove a friend
// @Description  Removes an accepted friendship in both directions.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend User ID"
// @Success      200  {object}  map[string]string "{"message": "Friend removed"}"
// @Failure      404  {object}  ErrorResponse "Users are not friends"
// @Router       /friends/{id} [delete]
func Unfriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	friendID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := social.Unfriend(database.DB, viewerID.(uint), uint(friendID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed"})
}

// ListFriends godoc
// @Summary      List friends
// @Description  Lists the current user's accepted friends.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  PublicUserResponse
// @Router       /friends [get]
func ListFriends(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	friends, err := social.ListFriends(database.DB, viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]PublicUserResponse, 0, len(friends))
	for _, friend := range friends {
		responses = append(responses, buildPublicUserResponse(friend, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// ListFriendRequests godoc
// @Summary      List incoming friend requests
// @Description  Lists pending friend requests addressed to the current user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  FriendRequestResponse
// @Router       /friends/requests [get]
func ListFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	requests, err := social.ListPendingRequests(database.DB, viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, FriendRequestResponse{
			ID:        request.ID,
			Requester: buildPublicUserResponse(request.Requester, viewerID.(uint)),
			CreatedAt: request.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, responses)
}
