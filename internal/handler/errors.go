package handler

import (
	"errors"
	"log"
	"net/http"

	"educonnect/backend/internal/content"
	"educonnect/backend/internal/social"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError maps domain errors to HTTP status codes. Unknown errors are
// persistence failures: the cause is logged and the caller gets a generic
// message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrSelfRequest),
		errors.Is(err, social.ErrAlreadyFriends),
		errors.Is(err, social.ErrRequestPending),
		errors.Is(err, content.ErrWriteConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, social.ErrNotAddressee),
		errors.Is(err, content.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, social.ErrRequestNotFound),
		errors.Is(err, social.ErrNotFriends),
		errors.Is(err, social.ErrGroupNotFound),
		errors.Is(err, social.ErrMembershipNotFound),
		errors.Is(err, content.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, content.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
