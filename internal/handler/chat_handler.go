package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"educonnect/backend/internal/database"
	"educonnect/backend/internal/hub"
	"educonnect/backend/internal/models"
	"educonnect/backend/internal/social"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// MessageInput defines the structure for sending a chat message.
type MessageInput struct {
	Content string `json:"content" binding:"required"`
}

// DirectMessageResponse defines the structure for a private chat message.
type DirectMessageResponse struct {
	ID          uint      `json:"id"`
	SenderID    uint      `json:"sender_id"`
	RecipientID uint      `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMessageResponse defines the structure for a group chat message. The
// sender is resolved through the membership row the message was sent under;
// it is null when that membership no longer exists.
type GroupMessageResponse struct {
	ID           uint                `json:"id"`
	GroupID      uint                `json:"group_id"`
	MembershipID uint                `json:"membership_id"`
	Sender       *PublicUserResponse `json:"sender"`
	Content      string              `json:"content"`
	CreatedAt    time.Time           `json:"created_at"`
}

// endregion

// region --- Direct chat ---

// SendDirectMessage godoc
// @Summary      Send a private message
// @Description  Sends a private chat message to another user.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true "Recipient User ID"
// @Param        input body  MessageInput true "Message"
// @Success      201 {object} DirectMessageResponse
// @Failure      404 {object} ErrorResponse "Recipient not found"
// @Router       /chat/direct/{id} [post]
func SendDirectMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	recipientID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient ID"})
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var recipient models.User
	if err := database.DB.First(&recipient, uint(recipientID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	}

	message := models.DirectMessage{
		SenderID:    viewerID.(uint),
		RecipientID: uint(recipientID),
		Content:     input.Content,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	response := newDirectMessageResponse(message)
	hub.GlobalHub.Broadcast(hub.UserChannel(uint(recipientID)), hub.Event{
		Type:    "direct_message",
		Payload: response,
	})

	c.JSON(http.StatusCreated, response)
}

// GetConversation godoc
// @Summary      Get a private conversation
// @Description  Returns the messages exchanged between the viewer and another user, oldest first.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Other User ID"
// @Success      200 {array} DirectMessageResponse
// @Router       /chat/direct/{id} [get]
func GetConversation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	otherID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var messages []models.DirectMessage
	err = database.DB.Where(
		"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
		viewerID, otherID, otherID, viewerID,
	).Order("created_at ASC").Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	responses := make([]DirectMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, newDirectMessageResponse(message))
	}

	c.JSON(http.StatusOK, responses)
}

// endregion

// region --- Group chat ---

// SendGroupMessage godoc
// @Summary      Send a group message
// @Description  Sends a chat message to a group. The sender is recorded as the membership row id.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true "Group ID"
// @Param        input body  MessageInput true "Message"
// @Success      201 {object} GroupMessageResponse
// @Failure      403 {object} ErrorResponse "Not a member"
// @Router       /groups/{id}/messages [post]
func SendGroupMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := social.Membership(database.DB, uint(groupID), viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only members can send group messages"})
		return
	}

	message := models.GroupMessage{
		GroupID:      uint(groupID),
		MembershipID: membership.ID,
		Content:      input.Content,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	response := newGroupMessageResponse(message, viewerID.(uint))
	hub.GlobalHub.Broadcast(hub.GroupChannel(uint(groupID)), hub.Event{
		Type:    "group_message",
		Payload: response,
	})

	c.JSON(http.StatusCreated, response)
}

// GetGroupMessages godoc
// @Summary      Get group messages
// @Description  Returns a group's chat messages oldest first, with each sender resolved through its membership row.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} GroupMessageResponse
// @Failure      403 {object} ErrorResponse "Not a member"
// @Router       /groups/{id}/messages [get]
func GetGroupMessages(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	member, err := social.IsMember(database.DB, uint(groupID), viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only members can read group messages"})
		return
	}

	var messages []models.GroupMessage
	err = database.DB.Where("group_id = ?", uint(groupID)).
		Order("created_at ASC").Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	responses := make([]GroupMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, newGroupMessageResponse(message, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// endregion

// region --- Streams ---

// StreamUserEvents godoc
// @Summary      Stream private chat events
// @Description  Server-sent event stream of the viewer's incoming private messages.
// @Tags         chat
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Router       /chat/stream [get]
func StreamUserEvents(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	streamChannel(c, hub.UserChannel(viewerID.(uint)))
}

// StreamGroupEvents godoc
// @Summary      Stream group chat events
// @Description  Server-sent event stream of a group's chat messages. Members only.
// @Tags         chat
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200
// @Failure      403 {object} ErrorResponse "Not a member"
// @Router       /groups/{id}/stream [get]
func StreamGroupEvents(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	member, err := social.IsMember(database.DB, uint(groupID), viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only members can stream group messages"})
		return
	}

	streamChannel(c, hub.GroupChannel(uint(groupID)))
}

func streamChannel(c *gin.Context, channel string) {
	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(channel, client)
	defer hub.GlobalHub.Unsubscribe(channel, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// endregion

// region --- Helpers ---

func newDirectMessageResponse(message models.DirectMessage) DirectMessageResponse {
	return DirectMessageResponse{
		ID:          message.ID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Content:     message.Content,
		CreatedAt:   message.CreatedAt,
	}
}

func newGroupMessageResponse(message models.GroupMessage, viewerID uint) GroupMessageResponse {
	response := GroupMessageResponse{
		ID:           message.ID,
		GroupID:      message.GroupID,
		MembershipID: message.MembershipID,
		Content:      message.Content,
		CreatedAt:    message.CreatedAt,
	}

	// Sender resolution follows the membership hop; a departed member's
	// messages keep their id but render without a current sender profile.
	sender, err := social.ResolveGroupMessageSender(database.DB, message.MembershipID)
	if err == nil {
		senderResponse := buildPublicUserResponse(sender, viewerID)
		response.Sender = &senderResponse
	}

	return response
}

// endregion
