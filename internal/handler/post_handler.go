package handler

import (
	"net/http"
	"strconv"

	"educonnect/backend/internal/content"
	"educonnect/backend/internal/database"
	"educonnect/backend/internal/models"
	"educonnect/backend/internal/social"
	"educonnect/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// PostStore is the blob store used to release replaced or deleted post
// images. Set from main at startup; nil in tests that don't exercise images.
var PostStore storage.Storage

// region --- DTOs ---

// PostInput defines the structure for creating a post.
type PostInput struct {
	Text     string `json:"text" binding:"required"`
	ImageURL string `json:"image_url"`
	GroupID  *uint  `json:"group_id"`
}

// EditPostInput defines the structure for editing a post. An empty
// image_url with remove_image=false keeps the current image.
type EditPostInput struct {
	Text        string `json:"text" binding:"required"`
	ImageURL    string `json:"image_url"`
	RemoveImage bool   `json:"remove_image"`
}

// CommentInput defines the structure for adding a comment.
type CommentInput struct {
	Content string `json:"content" binding:"required"`
}

// endregion

// GetFeed godoc
// @Summary      Get the general feed
// @Description  Returns general-feed posts newest-first with likes and comments resolved for the viewer.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} content.FeedItem
// @Router       /posts [get]
func GetFeed(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	items, err := content.ListFeed(database.DB, viewerID.(uint), nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetGroupFeed godoc
// @Summary      Get a group's feed
// @Description  Returns a group's posts newest-first. Members only.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} content.FeedItem
// @Failure      403 {object} ErrorResponse "Not a member"
// @Router       /groups/{id}/posts [get]
func GetGroupFeed(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "Only members can view the group feed"})
		return
	}

	gid := uint(groupID)
	items, err := content.ListFeed(database.DB, viewerID.(uint), &gid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a post in the general feed, or in a group when group_id is set. Group posts require membership.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post content"
// @Success      201 {object} content.FeedItem
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Not a member of the group"
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var membershipID *uint
	if input.GroupID != nil {
		membership, err := social.Membership(database.DB, *input.GroupID, viewerID.(uint))
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only members can post in a group"})
			return
		}
		membershipID = &membership.ID
	}

	post, err := content.CreatePost(database.DB, viewerID.(uint), input.Text, input.ImageURL, input.GroupID, membershipID)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := content.GetPost(database.DB, post.ID, viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ToggleLike godoc
// @Summary      Toggle a like
// @Description  Likes the post, or removes the viewer's like if already present.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200 {object} map[string]interface{} "{"likes_count": 3, "is_liked": true}"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/like [post]
func ToggleLike(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	agg, err := content.ToggleLike(database.DB, uint(postID), viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"likes_count": len(agg.Likes),
		"is_liked":    agg.IsLikedBy(viewerID.(uint)),
	})
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Appends a comment with the author's name and avatar snapshotted at creation time.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int          true "Post ID"
// @Param        input body  CommentInput true "Comment"
// @Success      201 {object} content.Comment
// @Failure      400 {object} ErrorResponse "Empty comment or invalid post ID"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id}/comments [post]
func AddComment(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var author models.User
	if err := database.DB.First(&author, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	comment, err := content.AddComment(database.DB, uint(postID), author, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// EditPost godoc
// @Summary      Edit a post
// @Description  Replaces the post's text and optionally replaces or removes its image. Author only.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int           true "Post ID"
// @Param        input body  EditPostInput true "New content"
// @Success      200 {object} content.FeedItem
// @Failure      403 {object} ErrorResponse "Not the author"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id} [put]
func EditPost(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var input EditPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	op := content.ImageKeep
	switch {
	case input.RemoveImage:
		op = content.ImageRemove
	case input.ImageURL != "":
		op = content.ImageReplace
	}

	post, err := content.EditPost(database.DB, PostStore, uint(postID), viewerID.(uint), input.Text, op, input.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := content.GetPost(database.DB, post.ID, viewerID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Deletes a post and releases its stored image. Author only.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200 {object} map[string]string "{"message": "Post deleted"}"
// @Failure      403 {object} ErrorResponse "Not the author"
// @Failure      404 {object} ErrorResponse "Post not found"
// @Router       /posts/{id} [delete]
func DeletePost(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	if err := content.DeletePost(database.DB, PostStore, uint(postID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
