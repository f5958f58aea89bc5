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

// GroupInput defines the structure for creating a group.
type GroupInput struct {
	Name        string `json:"name" binding:"required" example:"Algorithms Study Group"`
	Description string `json:"description"`
}

// GroupResponse defines the structure for a group summary.
type GroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorID   uint   `json:"creator_id"`
	AvatarURL   string `json:"avatar_url"`
	MemberCount int64  `json:"member_count"`
	IsMember    bool   `json:"is_member"`
}

func newGroupResponse(group models.Group, viewerID uint) GroupResponse {
	count, _ := social.MemberCount(database.DB, group.ID)
	member, _ := social.IsMember(database.DB, group.ID, viewerID)

	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		CreatorID:   group.CreatorID,
		AvatarURL:   group.AvatarURL,
		MemberCount: count,
		IsMember:    member,
	}
}

// endregion

// CreateGroup godoc
// @Summary      Create a new group
// @Description  Creates a group and enrolls the creator as its first member.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GroupInput true "Group Info"
// @Success      201  {object}  GroupResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /groups [post]
func CreateGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input GroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := social.CreateGroup(database.DB, viewerID.(uint), input.Name, input.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newGroupResponse(group, viewerID.(uint)))
}

// ListGroups godoc
// @Summary      List groups
// @Description  Lists all groups, or only the viewer's groups with ?mine=true.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        mine query bool false "Only groups the viewer belongs to"
// @Success      200  {array}  GroupResponse
// @Router       /groups [get]
func ListGroups(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var groups []models.Group
	if c.Query("mine") == "true" {
		var err error
		groups, err = social.ListUserGroups(database.DB, viewerID.(uint))
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		if err := database.DB.Order("created_at DESC").Find(&groups).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
			return
		}
	}

	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, newGroupResponse(group, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}

// GetGroupByID godoc
// @Summary      Get a group by ID
// @Description  Gets a group summary including member count and viewer membership.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} GroupResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id} [get]
func GetGroupByID(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, newGroupResponse(group, viewerID.(uint)))
}

// JoinGroup godoc
// @Summary      Join a group
// @Description  Joins a group. Joining a group the user already belongs to is a no-op.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} map[string]string "{"message": "Joined group successfully"}"
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id}/join [post]
func JoinGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	if _, err := social.JoinGroup(database.DB, uint(groupID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Joined group successfully"})
}

// LeaveGroup godoc
// @Summary      Leave a group
// @Description  Leaves a group. Leaving a group the user is not in is a no-op.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} map[string]string "{"message": "Left group successfully"}"
// @Router       /groups/{id}/leave [post]
func LeaveGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	if err := social.LeaveGroup(database.DB, uint(groupID), viewerID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully"})
}

// GetGroupMembers godoc
// @Summary      List group members
// @Description  Lists the users currently enrolled in a group.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {array} PublicUserResponse
// @Failure      404 {object} ErrorResponse "Group not found"
// @Router       /groups/{id}/members [get]
func GetGroupMembers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := database.DB.First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	members, err := social.GroupMembers(database.DB, uint(groupID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]PublicUserResponse, 0, len(members))
	for _, member := range members {
		responses = append(responses, buildPublicUserResponse(member, viewerID.(uint)))
	}

	c.JSON(http.StatusOK, responses)
}
