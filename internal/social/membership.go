package social

import (
	"errors"

	"educonnect/backend/internal/models"

	"gorm.io/gorm"
)

// CreateGroup creates a group and enrolls the creator as its first member.
// Both writes happen in one transaction; a group without its creator's
// membership row is never observable.
func CreateGroup(db *gorm.DB, creatorID uint, name, description string) (models.Group, error) {
	var group models.Group
	err := db.Transaction(func(tx *gorm.DB) error {
		group = models.Group{
			Name:        name,
			Description: description,
			CreatorID:   creatorID,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		membership := models.GroupMembership{
			GroupID: group.ID,
			UserID:  creatorID,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// JoinGroup enrolls a user in a group. Joining a group the user already
// belongs to returns the existing membership unchanged.
func JoinGroup(db *gorm.DB, groupID, userID uint) (models.GroupMembership, error) {
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GroupMembership{}, ErrGroupNotFound
		}
		return models.GroupMembership{}, err
	}

	var membership models.GroupMembership
	err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&membership).Error
	if err == nil {
		return membership, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GroupMembership{}, err
	}

	membership = models.GroupMembership{GroupID: groupID, UserID: userID}
	if err := db.Create(&membership).Error; err != nil {
		return models.GroupMembership{}, err
	}
	return membership, nil
}

// LeaveGroup removes the user's membership row. Leaving a group the user is
// not a member of is a no-op. The row is hard-deleted: messages sent under
// it keep the old membership id and stay attributed to that stint.
func LeaveGroup(db *gorm.DB, groupID, userID uint) error {
	return db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{}).Error
}

// IsMember reports whether the user currently belongs to the group.
func IsMember(db *gorm.DB, groupID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// MemberCount returns the number of current members of a group.
func MemberCount(db *gorm.DB, groupID uint) (int64, error) {
	var count int64
	err := db.Model(&models.GroupMembership{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

// Membership returns the membership row for (group, user).
func Membership(db *gorm.DB, groupID, userID uint) (models.GroupMembership, error) {
	var membership models.GroupMembership
	err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GroupMembership{}, ErrMembershipNotFound
	}
	if err != nil {
		return models.GroupMembership{}, err
	}
	return membership, nil
}

// ResolveGroupMessageSender follows the membership-id hop to the sending
// user. Group messages store the membership row id, so this returns
// ErrMembershipNotFound for messages whose sender has since left the group.
func ResolveGroupMessageSender(db *gorm.DB, membershipID uint) (models.User, error) {
	var membership models.GroupMembership
	if err := db.First(&membership, membershipID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrMembershipNotFound
		}
		return models.User{}, err
	}

	var user models.User
	if err := db.First(&user, membership.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrMembershipNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GroupMembers returns the users currently enrolled in a group.
func GroupMembers(db *gorm.DB, groupID uint) ([]models.User, error) {
	var memberships []models.GroupMembership
	err := db.Preload("User").Where("group_id = ?", groupID).Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	members := make([]models.User, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, m.User)
	}
	return members, nil
}

// ListUserGroups returns the groups a user belongs to.
func ListUserGroups(db *gorm.DB, userID uint) ([]models.Group, error) {
	var memberships []models.GroupMembership
	err := db.Preload("Group").Where("user_id = ?", userID).Find(&memberships).Error
	if err != nil {
		return nil, err
	}

	groups := make([]models.Group, 0, len(memberships))
	for _, m := range memberships {
		groups = append(groups, m.Group)
	}
	return groups, nil
}
