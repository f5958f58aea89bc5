package models

import "time"

// GroupMembership links a user to a group. Its row id, not the user id, is
// the sender key for group messages: a user who leaves and rejoins gets a new
// membership row, so messages sent under the old membership keep their
// original attribution. Rows are hard-deleted on leave so the unique pair
// index allows a clean rejoin.
type GroupMembership struct {
	ID        uint `gorm:"primaryKey"`
	GroupID   uint `gorm:"not null;uniqueIndex:idx_group_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_group_user"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Group Group `gorm:"foreignKey:GroupID"`
	User  User  `gorm:"foreignKey:UserID"`
}
