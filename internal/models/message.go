package models

import "gorm.io/gorm"

// DirectMessage is a private chat message between two users.
type DirectMessage struct {
	gorm.Model
	SenderID    uint   `gorm:"not null;index"`
	RecipientID uint   `gorm:"not null;index"`
	Content     string `gorm:"not null"`

	Sender    User `gorm:"foreignKey:SenderID"`
	Recipient User `gorm:"foreignKey:RecipientID"`
}

// GroupMessage is a chat message within a group. The sender is stored as the
// membership row id rather than the user id; see GroupMembership.
type GroupMessage struct {
	gorm.Model
	GroupID      uint   `gorm:"not null;index"`
	MembershipID uint   `gorm:"not null"`
	Content      string `gorm:"not null"`

	Group      Group           `gorm:"foreignKey:GroupID"`
	Membership GroupMembership `gorm:"foreignKey:MembershipID"`
}
