package models

import "gorm.io/gorm"

// Group represents a study group users can join and post into.
type Group struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Description string
	CreatorID   uint   `gorm:"not null"`
	AvatarURL   string `gorm:"size:512"`

	Creator User `gorm:"foreignKey:CreatorID"`
}
