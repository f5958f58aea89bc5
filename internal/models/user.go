package models

import "gorm.io/gorm"

// User represents a registered student on the platform.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Course       string `gorm:"size:255"`
	Year         string `gorm:"size:50"`
	AvatarURL    string `gorm:"size:512"`
}
