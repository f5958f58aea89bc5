package models

import "gorm.io/gorm"

// Post is the relational shell of a content aggregate. The row carries the
// post's identity, its authorship edge and creation time; the text, image
// reference, likes and comments live in the serialized Content value and are
// mutated as one unit. Version guards the read-modify-write cycle against
// concurrent writers.
type Post struct {
	gorm.Model
	AuthorID uint `gorm:"not null;index"`
	// GroupID is nil for general-feed posts.
	GroupID *uint `gorm:"index"`
	// MembershipID records through which membership a group post was
	// authored. Nil for general-feed posts.
	MembershipID *uint
	Content      string `gorm:"type:text;not null"`
	Version      uint   `gorm:"not null;default:0"`

	Author User   `gorm:"foreignKey:AuthorID"`
	Group  *Group `gorm:"foreignKey:GroupID"`
}
