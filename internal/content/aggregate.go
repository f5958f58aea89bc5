// Package content implements the post aggregate: a post's text, image
// reference, likes and comments stored and rewritten as one serialized
// value. The relational row only contributes identity, the authorship edge
// and creation time.
package content

import (
	"encoding/json"
	"strings"
	"time"
)

// Comment is a value-typed child of the aggregate. Author name and avatar
// are snapshots taken when the comment is created, so old comments keep the
// byline they were written under.
type Comment struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	AuthorAvatar string    `json:"authorAvatar"`
	Timestamp    time.Time `json:"timestamp"`
}

// Aggregate is the serialized content of a post.
type Aggregate struct {
	Text     string    `json:"text"`
	ImageURL string    `json:"image,omitempty"`
	Likes    []uint    `json:"likes"`
	Comments []Comment `json:"comments"`
}

// Decode parses a stored content value. Rows written before the structured
// format was introduced hold plain text; those decode to an aggregate with
// the raw text and no likes or comments. Decode never fails.
func Decode(raw string) Aggregate {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var agg Aggregate
		if err := json.Unmarshal([]byte(trimmed), &agg); err == nil {
			agg.normalize()
			return agg
		}
	}
	return Aggregate{Text: raw, Likes: []uint{}, Comments: []Comment{}}
}

// Encode serializes the aggregate for storage.
func (a *Aggregate) Encode() (string, error) {
	a.normalize()
	blob, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

func (a *Aggregate) normalize() {
	if a.Likes == nil {
		a.Likes = []uint{}
	}
	if a.Comments == nil {
		a.Comments = []Comment{}
	}
}

// ToggleLike removes the actor from the like list if present, otherwise
// appends them. Returns true when the actor likes the post afterwards.
func (a *Aggregate) ToggleLike(actorID uint) bool {
	for i, id := range a.Likes {
		if id == actorID {
			a.Likes = append(a.Likes[:i], a.Likes[i+1:]...)
			return false
		}
	}
	a.Likes = append(a.Likes, actorID)
	return true
}

// IsLikedBy reports whether the user is in the like list.
func (a *Aggregate) IsLikedBy(userID uint) bool {
	for _, id := range a.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
