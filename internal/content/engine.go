package content

import (
	"errors"
	"log"
	"strings"
	"time"

	"educonnect/backend/internal/models"
	"educonnect/backend/internal/storage"

	"gorm.io/gorm"
)

// Common errors
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotOwner      = errors.New("only the author can modify this post")
	ErrEmptyComment  = errors.New("comment must contain at least one non-whitespace character")
	ErrWriteConflict = errors.New("post was modified concurrently, try again")
)

// maxWriteRetries bounds the optimistic read-modify-write loop. Each retry
// re-reads the row, so a loser of a version race reapplies its change on
// fresh state instead of silently dropping the winner's write.
const maxWriteRetries = 5

// CreatePost persists a new post authored by authorID. groupID and
// membershipID are nil for general-feed posts; group posts record both the
// group and the membership the author posted through.
func CreatePost(db *gorm.DB, authorID uint, text, imageURL string, groupID, membershipID *uint) (models.Post, error) {
	agg := Aggregate{Text: text, ImageURL: imageURL}
	blob, err := agg.Encode()
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		AuthorID:     authorID,
		GroupID:      groupID,
		MembershipID: membershipID,
		Content:      blob,
	}
	if err := db.Create(&post).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// mutate runs an optimistic read-modify-write cycle on a post's aggregate.
// fn sees the freshly loaded row and its decoded aggregate; returning an
// error aborts with no write. The write is a compare-and-swap on the
// version column and the whole cycle retries on conflict.
func mutate(db *gorm.DB, postID uint, fn func(post *models.Post, agg *Aggregate) error) (models.Post, Aggregate, error) {
	for attempt := 0; attempt < maxWriteRetries; attempt++ {
		var post models.Post
		if err := db.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Post{}, Aggregate{}, ErrPostNotFound
			}
			return models.Post{}, Aggregate{}, err
		}

		agg := Decode(post.Content)
		if err := fn(&post, &agg); err != nil {
			return models.Post{}, Aggregate{}, err
		}

		blob, err := agg.Encode()
		if err != nil {
			return models.Post{}, Aggregate{}, err
		}

		result := db.Model(&models.Post{}).
			Where("id = ? AND version = ?", post.ID, post.Version).
			Updates(map[string]interface{}{
				"content": blob,
				"version": post.Version + 1,
			})
		if result.Error != nil {
			return models.Post{}, Aggregate{}, result.Error
		}
		if result.RowsAffected == 1 {
			post.Content = blob
			post.Version++
			return post, agg, nil
		}
		// Version moved under us; reload and reapply.
	}
	return models.Post{}, Aggregate{}, ErrWriteConflict
}

// ToggleLike adds the actor to the post's like list, or removes them if
// already present, and returns the updated aggregate.
func ToggleLike(db *gorm.DB, postID, actorID uint) (Aggregate, error) {
	_, agg, err := mutate(db, postID, func(_ *models.Post, agg *Aggregate) error {
		agg.ToggleLike(actorID)
		return nil
	})
	return agg, err
}

// AddComment appends a comment to the post. The author's name and avatar
// are snapshotted from the passed user record. The comment id is
// timestamp-based; it only needs to be unique within the post for display
// ordering.
func AddComment(db *gorm.DB, postID uint, author models.User, text string) (Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Comment{}, ErrEmptyComment
	}

	comment := Comment{
		ID:           time.Now().UnixMilli(),
		Content:      trimmed,
		Author:       author.Name,
		AuthorAvatar: author.AvatarURL,
		Timestamp:    time.Now(),
	}

	_, _, err := mutate(db, postID, func(_ *models.Post, agg *Aggregate) error {
		agg.Comments = append(agg.Comments, comment)
		return nil
	})
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// ImageOp describes what an edit does to the post's image.
type ImageOp int

const (
	// ImageKeep leaves the stored image reference untouched.
	ImageKeep ImageOp = iota
	// ImageReplace swaps in a new reference and releases the old one.
	ImageReplace
	// ImageRemove clears the reference and releases the old one.
	ImageRemove
)

// EditPost replaces the post's text and applies the image operation. Only
// the author may edit. A replaced or removed image is released through the
// store best-effort: a failed release is logged and the edit still succeeds.
func EditPost(db *gorm.DB, store storage.Storage, postID, actingUserID uint, newText string, op ImageOp, newImageRef string) (models.Post, error) {
	var oldImage string
	post, _, err := mutate(db, postID, func(post *models.Post, agg *Aggregate) error {
		if post.AuthorID != actingUserID {
			return ErrNotOwner
		}
		agg.Text = newText
		switch op {
		case ImageReplace:
			oldImage = agg.ImageURL
			agg.ImageURL = newImageRef
		case ImageRemove:
			oldImage = agg.ImageURL
			agg.ImageURL = ""
		}
		return nil
	})
	if err != nil {
		return models.Post{}, err
	}

	releaseImage(store, oldImage)
	return post, nil
}

// DeletePost removes a post. Only the author may delete. Any attached image
// is released best-effort before the row goes away.
func DeletePost(db *gorm.DB, store storage.Storage, postID, actingUserID uint) error {
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if post.AuthorID != actingUserID {
		return ErrNotOwner
	}

	agg := Decode(post.Content)
	releaseImage(store, agg.ImageURL)

	return db.Unscoped().Delete(&post).Error
}

func releaseImage(store storage.Storage, ref string) {
	if store == nil || ref == "" {
		return
	}
	if err := store.Delete(ref); err != nil {
		log.Printf("Failed to release stored image %s: %v", ref, err)
	}
}

// FeedItem is a post prepared for the presentation layer: the aggregate is
// decoded and the like list is reduced to a count plus the viewer's own
// membership in it.
type FeedItem struct {
	ID           uint      `json:"id"`
	AuthorID     uint      `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	GroupID      *uint     `json:"group_id,omitempty"`
	Text         string    `json:"text"`
	ImageURL     string    `json:"image_url,omitempty"`
	LikesCount   int       `json:"likes_count"`
	IsLiked      bool      `json:"is_liked"`
	Comments     []Comment `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewFeedItem decodes a post's aggregate from the viewer's perspective.
func NewFeedItem(post models.Post, viewerID uint) FeedItem {
	agg := Decode(post.Content)
	return FeedItem{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		AuthorName:   post.Author.Name,
		AuthorAvatar: post.Author.AvatarURL,
		GroupID:      post.GroupID,
		Text:         agg.Text,
		ImageURL:     agg.ImageURL,
		LikesCount:   len(agg.Likes),
		IsLiked:      agg.IsLikedBy(viewerID),
		Comments:     agg.Comments,
		CreatedAt:    post.CreatedAt,
	}
}

// ListFeed returns posts newest-first for the viewer. A nil groupID selects
// the general feed; otherwise the given group's posts.
func ListFeed(db *gorm.DB, viewerID uint, groupID *uint) ([]FeedItem, error) {
	var posts []models.Post
	query := db.Preload("Author").Order("created_at DESC")
	if groupID == nil {
		query = query.Where("group_id IS NULL")
	} else {
		query = query.Where("group_id = ?", *groupID)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		items = append(items, NewFeedItem(post, viewerID))
	}
	return items, nil
}

// GetPost loads a single post as a feed item.
func GetPost(db *gorm.DB, postID, viewerID uint) (FeedItem, error) {
	var post models.Post
	if err := db.Preload("Author").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FeedItem{}, ErrPostNotFound
		}
		return FeedItem{}, err
	}
	return NewFeedItem(post, viewerID), nil
}
