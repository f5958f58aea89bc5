package content

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"educonnect/backend/internal/database"
	"educonnect/backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	user := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "x",
		AvatarURL:    "avatars/" + name + ".png",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// fakeStore records deletes and can be made to fail.
type fakeStore struct {
	deleted []string
	err     error
}

func (f *fakeStore) Save(data []byte, folder, ext string) (string, error) { return "", nil }
func (f *fakeStore) Delete(ref string) error {
	f.deleted = append(f.deleted, ref)
	return f.err
}

func TestCreatePostEmptyAggregate(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	post, err := CreatePost(db, alice.ID, "Hello", "", nil, nil)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	item, err := GetPost(db, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if item.Text != "Hello" || item.LikesCount != 0 || item.IsLiked || len(item.Comments) != 0 {
		t.Errorf("Fresh post not empty: %+v", item)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post, _ := CreatePost(db, alice.ID, "Hello", "", nil, nil)

	agg, err := ToggleLike(db, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if len(agg.Likes) != 1 || !agg.IsLikedBy(alice.ID) {
		t.Errorf("Expected 1 like by alice, got %v", agg.Likes)
	}
	if agg.IsLikedBy(bob.ID) {
		t.Error("Bob must not read as having liked the post")
	}

	agg, err = ToggleLike(db, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("Second ToggleLike failed: %v", err)
	}
	if len(agg.Likes) != 0 || agg.IsLikedBy(alice.ID) {
		t.Errorf("Like did not round-trip: %v", agg.Likes)
	}
}

func TestToggleLikePostNotFound(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	if _, err := ToggleLike(db, 999, alice.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}
}

func TestToggleLikeBumpsVersion(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	post, _ := CreatePost(db, alice.ID, "Hello", "", nil, nil)

	if _, err := ToggleLike(db, post.ID, alice.ID); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	var reloaded models.Post
	db.First(&reloaded, post.ID)
	if reloaded.Version != post.Version+1 {
		t.Errorf("Expected version %d, got %d", post.Version+1, reloaded.Version)
	}
}

func TestAddCommentSnapshotsAuthor(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post, _ := CreatePost(db, alice.ID, "Hello", "", nil, nil)

	comment, err := AddComment(db, post.ID, bob, "  nice post  ")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if comment.Content != "nice post" {
		t.Errorf("Comment text not trimmed: %q", comment.Content)
	}
	if comment.Author != bob.Name || comment.AuthorAvatar != bob.AvatarURL {
		t.Errorf("Author snapshot wrong: %q / %q", comment.Author, comment.AuthorAvatar)
	}

	// Snapshot must survive a later profile change.
	db.Model(&bob).Update("name", "robert")
	item, _ := GetPost(db, post.ID, alice.ID)
	if len(item.Comments) != 1 || item.Comments[0].Author != "bob" {
		t.Errorf("Comment byline changed after profile update")
	}
}

func TestAddCommentValidation(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	post, _ := CreatePost(db, alice.ID, "Hello", "", nil, nil)

	if _, err := AddComment(db, post.ID, alice, "   \t\n "); !errors.Is(err, ErrEmptyComment) {
		t.Errorf("Expected ErrEmptyComment, got %v", err)
	}
	if _, err := AddComment(db, 999, alice, "hello"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}

	item, _ := GetPost(db, post.ID, alice.ID)
	if len(item.Comments) != 0 {
		t.Errorf("Rejected comment was persisted")
	}
}

func TestDecodeLegacyPlainText(t *testing.T) {
	agg := Decode("just some old text")
	if agg.Text != "just some old text" {
		t.Errorf("Legacy text not preserved: %q", agg.Text)
	}
	if len(agg.Likes) != 0 || len(agg.Comments) != 0 {
		t.Errorf("Legacy decode must yield empty likes/comments")
	}

	// Malformed JSON-ish content falls back the same way.
	agg = Decode("{not valid json")
	if agg.Text != "{not valid json" || len(agg.Likes) != 0 {
		t.Errorf("Malformed content not treated as plain text")
	}
}

func TestListFeedLegacyRowFallback(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	legacy := models.Post{AuthorID: alice.ID, Content: "plain legacy body"}
	db.Create(&legacy)

	items, err := ListFeed(db, alice.ID, nil)
	if err != nil {
		t.Fatalf("ListFeed failed on legacy row: %v", err)
	}
	if len(items) != 1 || items[0].Text != "plain legacy body" {
		t.Errorf("Legacy row not surfaced as plain text")
	}
	if items[0].LikesCount != 0 || items[0].IsLiked || len(items[0].Comments) != 0 {
		t.Errorf("Legacy row has phantom likes or comments")
	}
}

func TestListFeedNewestFirstAndScoped(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	first, _ := CreatePost(db, alice.ID, "first", "", nil, nil)
	db.Model(&first).Update("created_at", time.Now().Add(-time.Hour))
	CreatePost(db, alice.ID, "second", "", nil, nil)

	gid := uint(42)
	mid := uint(7)
	CreatePost(db, alice.ID, "group post", "", &gid, &mid)

	items, err := ListFeed(db, alice.ID, nil)
	if err != nil {
		t.Fatalf("ListFeed failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("General feed must exclude group posts, got %d items", len(items))
	}
	if items[0].Text != "second" || items[1].Text != "first" {
		t.Errorf("Feed not newest-first: %q then %q", items[0].Text, items[1].Text)
	}

	groupItems, _ := ListFeed(db, alice.ID, &gid)
	if len(groupItems) != 1 || groupItems[0].Text != "group post" {
		t.Errorf("Group feed wrong: %d items", len(groupItems))
	}
}

func TestEditPostOwnership(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post, _ := CreatePost(db, alice.ID, "original", "", nil, nil)

	if _, err := EditPost(db, nil, post.ID, bob.ID, "hacked", ImageKeep, ""); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}

	item, _ := GetPost(db, post.ID, alice.ID)
	if item.Text != "original" {
		t.Errorf("Denied edit mutated the post: %q", item.Text)
	}
}

func TestEditPostImageOps(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	store := &fakeStore{}
	post, _ := CreatePost(db, alice.ID, "text", "posts/old.png", nil, nil)

	if _, err := EditPost(db, store, post.ID, alice.ID, "text", ImageReplace, "posts/new.png"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	item, _ := GetPost(db, post.ID, alice.ID)
	if item.ImageURL != "posts/new.png" {
		t.Errorf("Image not replaced: %q", item.ImageURL)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "posts/old.png" {
		t.Errorf("Old image not released: %v", store.deleted)
	}

	if _, err := EditPost(db, store, post.ID, alice.ID, "text", ImageRemove, ""); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	item, _ = GetPost(db, post.ID, alice.ID)
	if item.ImageURL != "" {
		t.Errorf("Image not removed: %q", item.ImageURL)
	}

	// Keep leaves the reference and releases nothing.
	post2, _ := CreatePost(db, alice.ID, "t", "posts/keep.png", nil, nil)
	before := len(store.deleted)
	EditPost(db, store, post2.ID, alice.ID, "new text", ImageKeep, "")
	item, _ = GetPost(db, post2.ID, alice.ID)
	if item.ImageURL != "posts/keep.png" || item.Text != "new text" {
		t.Errorf("Keep op altered the image: %+v", item)
	}
	if len(store.deleted) != before {
		t.Errorf("Keep op released an image")
	}
}

func TestEditPostStorageFailureSwallowed(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	store := &fakeStore{err: errors.New("backend down")}
	post, _ := CreatePost(db, alice.ID, "text", "posts/old.png", nil, nil)

	if _, err := EditPost(db, store, post.ID, alice.ID, "text", ImageRemove, ""); err != nil {
		t.Errorf("Failed image release must not fail the edit: %v", err)
	}
	item, _ := GetPost(db, post.ID, alice.ID)
	if item.ImageURL != "" {
		t.Errorf("Edit not applied despite storage failure")
	}
}

func TestDeletePostOwnershipAndRelease(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	store := &fakeStore{}
	post, _ := CreatePost(db, alice.ID, "text", "posts/img.png", nil, nil)

	if err := DeletePost(db, store, post.ID, bob.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Expected ErrNotOwner, got %v", err)
	}
	if _, err := GetPost(db, post.ID, alice.ID); err != nil {
		t.Fatalf("Denied delete removed the post: %v", err)
	}

	if err := DeletePost(db, store, post.ID, alice.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := GetPost(db, post.ID, alice.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Post still readable after delete")
	}
	if len(store.deleted) != 1 || store.deleted[0] != "posts/img.png" {
		t.Errorf("Attached image not released: %v", store.deleted)
	}

	if err := DeletePost(db, store, 999, alice.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}
}

func TestConcurrentTogglesKeepAllWrites(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	post, _ := CreatePost(db, alice.ID, "Hello", "", nil, nil)

	// Sequential toggles by many users through the CAS path must all land.
	var likers []models.User
	for i := 0; i < 10; i++ {
		likers = append(likers, createTestUser(t, db, fmt.Sprintf("liker%d", i)))
	}
	for _, liker := range likers {
		if _, err := ToggleLike(db, post.ID, liker.ID); err != nil {
			t.Fatalf("ToggleLike failed for %d: %v", liker.ID, err)
		}
	}

	item, _ := GetPost(db, post.ID, alice.ID)
	if item.LikesCount != len(likers) {
		t.Errorf("Lost updates: expected %d likes, got %d", len(likers), item.LikesCount)
	}
}
