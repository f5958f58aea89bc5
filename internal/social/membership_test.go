package social

import (
	"errors"
	"testing"

	"educonnect/backend/internal/models"
)

func TestCreateGroupEnrollsCreator(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	group, err := CreateGroup(db, alice.ID, "Algorithms", "Weekly study sessions")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	member, _ := IsMember(db, group.ID, alice.ID)
	if !member {
		t.Error("Creator is not a member of the new group")
	}
	count, _ := MemberCount(db, group.ID)
	if count != 1 {
		t.Errorf("Expected member count 1, got %d", count)
	}
}

func TestJoinGroupIdempotent(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group, _ := CreateGroup(db, alice.ID, "Algorithms", "")

	first, err := JoinGroup(db, group.ID, bob.ID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	second, err := JoinGroup(db, group.ID, bob.ID)
	if err != nil {
		t.Fatalf("Repeated join errored: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Repeated join created a new row: %d vs %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.GroupMembership{}).Where("group_id = ? AND user_id = ?", group.ID, bob.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 membership row, got %d", count)
	}
}

func TestJoinGroupNotFound(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")

	if _, err := JoinGroup(db, 999, alice.ID); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("Expected ErrGroupNotFound, got %v", err)
	}
}

func TestLeaveGroupNoopWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group, _ := CreateGroup(db, alice.ID, "Algorithms", "")

	if err := LeaveGroup(db, group.ID, bob.ID); err != nil {
		t.Errorf("Leaving a group the user is not in must be a no-op, got %v", err)
	}
	count, _ := MemberCount(db, group.ID)
	if count != 1 {
		t.Errorf("Member count changed by no-op leave: %d", count)
	}
}

func TestMembershipIDChangesAcrossRejoin(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group, _ := CreateGroup(db, alice.ID, "Algorithms", "")

	first, _ := JoinGroup(db, group.ID, bob.ID)

	sender, err := ResolveGroupMessageSender(db, first.ID)
	if err != nil {
		t.Fatalf("ResolveGroupMessageSender failed: %v", err)
	}
	if sender.ID != bob.ID {
		t.Errorf("Resolved wrong sender: %d", sender.ID)
	}

	if err := LeaveGroup(db, group.ID, bob.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}

	// The old membership id must not resolve anymore: messages sent under it
	// stay attributed to the departed stint, not the rejoined one.
	if _, err := ResolveGroupMessageSender(db, first.ID); !errors.Is(err, ErrMembershipNotFound) {
		t.Errorf("Expected ErrMembershipNotFound for departed membership, got %v", err)
	}

	second, _ := JoinGroup(db, group.ID, bob.ID)
	if second.ID == first.ID {
		t.Errorf("Rejoin reused the old membership id %d", first.ID)
	}
}

func TestGroupMembersAndUserGroups(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	group, _ := CreateGroup(db, alice.ID, "Algorithms", "")
	JoinGroup(db, group.ID, bob.ID)

	members, err := GroupMembers(db, group.ID)
	if err != nil {
		t.Fatalf("GroupMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}

	groups, err := ListUserGroups(db, bob.ID)
	if err != nil {
		t.Fatalf("ListUserGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != group.ID {
		t.Errorf("Expected bob in exactly one group")
	}
}
