// Package social implements the friendship state machine and group
// membership rules. All functions take the database handle as their first
// argument and return sentinel errors that the HTTP layer maps to status
// codes; no function writes anything before its authorization checks pass.
package social

import (
	"errors"

	"educonnect/backend/internal/models"

	"gorm.io/gorm"
)

// RelationState describes the relationship between two users as seen from
// either side.
type RelationState string

const (
	StateSelf     RelationState = "self"
	StateNone     RelationState = "none"
	StatePending  RelationState = "pending"
	StateAccepted RelationState = "accepted"
)

// RequestFriendship creates a pending request from requester to addressee.
// Any existing row between the pair, in either direction, blocks the request
// so two users can never hold duplicate or competing requests.
func RequestFriendship(db *gorm.DB, requesterID, addresseeID uint) (models.Friendship, error) {
	if requesterID == addresseeID {
		return models.Friendship{}, ErrSelfRequest
	}

	var existing models.Friendship
	err := db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		requesterID, addresseeID, addresseeID, requesterID,
	).First(&existing).Error
	if err == nil {
		if existing.Status == models.StatusAccepted {
			return models.Friendship{}, ErrAlreadyFriends
		}
		return models.Friendship{}, ErrRequestPending
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Friendship{}, err
	}

	request := models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.StatusPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return models.Friendship{}, err
	}
	return request, nil
}

// AcceptFriendship flips the addressed request to accepted and upserts the
// inverse edge, making the friendship symmetric via two rows. Only the
// addressee of the row may accept. Accepting an already-accepted row is a
// no-op that still repairs a missing inverse edge.
func AcceptFriendship(db *gorm.DB, requestID, actingUserID uint) (models.Friendship, error) {
	var request models.Friendship
	if err := db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Friendship{}, ErrRequestNotFound
		}
		return models.Friendship{}, err
	}

	if request.AddresseeID != actingUserID {
		return models.Friendship{}, ErrNotAddressee
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if request.Status != models.StatusAccepted {
			if err := tx.Model(&request).Update("status", models.StatusAccepted).Error; err != nil {
				return err
			}
		}

		var inverse models.Friendship
		err := tx.Where("requester_id = ? AND addressee_id = ?", request.AddresseeID, request.RequesterID).
			First(&inverse).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			inverse = models.Friendship{
				RequesterID: request.AddresseeID,
				AddresseeID: request.RequesterID,
				Status:      models.StatusAccepted,
			}
			return tx.Create(&inverse).Error
		case err != nil:
			return err
		case inverse.Status != models.StatusAccepted:
			return tx.Model(&inverse).Update("status", models.StatusAccepted).Error
		}
		return nil
	})
	if err != nil {
		return models.Friendship{}, err
	}

	request.Status = models.StatusAccepted
	return request, nil
}

// RejectFriendship deletes the addressed request. The delete is scoped to
// (id, addressee) so a user can only reject requests sent to them; a
// non-matching id reports ErrRequestNotFound rather than silently succeeding.
func RejectFriendship(db *gorm.DB, requestID, actingUserID uint) error {
	result := db.Where("id = ? AND addressee_id = ?", requestID, actingUserID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Unfriend removes an accepted friendship in both directions. Both directed
// edges are deleted in one transaction so an observer never sees a
// half-removed pair.
func Unfriend(db *gorm.DB, userID, friendID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where(
			"((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)) AND status = ?",
			userID, friendID, friendID, userID, models.StatusAccepted,
		).Delete(&models.Friendship{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFriends
		}
		return nil
	})
}

// RelationshipStatus reports the state between two users. A single accepted
// edge in either direction counts as accepted, so an asymmetric pair left by
// an interrupted accept still reads as a friendship.
func RelationshipStatus(db *gorm.DB, userID, otherID uint) (RelationState, error) {
	if userID == otherID {
		return StateSelf, nil
	}

	var edges []models.Friendship
	err := db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userID, otherID, otherID, userID,
	).Find(&edges).Error
	if err != nil {
		return StateNone, err
	}

	if len(edges) == 0 {
		return StateNone, nil
	}
	for _, edge := range edges {
		if edge.Status == models.StatusAccepted {
			return StateAccepted, nil
		}
	}
	return StatePending, nil
}

// ListFriends returns the users the given user holds an accepted edge with.
// Both directions are scanned and deduplicated to tolerate asymmetric pairs.
func ListFriends(db *gorm.DB, userID uint) ([]models.User, error) {
	var edges []models.Friendship
	err := db.Where(
		"(requester_id = ? OR addressee_id = ?) AND status = ?",
		userID, userID, models.StatusAccepted,
	).Find(&edges).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var friendIDs []uint
	for _, edge := range edges {
		friendID := edge.RequesterID
		if friendID == userID {
			friendID = edge.AddresseeID
		}
		if !seen[friendID] {
			seen[friendID] = true
			friendIDs = append(friendIDs, friendID)
		}
	}

	if len(friendIDs) == 0 {
		return []models.User{}, nil
	}

	var friends []models.User
	if err := db.Where("id IN ?", friendIDs).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// ListPendingRequests returns the incoming pending requests for a user with
// the requester preloaded.
func ListPendingRequests(db *gorm.DB, userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := db.Preload("Requester").
		Where("addressee_id = ? AND status = ?", userID, models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
