package social

import "errors"

// Common errors
var (
	ErrSelfRequest     = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrRequestPending  = errors.New("a friend request between these users is already pending")
	ErrNotAddressee    = errors.New("only the addressee can act on this request")
	ErrRequestNotFound = errors.New("friend request not found")
	ErrNotFriends      = errors.New("users are not friends")

	ErrGroupNotFound      = errors.New("group not found")
	ErrMembershipNotFound = errors.New("membership not found")
)
