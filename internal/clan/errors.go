package clan

import "errors"

// Every denied clan action maps to its own error value so callers can tell
// the user why the action failed, not just that it did.
var (
	// Not found.
	ErrUserNotFound = errors.New("user not found")
	ErrClanNotFound = errors.New("clan not found")
	ErrNoLink       = errors.New("user has no relation to this clan")

	// Unauthorized.
	ErrNotAMember       = errors.New("user is not a member of this clan")
	ErrInsufficientRank = errors.New("user's rank is too low for this action")
	ErrTargetNotBelow   = errors.New("target's rank is not below the actor's rank")
	ErrRankAboveActor   = errors.New("new rank is above the actor's own rank")
	ErrAdminKick        = errors.New("clan admins cannot be kicked")

	// Invalid link state for the attempted action.
	ErrAlreadyMember      = errors.New("user is already a member of this clan")
	ErrPreviouslyDeclined = errors.New("user previously declined this invitation")
	ErrInviteRetracted    = errors.New("this invitation has been retracted")
	ErrLeftClan           = errors.New("user has left this clan and was not reinvited")
	ErrWasKicked          = errors.New("user was kicked from this clan and was not reinvited")
	ErrNotInvited         = errors.New("user is not invited to join this clan")
	ErrNotOpenInvitation  = errors.New("invitation is not open")

	// Conflict.
	ErrLinkExists = errors.New("user already has a relation to this clan")
	ErrClanExists = errors.New("clan tag or name is already taken")

	// Validation.
	ErrInvalidRank = errors.New("invalid rank")
)
