// Package clan implements the clan membership state machine and its
// rank-based authorization rules.
//
// A user's relation to a clan is a single UserClanLink row mutated in place
// through its whole lifecycle: open invitation, then membership or a
// declined/retracted invitation, then departure by leaving or being kicked.
// The (user, clan) pair is unique for all time, so once a link has reached a
// terminal state the pair cannot be invited again; a second invite fails with
// ErrLinkExists. That behavior is inherited and possibly surprising, but it
// is what game clients rely on today.
package clan

import (
	"errors"
	"fmt"
	"time"

	"metaserver/backend/internal/models"
	"metaserver/backend/pkg/clantag"

	"gorm.io/gorm"
)

// Service runs clan operations against the database.
type Service struct {
	db *gorm.DB
}

// NewService creates a clan service on top of db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetLink fetches the link row for (userID, clanID). The second return value
// is false when no link exists.
func (s *Service) GetLink(userID, clanID uint) (*models.UserClanLink, bool, error) {
	var link models.UserClanLink
	err := s.db.Where("user_id = ? AND clan_id = ?", userID, clanID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &link, true, nil
}

// Create registers a new clan owned by ownerID. The owner becomes the clan's
// first member at rank owner in the same transaction.
func (s *Service) Create(ownerID uint, tag, name, icon string) (*models.Clan, error) {
	tag, err := clantag.Validate(tag)
	if err != nil {
		return nil, err
	}
	if icon != "" {
		if err := ValidateIcon(icon); err != nil {
			return nil, err
		}
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()
	newClan := models.Clan{Tag: tag, Name: name, Icon: icon}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newClan).Error; err != nil {
			return err
		}
		link := models.UserClanLink{
			ClanID:  newClan.ID,
			UserID:  owner.ID,
			Rank:    models.RankOwner,
			Invited: now,
			Joined:  &now,
		}
		return tx.Create(&link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrClanExists
		}
		return nil, err
	}
	return &newClan, nil
}

// Invite creates an open invitation from clanID to inviteeID. The inviter
// must be a member of the clan at rank admin or above. Any existing link for
// the (invitee, clan) pair, whatever its state, makes the invite a conflict.
func (s *Service) Invite(inviterID, inviteeID, clanID uint) error {
	if err := s.requireAdmin(inviterID, clanID); err != nil {
		return err
	}

	var invitee models.User
	if err := s.db.First(&invitee, inviteeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	link := models.UserClanLink{
		ClanID:  clanID,
		UserID:  invitee.ID,
		Rank:    models.RankMember,
		Invited: time.Now(),
	}
	if err := s.db.Create(&link).Error; err != nil {
		// The composite primary key rejects a second link for the pair, which
		// also serializes two concurrent invites for the same pair.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrLinkExists
		}
		return err
	}
	return nil
}

// Respond answers an open invitation for (userID, clanID). Accepting turns
// the link into a membership; declining closes it with reason declined.
// Responding to a link in any other state fails with an error naming that
// state.
func (s *Service) Respond(userID, clanID uint, accept bool) error {
	link, ok, err := s.GetLink(userID, clanID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInvited
	}
	if !link.IsOpenInvitation() {
		return linkStateError(link)
	}

	now := time.Now()
	if accept {
		link.Joined = &now
	} else {
		reason := models.ReasonDeclined
		link.Deleted = &now
		link.DeletedReason = &reason
	}
	return s.db.Save(link).Error
}

// Retract withdraws an open invitation. The actor must be a member of the
// clan at rank admin or above.
func (s *Service) Retract(actorID, inviteeID, clanID uint) error {
	if err := s.requireAdmin(actorID, clanID); err != nil {
		return err
	}

	link, ok, err := s.GetLink(inviteeID, clanID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoLink
	}
	if !link.IsOpenInvitation() {
		return ErrNotOpenInvitation
	}

	now := time.Now()
	reason := models.ReasonRetracted
	link.Deleted = &now
	link.DeletedReason = &reason
	return s.db.Save(link).Error
}

// Leave ends the caller's own membership with reason left.
func (s *Service) Leave(userID, clanID uint) error {
	link, ok, err := s.GetLink(userID, clanID)
	if err != nil {
		return err
	}
	if !ok || !link.IsMembership() {
		return ErrNotAMember
	}

	now := time.Now()
	reason := models.ReasonLeft
	link.Deleted = &now
	link.DeletedReason = &reason
	return s.db.Save(link).Error
}

// Kick removes targetID from the clan. The actor must be a member at rank
// admin or above; members at rank admin or above cannot be kicked.
func (s *Service) Kick(actorID, targetID, clanID uint) error {
	if err := s.requireAdmin(actorID, clanID); err != nil {
		return err
	}

	target, ok, err := s.GetLink(targetID, clanID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoLink
	}
	if !target.IsMembership() {
		return ErrNotAMember
	}
	if target.Rank.AtLeast(models.RankAdmin) {
		return ErrAdminKick
	}

	now := time.Now()
	reason := models.ReasonKicked
	target.Deleted = &now
	target.DeletedReason = &reason
	return s.db.Save(target).Error
}

// UpdateRank sets targetID's rank within the clan. The actor must strictly
// outrank the target's current rank and may not assign a rank above their
// own, so peers and superiors are untouchable and nobody can promote past
// themselves.
func (s *Service) UpdateRank(actorID, targetID, clanID uint, newRank models.Rank) (*models.UserClanLink, error) {
	if !newRank.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRank, newRank)
	}

	actor, ok, err := s.GetLink(actorID, clanID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoLink
	}
	target, ok, err := s.GetLink(targetID, clanID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoLink
	}

	if !actor.Rank.Outranks(target.Rank) {
		return nil, ErrTargetNotBelow
	}
	if newRank.Outranks(actor.Rank) {
		return nil, ErrRankAboveActor
	}

	target.Rank = newRank
	if err := s.db.Save(target).Error; err != nil {
		return nil, err
	}
	return target, nil
}

// UpdateIcon replaces the clan icon. The actor must be a member at rank
// admin or above.
func (s *Service) UpdateIcon(actorID, clanID uint, icon string) (*models.Clan, error) {
	if err := s.requireAdmin(actorID, clanID); err != nil {
		return nil, err
	}
	if err := ValidateIcon(icon); err != nil {
		return nil, err
	}

	var c models.Clan
	if err := s.db.First(&c, clanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClanNotFound
		}
		return nil, err
	}
	c.Icon = icon
	if err := s.db.Save(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Members lists the clan's current membership links with users preloaded.
func (s *Service) Members(clanID uint) ([]models.UserClanLink, error) {
	var links []models.UserClanLink
	err := s.db.Preload("User").
		Where("clan_id = ? AND joined IS NOT NULL AND deleted IS NULL", clanID).
		Find(&links).Error
	return links, err
}

// OpenInvites lists the clan's unanswered invitations with users preloaded.
func (s *Service) OpenInvites(clanID uint) ([]models.UserClanLink, error) {
	var links []models.UserClanLink
	err := s.db.Preload("User").
		Where("clan_id = ? AND joined IS NULL AND deleted IS NULL", clanID).
		Find(&links).Error
	return links, err
}

// InvitesForUser lists the user's open invitations with clans preloaded.
func (s *Service) InvitesForUser(userID uint) ([]models.UserClanLink, error) {
	var links []models.UserClanLink
	err := s.db.Preload("Clan").
		Where("user_id = ? AND joined IS NULL AND deleted IS NULL", userID).
		Find(&links).Error
	return links, err
}

// MembershipsForUser lists the user's current membership links with clans
// preloaded.
func (s *Service) MembershipsForUser(userID uint) ([]models.UserClanLink, error) {
	var links []models.UserClanLink
	err := s.db.Preload("Clan").
		Where("user_id = ? AND joined IS NOT NULL AND deleted IS NULL", userID).
		Find(&links).Error
	return links, err
}

// requireAdmin checks that actorID is a member of clanID at rank admin or
// above.
func (s *Service) requireAdmin(actorID, clanID uint) error {
	link, ok, err := s.GetLink(actorID, clanID)
	if err != nil {
		return err
	}
	if !ok || !link.IsMembership() {
		return ErrNotAMember
	}
	if !link.Rank.AtLeast(models.RankAdmin) {
		return ErrInsufficientRank
	}
	return nil
}

// linkStateError maps a non-open link to the error naming its state.
func linkStateError(link *models.UserClanLink) error {
	switch {
	case link.IsMembership():
		return ErrAlreadyMember
	case link.IsDeclinedInvitation():
		return ErrPreviouslyDeclined
	case link.IsRetractedInvitation():
		return ErrInviteRetracted
	case link.UserLeftClan():
		return ErrLeftClan
	case link.UserWasKicked():
		return ErrWasKicked
	}
	return ErrNotInvited
}
