package models

import "time"

// DeletedReason explains why a user-clan link ended.
type DeletedReason string

const (
	// ReasonDeclined means the invitee declined the invitation.
	ReasonDeclined DeletedReason = "declined"

	// ReasonRetracted means a clan admin withdrew the invitation before it
	// was answered.
	ReasonRetracted DeletedReason = "retracted"

	// ReasonLeft means the member left the clan voluntarily.
	ReasonLeft DeletedReason = "left"

	// ReasonKicked means the member was removed by a clan admin.
	ReasonKicked DeletedReason = "kicked"
)

// UserClanLink is the relationship between one user and one clan. A single
// row carries the full invitation/membership/departure lifecycle as mutable
// state: it is created as an open invitation and mutated in place from there.
// The composite primary key makes the pair unique for all time, so a pair
// that has run through its lifecycle cannot be re-invited.
//
// Invariant: DeletedReason is set if and only if Deleted is set.
type UserClanLink struct {
	ClanID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`

	Rank          Rank      `gorm:"type:varchar(20);not null;default:'member'"`
	Invited       time.Time `gorm:"not null"`
	Joined        *time.Time
	Deleted       *time.Time
	DeletedReason *DeletedReason

	Clan Clan `gorm:"foreignKey:ClanID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// IsOpenInvitation reports whether the invitation is still unanswered.
func (l *UserClanLink) IsOpenInvitation() bool {
	return l.Joined == nil && l.Deleted == nil
}

// IsMembership reports whether the user is currently a member of the clan.
func (l *UserClanLink) IsMembership() bool {
	return l.Joined != nil && l.Deleted == nil
}

// IsDeclinedInvitation reports whether the invitee declined the invitation.
func (l *UserClanLink) IsDeclinedInvitation() bool {
	return l.Joined == nil && l.deletedFor(ReasonDeclined)
}

// IsRetractedInvitation reports whether the invitation was withdrawn.
func (l *UserClanLink) IsRetractedInvitation() bool {
	return l.Joined == nil && l.deletedFor(ReasonRetracted)
}

// UserLeftClan reports whether the user was a member and left voluntarily.
func (l *UserClanLink) UserLeftClan() bool {
	return l.Joined != nil && l.deletedFor(ReasonLeft)
}

// UserWasKicked reports whether the user was a member and was kicked.
func (l *UserClanLink) UserWasKicked() bool {
	return l.Joined != nil && l.deletedFor(ReasonKicked)
}

func (l *UserClanLink) deletedFor(reason DeletedReason) bool {
	return l.Deleted != nil && l.DeletedReason != nil && *l.DeletedReason == reason
}
