package clan

import (
	"fmt"
	"testing"

	"metaserver/backend/internal/database"
	"metaserver/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Username:     name + "@example.com",
		DisplayName:  name,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// newClanWithOwner registers a clan and returns it with its owner.
func newClanWithOwner(t *testing.T, svc *Service, db *gorm.DB, tag string) (models.Clan, models.User) {
	t.Helper()
	owner := createUser(t, db, "owner-"+tag)
	cl, err := svc.Create(owner.ID, tag, "clan "+tag, "")
	require.NoError(t, err)
	return *cl, owner
}

// addMember invites a fresh user and accepts the invitation at the given rank.
func addMember(t *testing.T, svc *Service, db *gorm.DB, clanID uint, owner models.User, name string, rank models.Rank) models.User {
	t.Helper()
	user := createUser(t, db, name)
	require.NoError(t, svc.Invite(owner.ID, user.ID, clanID))
	require.NoError(t, svc.Respond(user.ID, clanID, true))
	if rank != models.RankMember {
		_, err := svc.UpdateRank(owner.ID, user.ID, clanID, rank)
		require.NoError(t, err)
	}
	return user
}

func TestCreateClanMakesOwnerMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")

	link, ok, err := svc.GetLink(owner.ID, cl.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, link.IsMembership())
	assert.Equal(t, models.RankOwner, link.Rank)
	assert.NotNil(t, link.Joined)
	assert.Nil(t, link.Deleted)
}

func TestCreateClanRejectsBadTagAndDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	owner := createUser(t, db, "founder")

	_, err := svc.Create(owner.ID, "TOOLONG", "Long Tags", "")
	assert.Error(t, err)

	_, err = svc.Create(owner.ID, "BBBB", "The Bees", "")
	require.NoError(t, err)

	other := createUser(t, db, "other")
	_, err = svc.Create(other.ID, "BBBB", "Other Name", "")
	assert.ErrorIs(t, err, ErrClanExists)
	_, err = svc.Create(other.ID, "CCCC", "The Bees", "")
	assert.ErrorIs(t, err, ErrClanExists)
}

func TestInviteAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	member := addMember(t, svc, db, cl.ID, owner, "plain", models.RankMember)
	outsider := createUser(t, db, "outsider")
	invitee := createUser(t, db, "invitee")

	assert.ErrorIs(t, svc.Invite(outsider.ID, invitee.ID, cl.ID), ErrNotAMember)
	assert.ErrorIs(t, svc.Invite(member.ID, invitee.ID, cl.ID), ErrInsufficientRank)
	assert.ErrorIs(t, svc.Invite(owner.ID, 99999, cl.ID), ErrUserNotFound)

	require.NoError(t, svc.Invite(owner.ID, invitee.ID, cl.ID))

	link, ok, err := svc.GetLink(invitee.ID, cl.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, link.IsOpenInvitation())
}

func TestInviteIsUniquePerPairForever(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	invitee := createUser(t, db, "invitee")

	require.NoError(t, svc.Invite(owner.ID, invitee.ID, cl.ID))

	// Second invite while the first is open.
	assert.ErrorIs(t, svc.Invite(owner.ID, invitee.ID, cl.ID), ErrLinkExists)

	// The pair stays exhausted even after the invitation is declined. This
	// is inherited behavior: terminal links are never reopened.
	require.NoError(t, svc.Respond(invitee.ID, cl.ID, false))
	assert.ErrorIs(t, svc.Invite(owner.ID, invitee.ID, cl.ID), ErrLinkExists)
}

func TestRespondTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")

	accepter := createUser(t, db, "accepter")
	require.NoError(t, svc.Invite(owner.ID, accepter.ID, cl.ID))
	require.NoError(t, svc.Respond(accepter.ID, cl.ID, true))
	link, _, err := svc.GetLink(accepter.ID, cl.ID)
	require.NoError(t, err)
	assert.True(t, link.IsMembership())
	assert.Equal(t, models.RankMember, link.Rank)

	decliner := createUser(t, db, "decliner")
	require.NoError(t, svc.Invite(owner.ID, decliner.ID, cl.ID))
	require.NoError(t, svc.Respond(decliner.ID, cl.ID, false))
	link, _, err = svc.GetLink(decliner.ID, cl.ID)
	require.NoError(t, err)
	assert.True(t, link.IsDeclinedInvitation())
	assert.NotNil(t, link.Deleted)
	require.NotNil(t, link.DeletedReason)
	assert.Equal(t, models.ReasonDeclined, *link.DeletedReason)
}

func TestRespondReportsLinkState(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")

	// No link at all.
	stranger := createUser(t, db, "stranger")
	assert.ErrorIs(t, svc.Respond(stranger.ID, cl.ID, true), ErrNotInvited)

	// Already a member.
	assert.ErrorIs(t, svc.Respond(owner.ID, cl.ID, true), ErrAlreadyMember)

	// Previously declined.
	decliner := createUser(t, db, "decliner")
	require.NoError(t, svc.Invite(owner.ID, decliner.ID, cl.ID))
	require.NoError(t, svc.Respond(decliner.ID, cl.ID, false))
	assert.ErrorIs(t, svc.Respond(decliner.ID, cl.ID, true), ErrPreviouslyDeclined)

	// Retracted.
	retractee := createUser(t, db, "retractee")
	require.NoError(t, svc.Invite(owner.ID, retractee.ID, cl.ID))
	require.NoError(t, svc.Retract(owner.ID, retractee.ID, cl.ID))
	assert.ErrorIs(t, svc.Respond(retractee.ID, cl.ID, true), ErrInviteRetracted)

	// Left.
	leaver := addMember(t, svc, db, cl.ID, owner, "leaver", models.RankMember)
	require.NoError(t, svc.Leave(leaver.ID, cl.ID))
	assert.ErrorIs(t, svc.Respond(leaver.ID, cl.ID, true), ErrLeftClan)

	// Kicked.
	kicked := addMember(t, svc, db, cl.ID, owner, "kicked", models.RankMember)
	require.NoError(t, svc.Kick(owner.ID, kicked.ID, cl.ID))
	assert.ErrorIs(t, svc.Respond(kicked.ID, cl.ID, true), ErrWasKicked)
}

func TestRetractRequiresOpenInvitation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	member := addMember(t, svc, db, cl.ID, owner, "member", models.RankMember)

	assert.ErrorIs(t, svc.Retract(owner.ID, member.ID, cl.ID), ErrNotOpenInvitation)
	assert.ErrorIs(t, svc.Retract(owner.ID, 99999, cl.ID), ErrNoLink)
	assert.ErrorIs(t, svc.Retract(member.ID, owner.ID, cl.ID), ErrInsufficientRank)
}

func TestLeave(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	member := addMember(t, svc, db, cl.ID, owner, "member", models.RankMember)

	require.NoError(t, svc.Leave(member.ID, cl.ID))
	link, _, err := svc.GetLink(member.ID, cl.ID)
	require.NoError(t, err)
	assert.True(t, link.UserLeftClan())

	// Leaving twice is no longer a membership.
	assert.ErrorIs(t, svc.Leave(member.ID, cl.ID), ErrNotAMember)

	outsider := createUser(t, db, "outsider")
	assert.ErrorIs(t, svc.Leave(outsider.ID, cl.ID), ErrNotAMember)
}

func TestKickAuthorizationMatrix(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	admin := addMember(t, svc, db, cl.ID, owner, "admin", models.RankAdmin)
	admin2 := addMember(t, svc, db, cl.ID, owner, "admin2", models.RankAdmin)
	member := addMember(t, svc, db, cl.ID, owner, "member", models.RankMember)
	member2 := addMember(t, svc, db, cl.ID, owner, "member2", models.RankMember)

	// Members cannot kick at all.
	assert.ErrorIs(t, svc.Kick(member.ID, member2.ID, cl.ID), ErrInsufficientRank)

	// Admins and owners cannot be kicked, not even by the owner.
	assert.ErrorIs(t, svc.Kick(admin.ID, admin2.ID, cl.ID), ErrAdminKick)
	assert.ErrorIs(t, svc.Kick(admin.ID, owner.ID, cl.ID), ErrAdminKick)
	assert.ErrorIs(t, svc.Kick(owner.ID, admin.ID, cl.ID), ErrAdminKick)

	// An open invitee is not a member yet and cannot be kicked.
	invitee := createUser(t, db, "invitee")
	require.NoError(t, svc.Invite(owner.ID, invitee.ID, cl.ID))
	assert.ErrorIs(t, svc.Kick(owner.ID, invitee.ID, cl.ID), ErrNotAMember)

	// Admin kicks member.
	require.NoError(t, svc.Kick(admin.ID, member.ID, cl.ID))
	link, _, err := svc.GetLink(member.ID, cl.ID)
	require.NoError(t, err)
	assert.True(t, link.UserWasKicked())

	// Owner kicks member.
	require.NoError(t, svc.Kick(owner.ID, member2.ID, cl.ID))
}

func TestUpdateRankMatrix(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	admin := addMember(t, svc, db, cl.ID, owner, "admin", models.RankAdmin)
	member := addMember(t, svc, db, cl.ID, owner, "member", models.RankMember)
	member2 := addMember(t, svc, db, cl.ID, owner, "member2", models.RankMember)

	// Owner promotes a member to admin.
	link, err := svc.UpdateRank(owner.ID, member.ID, cl.ID, models.RankAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RankAdmin, link.Rank)

	// An admin cannot touch a peer or a superior.
	_, err = svc.UpdateRank(admin.ID, member.ID, cl.ID, models.RankMember)
	assert.ErrorIs(t, err, ErrTargetNotBelow)
	_, err = svc.UpdateRank(admin.ID, owner.ID, cl.ID, models.RankMember)
	assert.ErrorIs(t, err, ErrTargetNotBelow)

	// An admin cannot promote anyone to owner.
	_, err = svc.UpdateRank(admin.ID, member2.ID, cl.ID, models.RankOwner)
	assert.ErrorIs(t, err, ErrRankAboveActor)

	// An admin may promote a member up to admin.
	link, err = svc.UpdateRank(admin.ID, member2.ID, cl.ID, models.RankAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RankAdmin, link.Rank)

	// Unknown ranks are rejected before any lookup.
	_, err = svc.UpdateRank(owner.ID, member.ID, cl.ID, models.Rank("general"))
	assert.ErrorIs(t, err, ErrInvalidRank)

	// Both sides need a link.
	outsider := createUser(t, db, "outsider")
	_, err = svc.UpdateRank(outsider.ID, member.ID, cl.ID, models.RankMember)
	assert.ErrorIs(t, err, ErrNoLink)
	_, err = svc.UpdateRank(owner.ID, outsider.ID, cl.ID, models.RankMember)
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestDeletedReasonInvariant(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	decliner := createUser(t, db, "decliner")
	require.NoError(t, svc.Invite(owner.ID, decliner.ID, cl.ID))
	require.NoError(t, svc.Respond(decliner.ID, cl.ID, false))
	leaver := addMember(t, svc, db, cl.ID, owner, "leaver", models.RankMember)
	require.NoError(t, svc.Leave(leaver.ID, cl.ID))
	kicked := addMember(t, svc, db, cl.ID, owner, "kicked", models.RankMember)
	require.NoError(t, svc.Kick(owner.ID, kicked.ID, cl.ID))

	var links []models.UserClanLink
	require.NoError(t, db.Find(&links).Error)
	require.NotEmpty(t, links)
	for _, link := range links {
		if link.Deleted != nil {
			assert.NotNil(t, link.DeletedReason, "deleted link %d/%d must carry a reason", link.UserID, link.ClanID)
		} else {
			assert.Nil(t, link.DeletedReason, "live link %d/%d must not carry a reason", link.UserID, link.ClanID)
		}
	}
}

func TestMembershipAndInviteListings(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	addMember(t, svc, db, cl.ID, owner, "member", models.RankMember)
	invitee := createUser(t, db, "invitee")
	require.NoError(t, svc.Invite(owner.ID, invitee.ID, cl.ID))
	gone := addMember(t, svc, db, cl.ID, owner, "gone", models.RankMember)
	require.NoError(t, svc.Kick(owner.ID, gone.ID, cl.ID))

	members, err := svc.Members(cl.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2) // owner + member; kicked and invitee excluded

	invites, err := svc.OpenInvites(cl.ID)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	assert.Equal(t, invitee.ID, invites[0].UserID)

	userInvites, err := svc.InvitesForUser(invitee.ID)
	require.NoError(t, err)
	require.Len(t, userInvites, 1)
	assert.Equal(t, cl.ID, userInvites[0].ClanID)

	memberships, err := svc.MembershipsForUser(owner.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)
}

func TestOwnerAndAdminLifecycleScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	// Owner founds the clan and is a member at rank owner.
	cl, owner := newClanWithOwner(t, svc, db, "AAAA")
	link, _, err := svc.GetLink(owner.ID, cl.ID)
	require.NoError(t, err)
	require.True(t, link.IsMembership())

	// B is invited and accepts.
	b := createUser(t, db, "bravo")
	require.NoError(t, svc.Invite(owner.ID, b.ID, cl.ID))
	require.NoError(t, svc.Respond(b.ID, cl.ID, true))
	link, _, err = svc.GetLink(b.ID, cl.ID)
	require.NoError(t, err)
	require.True(t, link.IsMembership())

	// Owner promotes B to admin.
	updated, err := svc.UpdateRank(owner.ID, b.ID, cl.ID, models.RankAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RankAdmin, updated.Rank)

	// B, now an admin, still cannot kick the owner.
	assert.ErrorIs(t, svc.Kick(b.ID, owner.ID, cl.ID), ErrAdminKick)
}
