package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"metaserver/backend/internal/clan"
	"metaserver/backend/internal/database"
	"metaserver/backend/internal/models"
	"metaserver/backend/pkg/clantag"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

// ClanInput defines the structure for clan registration.
type ClanInput struct {
	Tag  string `json:"tag" binding:"required" example:"^900AB"`
	Name string `json:"name" binding:"required,min=1,max=64" example:"Alpha Bravo"`
	Icon string `json:"icon" example:"<base64 PNG>"`
}

// ClanResponse defines the structure for a clan.
type ClanResponse struct {
	ID      uint      `json:"id" example:"1"`
	Tag     string    `json:"tag" example:"^900AB"`
	Name    string    `json:"name" example:"Alpha Bravo"`
	Created time.Time `json:"created"`
}

// ClanLinkResponse defines the structure for a user-clan relationship.
type ClanLinkResponse struct {
	UserID        uint                  `json:"user_id"`
	ClanID        uint                  `json:"clan_id"`
	Rank          models.Rank           `json:"rank"`
	Invited       time.Time             `json:"invited"`
	Joined        *time.Time            `json:"joined,omitempty"`
	Deleted       *time.Time            `json:"deleted,omitempty"`
	DeletedReason *models.DeletedReason `json:"deleted_reason,omitempty"`
	DisplayName   string                `json:"display_name,omitempty"`
	ClanName      string                `json:"clan_name,omitempty"`
}

// PaginatedClanResponse defines the structure for a paginated list of clans.
type PaginatedClanResponse struct {
	Data []ClanResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

func newClanResponse(c models.Clan) ClanResponse {
	return ClanResponse{
		ID:      c.ID,
		Tag:     c.Tag,
		Name:    c.Name,
		Created: c.CreatedAt,
	}
}

func newClanLinkResponse(link models.UserClanLink) ClanLinkResponse {
	return ClanLinkResponse{
		UserID:        link.UserID,
		ClanID:        link.ClanID,
		Rank:          link.Rank,
		Invited:       link.Invited,
		Joined:        link.Joined,
		Deleted:       link.Deleted,
		DeletedReason: link.DeletedReason,
		DisplayName:   link.User.DisplayName,
		ClanName:      link.Clan.Name,
	}
}

// endregion

// abortClanError translates a clan service error into an HTTP response.
// Every denial keeps its own message so clients can tell the user why.
func abortClanError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, clan.ErrUserNotFound),
		errors.Is(err, clan.ErrClanNotFound),
		errors.Is(err, clan.ErrNoLink):
		status = http.StatusNotFound
	case errors.Is(err, clan.ErrNotAMember),
		errors.Is(err, clan.ErrInsufficientRank),
		errors.Is(err, clan.ErrTargetNotBelow),
		errors.Is(err, clan.ErrRankAboveActor),
		errors.Is(err, clan.ErrAdminKick):
		status = http.StatusForbidden
	case errors.Is(err, clan.ErrLinkExists),
		errors.Is(err, clan.ErrClanExists):
		status = http.StatusConflict
	case errors.Is(err, clan.ErrAlreadyMember),
		errors.Is(err, clan.ErrPreviouslyDeclined),
		errors.Is(err, clan.ErrInviteRetracted),
		errors.Is(err, clan.ErrLeftClan),
		errors.Is(err, clan.ErrWasKicked),
		errors.Is(err, clan.ErrNotInvited),
		errors.Is(err, clan.ErrNotOpenInvitation),
		errors.Is(err, clan.ErrInvalidRank),
		errors.Is(err, clan.ErrIconNotPNG),
		errors.Is(err, clan.ErrIconNotSquare),
		errors.Is(err, clan.ErrIconTooLarge),
		errors.Is(err, clantag.ErrBadCharacter),
		errors.Is(err, clantag.ErrBadColorCode),
		errors.Is(err, clantag.ErrTooManyColors),
		errors.Is(err, clantag.ErrTooLong):
		status = http.StatusUnprocessableEntity
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// region --- Clan Handlers ---

// ListClans godoc
// @Summary      List clans
// @Description  Paginated listing; pass ids to fetch a specific batch of clans.
// @Tags         clans
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int   false "Page number" default(1)
// @Param        limit query int   false "Items per page" default(10)
// @Param        ids   query []int false "Restrict to these clan IDs" collectionFormat(multi)
// @Success      200  {object}  PaginatedClanResponse
// @Router       /clans [get]
func ListClans(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	ids, err := queryIDs(c, "ids")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan IDs"})
		return
	}
	filtered := func() *gorm.DB {
		q := database.DB.Model(&models.Clan{})
		if len(ids) > 0 {
			q = q.Where("id IN ?", ids)
		}
		return q
	}

	var totalItems int64
	if err := filtered().Count(&totalItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count clans"})
		return
	}

	var clans []models.Clan
	if err := filtered().Limit(limit).Offset(offset).Find(&clans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clans"})
		return
	}

	responses := make([]ClanResponse, 0, len(clans))
	for _, cl := range clans {
		responses = append(responses, newClanResponse(cl))
	}

	c.JSON(http.StatusOK, PaginatedClanResponse{
		Data: responses,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  (int(totalItems) + limit - 1) / limit,
			CurrentPage: page,
			PageSize:    limit,
		},
	})
}

// GetClanByID godoc
// @Summary      Get clan by ID
// @Tags         clans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Clan ID"
// @Success      200  {object}  ClanResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /clans/{id} [get]
func GetClanByID(c *gin.Context) {
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var cl models.Clan
	if err := database.DB.First(&cl, uint(clanID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clan not found"})
		return
	}

	c.JSON(http.StatusOK, newClanResponse(cl))
}

// GetClanIcon godoc
// @Summary      Get a clan's icon as PNG
// @Tags         clans
// @Produce      png
// @Param        id   path      int  true  "Clan ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  ErrorResponse
// @Router       /clans/{id}/icon.png [get]
func GetClanIcon(c *gin.Context) {
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var cl models.Clan
	if err := database.DB.First(&cl, uint(clanID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clan not found"})
		return
	}

	raw, err := base64.StdEncoding.DecodeString(cl.Icon)
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clan has no icon"})
		return
	}
	c.Data(http.StatusOK, "image/png", raw)
}

// CreateClan godoc
// @Summary      Register a new clan
// @Description  Creates a clan; the caller becomes its first member at rank owner.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ClanInput true "Clan Info"
// @Success      201  {object}  ClanResponse
// @Failure      409  {object}  ErrorResponse "Tag or name taken"
// @Failure      422  {object}  ErrorResponse "Invalid tag or icon"
// @Router       /clans [post]
func CreateClan(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input ClanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	newClan, err := svc.Create(viewerID.(uint), input.Tag, input.Name, input.Icon)
	if err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newClanResponse(*newClan))
}

// GetClanMembers godoc
// @Summary      List a clan's members
// @Tags         clans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Clan ID"
// @Success      200  {array}   ClanLinkResponse
// @Router       /clans/{id}/members [get]
func GetClanMembers(c *gin.Context) {
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	svc := clan.NewService(database.DB)
	links, err := svc.Members(uint(clanID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	c.JSON(http.StatusOK, newClanLinkResponses(links))
}

// GetClanInvites godoc
// @Summary      List a clan's open invitations
// @Description  Only users with a relation to the clan may view its invitations.
// @Tags         clans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Clan ID"
// @Success      200  {array}   ClanLinkResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /clans/{id}/invites [get]
func GetClanInvites(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	svc := clan.NewService(database.DB)
	_, ok, err := svc.GetLink(viewerID.(uint), uint(clanID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is not authorized to view clan invites for this clan"})
		return
	}

	links, err := svc.OpenInvites(uint(clanID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, newClanLinkResponses(links))
}

// GetMyClanInvites godoc
// @Summary      List the caller's open clan invitations
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ClanLinkResponse
// @Router       /users/me/clan-invites [get]
func GetMyClanInvites(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	svc := clan.NewService(database.DB)
	links, err := svc.InvitesForUser(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invites"})
		return
	}

	c.JSON(http.StatusOK, newClanLinkResponses(links))
}

// GetMyClanMemberships godoc
// @Summary      List the caller's clan memberships
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ClanLinkResponse
// @Router       /users/me/clans [get]
func GetMyClanMemberships(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	svc := clan.NewService(database.DB)
	links, err := svc.MembershipsForUser(viewerID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	c.JSON(http.StatusOK, newClanLinkResponses(links))
}

// InviteToClan godoc
// @Summary      Invite a user to a clan
// @Description  Creates an open invitation. The caller must be a clan admin or owner. Any existing relation between the user and the clan makes this a conflict.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Clan ID"
// @Param        input body object{user_id=int}  true "Invitee"
// @Success      201  {object}  map[string]string "{"message": "Invitation sent"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Invitee doesn't exist"
// @Failure      409  {object}  ErrorResponse "Invitee has an existing relation to clan"
// @Router       /clans/{id}/invite [post]
func InviteToClan(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	if err := svc.Invite(viewerID.(uint), input.UserID, uint(clanID)); err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Invitation sent"})
}

// RespondToInvite godoc
// @Summary      Accept or decline a clan invitation
// @Description  Supply accept=true to join the clan, accept=false to decline the invitation.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                   true "Clan ID"
// @Param        input body object{accept=bool}   true "Response"
// @Success      200  {object}  map[string]string "{"message": "Invitation answered"}"
// @Failure      422  {object}  ErrorResponse "No open invitation for this clan"
// @Router       /clans/{id}/invite-response [post]
func RespondToInvite(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	if err := svc.Respond(viewerID.(uint), uint(clanID), *input.Accept); err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation answered"})
}

// RetractInvite godoc
// @Summary      Retract an open invitation
// @Description  Withdraws an unanswered invitation. The caller must be a clan admin or owner.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Clan ID"
// @Param        input body object{user_id=int}  true "Invitee"
// @Success      200  {object}  map[string]string "{"message": "Invitation retracted"}"
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Invitation is not open"
// @Router       /clans/{id}/invite-retract [post]
func RetractInvite(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	if err := svc.Retract(viewerID.(uint), input.UserID, uint(clanID)); err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation retracted"})
}

// LeaveClan godoc
// @Summary      Leave a clan
// @Tags         clans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Clan ID"
// @Success      200  {object}  map[string]string "{"message": "Left clan"}"
// @Failure      403  {object}  ErrorResponse "Not a member"
// @Router       /clans/{id}/leave [post]
func LeaveClan(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	svc := clan.NewService(database.DB)
	if err := svc.Leave(viewerID.(uint), uint(clanID)); err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left clan"})
}

// KickFromClan godoc
// @Summary      Kick a member from a clan
// @Description  Removes a member. The caller must be an admin or owner; admins and owners cannot be kicked.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Clan ID"
// @Param        input body object{user_id=int}  true "Member to kick"
// @Success      200  {object}  map[string]string "{"message": "Member kicked"}"
// @Failure      403  {object}  ErrorResponse
// @Router       /clans/{id}/kick [post]
func KickFromClan(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	if err := svc.Kick(viewerID.(uint), input.UserID, uint(clanID)); err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member kicked"})
}

// UpdateClanRank godoc
// @Summary      Change a member's rank
// @Description  The caller must strictly outrank the target and cannot assign a rank above their own.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                              true "Clan ID"
// @Param        input body object{user_id=int,rank=string}  true "Target and new rank"
// @Success      200  {object}  ClanLinkResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Unknown rank"
// @Router       /clans/{id}/rank [post]
func UpdateClanRank(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		UserID uint   `json:"user_id" binding:"required"`
		Rank   string `json:"rank" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rank, err := models.ParseRank(input.Rank)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	link, err := svc.UpdateRank(viewerID.(uint), input.UserID, uint(clanID), rank)
	if err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, newClanLinkResponse(*link))
}

// UpdateClanIcon godoc
// @Summary      Change a clan's icon
// @Description  Replaces the icon with a base64-encoded square PNG. The caller must be an admin or owner.
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                  true "Clan ID"
// @Param        input body object{icon=string}  true "Base64 PNG"
// @Success      200  {object}  ClanResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Not a square PNG or too large"
// @Router       /clans/{id}/icon [post]
func UpdateClanIcon(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var input struct {
		Icon string `json:"icon" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	cl, err := svc.UpdateIcon(viewerID.(uint), uint(clanID), input.Icon)
	if err != nil {
		abortClanError(c, err)
		return
	}

	c.JSON(http.StatusOK, newClanResponse(*cl))
}

// VerifyClanMembership godoc
// @Summary      Check whether a user is a member of a clan
// @Tags         clans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body object{user_id=int,clan_id=int} true "Pair to check"
// @Success      200  {object}  map[string]bool "{"member": true}"
// @Router       /clans/verify-membership [post]
func VerifyClanMembership(c *gin.Context) {
	var input struct {
		UserID uint `json:"user_id" binding:"required"`
		ClanID uint `json:"clan_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := clan.NewService(database.DB)
	link, ok, err := svc.GetLink(input.UserID, input.ClanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": ok && link.IsMembership()})
}

// endregion

func newClanLinkResponses(links []models.UserClanLink) []ClanLinkResponse {
	responses := make([]ClanLinkResponse, 0, len(links))
	for _, link := range links {
		responses = append(responses, newClanLinkResponse(link))
	}
	return responses
}
