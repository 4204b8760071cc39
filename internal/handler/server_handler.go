package handler

import (
	"errors"
	"net/http"
	"time"

	"metaserver/backend/internal/clan"
	"metaserver/backend/internal/config"
	"metaserver/backend/internal/database"
	"metaserver/backend/internal/models"
	"metaserver/backend/internal/rating"
	"metaserver/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// ServerInput defines the structure for game server registration.
type ServerInput struct {
	HostName       string `json:"host_name" binding:"required" example:"eu1.example.com"`
	Port           int    `json:"port" binding:"required,min=1,max=65535" example:"11235"`
	DisplayName    string `json:"display_name" binding:"required,min=1,max=64" example:"EU Duel Server"`
	Description    string `json:"description"`
	GameType       string `json:"game_type" binding:"required" example:"duel"`
	MaxPlayerCount int    `json:"max_player_count" binding:"required,min=2" example:"64"`
}

// ServerUpdateInput defines the structure for a server heartbeat update.
type ServerUpdateInput struct {
	CurrentPlayerCount int    `json:"current_player_count" binding:"min=0"`
	CurrentMap         string `json:"current_map"`
	Description        string `json:"description"`
}

// ServerLoginInput defines the structure for game server login.
type ServerLoginInput struct {
	ServerID uint   `json:"server_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ServerResponse defines the structure for a registered server.
type ServerResponse struct {
	ID                 uint       `json:"id"`
	HostName           string     `json:"host_name"`
	Port               int        `json:"port"`
	DisplayName        string     `json:"display_name"`
	Description        string     `json:"description"`
	GameType           string     `json:"game_type"`
	CurrentPlayerCount int        `json:"current_player_count"`
	CurrentMap         string     `json:"current_map"`
	MaxPlayerCount     int        `json:"max_player_count"`
	Updated            *time.Time `json:"updated,omitempty"`
}

// ServerCredentialsResponse is returned once at registration; the password is
// not stored and cannot be recovered.
type ServerCredentialsResponse struct {
	Server   ServerResponse `json:"server"`
	Password string         `json:"password"`
}

func newServerResponse(s models.Server) ServerResponse {
	return ServerResponse{
		ID:                 s.ID,
		HostName:           s.HostName,
		Port:               s.Port,
		DisplayName:        s.DisplayName,
		Description:        s.Description,
		GameType:           s.GameType,
		CurrentPlayerCount: s.CurrentPlayerCount,
		CurrentMap:         s.CurrentMap,
		MaxPlayerCount:     s.MaxPlayerCount,
		Updated:            s.Updated,
	}
}

// endregion

// region --- Server Handlers ---

// RegisterServer godoc
// @Summary      Register a game server
// @Description  Registers a server owned by the caller and returns its generated password once.
// @Tags         servers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ServerInput true "Server Info"
// @Success      201  {object}  ServerCredentialsResponse
// @Failure      400  {object}  ErrorResponse "Server cap reached"
// @Router       /servers [post]
func RegisterServer(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input ServerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	if err := database.DB.Model(&models.Server{}).Where("user_id = ?", viewerID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count servers"})
		return
	}
	if count >= int64(config.AppConfig.MaxServersPerUser) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has reached the max number of servers"})
		return
	}

	serverPassword, err := password.Generate(32, 10, 0, false, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate password"})
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(serverPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	server := models.Server{
		UserID:         viewerID.(uint),
		PasswordHash:   string(hashed),
		HostName:       input.HostName,
		Port:           input.Port,
		DisplayName:    input.DisplayName,
		Description:    input.Description,
		GameType:       input.GameType,
		MaxPlayerCount: input.MaxPlayerCount,
	}
	if err := database.DB.Create(&server).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create server"})
		return
	}

	c.JSON(http.StatusCreated, ServerCredentialsResponse{
		Server:   newServerResponse(server),
		Password: serverPassword,
	})
}

// LoginServer godoc
// @Summary      Log in a game server
// @Description  Verifies server credentials and returns a server session token.
// @Tags         servers
// @Accept       json
// @Produce      json
// @Param        input body ServerLoginInput true "Server credentials"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      401  {object}  ErrorResponse
// @Router       /servers/login [post]
func LoginServer(c *gin.Context) {
	var input ServerLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var server models.Server
	if err := database.DB.First(&server, input.ServerID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect server ID or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(server.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect server ID or password"})
		return
	}

	token, err := jwt.GenerateServerToken(server.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetMyServers godoc
// @Summary      List the caller's registered servers
// @Tags         servers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ServerResponse
// @Router       /servers/my [get]
func GetMyServers(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var servers []models.Server
	if err := database.DB.Where("user_id = ?", viewerID).Find(&servers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}

	responses := make([]ServerResponse, 0, len(servers))
	for _, s := range servers {
		responses = append(responses, newServerResponse(s))
	}
	c.JSON(http.StatusOK, responses)
}

// GetOnlineServers godoc
// @Summary      List online servers
// @Description  A server is online when its last update is within the configured cutoff.
// @Tags         servers
// @Produce      json
// @Success      200  {array}  ServerResponse
// @Router       /servers/online [get]
func GetOnlineServers(c *gin.Context) {
	cutoff := time.Now().Add(-config.AppConfig.ServerOnlineCutoff)

	var servers []models.Server
	if err := database.DB.Where("updated > ?", cutoff).Find(&servers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch servers"})
		return
	}

	responses := make([]ServerResponse, 0, len(servers))
	for _, s := range servers {
		responses = append(responses, newServerResponse(s))
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateServer godoc
// @Summary      Post a server heartbeat
// @Description  Updates the server's live state and refreshes its online timestamp. Server token required.
// @Tags         servers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ServerUpdateInput true "Live state"
// @Success      200  {object}  ServerResponse
// @Router       /servers/update [post]
func UpdateServer(c *gin.Context) {
	serverID, _ := c.Get("serverID")

	var input ServerUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var server models.Server
	if err := database.DB.First(&server, serverID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Server not found"})
		return
	}

	now := time.Now()
	server.CurrentPlayerCount = input.CurrentPlayerCount
	server.CurrentMap = input.CurrentMap
	if input.Description != "" {
		server.Description = input.Description
	}
	server.Updated = &now

	if err := database.DB.Save(&server).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update server"})
		return
	}

	c.JSON(http.StatusOK, newServerResponse(server))
}

// PostMatchUpdate godoc
// @Summary      Post a match result
// @Description  Updates skill ratings and counters for every registered participant. The match data itself is not stored. Server token required.
// @Tags         servers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body rating.MatchUpdate true "Match result"
// @Success      200  {object}  map[string]string "{"message": "Match recorded"}"
// @Failure      422  {object}  ErrorResponse "Malformed match result"
// @Router       /servers/match-update [post]
func PostMatchUpdate(c *gin.Context) {
	serverID, _ := c.Get("serverID")

	var update rating.MatchUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine := newRatingEngine()
	if err := engine.ApplyMatchResult(serverID.(uint), update); err != nil {
		if errors.Is(err, rating.ErrBadTeamCount) ||
			errors.Is(err, rating.ErrBadRosterSize) ||
			errors.Is(err, rating.ErrRosterOverlap) ||
			errors.Is(err, rating.ErrBadWinner) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply match result"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match recorded"})
}

// ServerVerifyClanMembership godoc
// @Summary      Check clan membership (server auth)
// @Tags         servers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body object{user_id=int,clan_id=int} true "Pair to check"
// @Success      200  {object}  map[string]bool "{"member": true}"
// @Router       /servers/verify-clan-membership [post]
func ServerVerifyClanMembership(c *gin.Context) {
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

// newRatingEngine builds a rating engine from the loaded configuration.
func newRatingEngine() *rating.Engine {
	return rating.NewEngine(database.DB, rating.Params{
		Baseline: config.AppConfig.BaselineRating,
		Lambda:   config.AppConfig.RatingLambda,
		StepSize: config.AppConfig.RatingStepSize,
	})
}
