package handler

import (
	"net/http"
	"strconv"
	"time"

	"metaserver/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// UserStatsResponse defines the structure for per-(user, server) stats.
type UserStatsResponse struct {
	UserID               uint      `json:"user_id"`
	ServerID             uint      `json:"server_id"`
	FirstSeen            time.Time `json:"first_seen"`
	LastSeen             time.Time `json:"last_seen"`
	MatchesPlayedField   int       `json:"matches_played_field"`
	MatchesPlayedCommand int       `json:"matches_played_command"`
	MatchesWonField      int       `json:"matches_won_field"`
	MatchesWonCommand    int       `json:"matches_won_command"`
	SkillRating          int       `json:"skill_rating"`
}

func newUserStatsResponse(stats models.UserStats) UserStatsResponse {
	return UserStatsResponse{
		UserID:               stats.UserID,
		ServerID:             stats.ServerID,
		FirstSeen:            stats.FirstSeen,
		LastSeen:             stats.LastSeen,
		MatchesPlayedField:   stats.MatchesPlayedField,
		MatchesPlayedCommand: stats.MatchesPlayedCommand,
		MatchesWonField:      stats.MatchesWonField,
		MatchesWonCommand:    stats.MatchesWonCommand,
		SkillRating:          stats.SkillRating,
	}
}

// endregion

// GetUserStats godoc
// @Summary      Get a user's stats on a server
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int true "User ID"
// @Param        server_id query int true "Server ID"
// @Success      200  {object}  UserStatsResponse
// @Failure      404  {object}  ErrorResponse "User never seen on this server"
// @Router       /stats [get]
func GetUserStats(c *gin.Context) {
	userID, err1 := strconv.ParseUint(c.Query("user_id"), 10, 32)
	serverID, err2 := strconv.ParseUint(c.Query("server_id"), 10, 32)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and server_id query parameters required"})
		return
	}

	stats, ok, err := newRatingEngine().GetUserStats(uint(userID), uint(serverID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No stats for this user on this server"})
		return
	}

	c.JSON(http.StatusOK, newUserStatsResponse(*stats))
}

// GetUserStatsBatch godoc
// @Summary      Get stats for several users on a server
// @Description  Users never seen on the server are absent from the result.
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        user_ids  query []int true "User IDs" collectionFormat(multi)
// @Param        server_id query int   true "Server ID"
// @Success      200  {array}  UserStatsResponse
// @Router       /stats/batch [get]
func GetUserStatsBatch(c *gin.Context) {
	serverID, err := strconv.ParseUint(c.Query("server_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "server_id query parameter required"})
		return
	}
	userIDs, err := queryIDs(c, "user_ids")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user IDs"})
		return
	}

	stats, err := newRatingEngine().GetUserStatsBatch(userIDs, uint(serverID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	responses := make([]UserStatsResponse, 0, len(stats))
	for _, s := range stats {
		responses = append(responses, newUserStatsResponse(s))
	}
	c.JSON(http.StatusOK, responses)
}
