package handler

import (
	"net/http"
	"strconv"

	"metaserver/backend/internal/database"
	"metaserver/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// SkinResponse defines the structure for a cosmetic skin.
type SkinResponse struct {
	ID          uint    `json:"id"`
	Kind        string  `json:"kind"`
	Unit        string  `json:"unit"`
	ModelPath   string  `json:"model_path"`
	Description *string `json:"description,omitempty"`
}

func newSkinResponse(s models.Skin) SkinResponse {
	return SkinResponse{
		ID:          s.ID,
		Kind:        s.Kind,
		Unit:        s.Unit,
		ModelPath:   s.ModelPath,
		Description: s.Description,
	}
}

// endregion

// GetSkinsForUser godoc
// @Summary      List a user's skins
// @Description  Optionally merges in the skins of the given clan.
// @Tags         skins
// @Produce      json
// @Security     BearerAuth
// @Param        user_id query int true  "User ID"
// @Param        clan_id query int false "Clan ID whose skins to include"
// @Success      200  {array}  SkinResponse
// @Router       /skins/for-user [get]
func GetSkinsForUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter required"})
		return
	}

	var user models.User
	if err := database.DB.Preload("Skins").First(&user, uint(userID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	responses := make([]SkinResponse, 0, len(user.Skins))
	for _, s := range user.Skins {
		responses = append(responses, newSkinResponse(*s))
	}

	if clanIDStr := c.Query("clan_id"); clanIDStr != "" {
		clanID, err := strconv.ParseUint(clanIDStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
			return
		}
		var cl models.Clan
		if err := database.DB.Preload("Skins").First(&cl, uint(clanID)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Clan not found"})
			return
		}
		for _, s := range cl.Skins {
			responses = append(responses, newSkinResponse(*s))
		}
	}

	c.JSON(http.StatusOK, responses)
}

// GetSkinsForClan godoc
// @Summary      List a clan's skins
// @Tags         skins
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int true "Clan ID"
// @Success      200  {array}  SkinResponse
// @Router       /skins/for-clan/{id} [get]
func GetSkinsForClan(c *gin.Context) {
	clanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid clan ID"})
		return
	}

	var cl models.Clan
	if err := database.DB.Preload("Skins").First(&cl, uint(clanID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Clan not found"})
		return
	}

	responses := make([]SkinResponse, 0, len(cl.Skins))
	for _, s := range cl.Skins {
		responses = append(responses, newSkinResponse(*s))
	}
	c.JSON(http.StatusOK, responses)
}
