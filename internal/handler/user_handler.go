package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"metaserver/backend/internal/config"
	"metaserver/backend/internal/database"
	"metaserver/backend/internal/email"
	"metaserver/backend/internal/models"
	"metaserver/backend/pkg/jwt"

	"github.com/badoux/checkmail"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration. The username
// must be email-shaped; verification mail is sent to it.
type RegisterInput struct {
	Username    string `json:"username" binding:"required" example:"player@example.com"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=64" example:"PlayerOne"`
	Password    string `json:"password" binding:"required,min=8,max=32" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Username string `json:"username" binding:"required" example:"player@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UserResponse defines the structure for a user's public profile.
type UserResponse struct {
	ID          uint      `json:"id" example:"1"`
	DisplayName string    `json:"display_name" example:"PlayerOne"`
	Created     time.Time `json:"created"`
}

// SessionResponse is returned on registration and login. The proof token is
// handed to game servers to prove registration with this metaserver.
type SessionResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
	Proof string       `json:"proof"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func newUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Created:     user.CreatedAt,
	}
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user, sends a verification mail and returns a session token plus proof token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  SessionResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Username is not email-shaped"
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := checkmail.ValidateFormat(input.Username); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Username must be a valid email address"})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("username = ?", input.Username).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username taken"})
		return
	}
	if err := database.DB.Where("display_name = ?", input.DisplayName).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Display name taken"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or display name taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Mail delivery happens outside any transaction; a failed send never
	// rolls back the registration.
	token := email.NewVerificationToken(user.ID)
	go func() {
		if err := email.SendVerificationEmail(user.Username, token); err != nil {
			log.Printf("Failed to send verification email to user %d: %v", user.ID, err)
		}
	}()

	sessionToken, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	proof, err := jwt.GenerateProof(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate proof"})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{User: newUserResponse(user), Token: sessionToken, Proof: proof})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Verifies user credentials and returns a session token plus a fresh proof token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  SessionResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	now := time.Now()
	database.DB.Model(&user).Update("last_online", &now)

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	proof, err := jwt.GenerateProof(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate proof"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{User: newUserResponse(user), Token: token, Proof: proof})
}

// VerifyUserProof godoc
// @Summary      Verify a user proof token
// @Description  Lets a third party (like a game server) check that a proof token belongs to the given user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body object{user_id=int,proof=string} true "Proof to verify"
// @Success      200  {object}  map[string]bool "{"valid": true}"
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/verify-proof [post]
func VerifyUserProof(c *gin.Context) {
	var input struct {
		UserID uint   `json:"user_id" binding:"required"`
		Proof  string `json:"proof" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid := jwt.VerifyProof(input.UserID, input.Proof)
	if valid {
		now := time.Now()
		database.DB.Model(&models.User{}).Where("id = ?", input.UserID).Update("last_online", &now)
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's info
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUserByID(c *gin.Context) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(targetUserID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// GetUsersBatch godoc
// @Summary      Get several users by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        ids query []int true "User IDs" collectionFormat(multi)
// @Success      200  {array}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /users [get]
func GetUsersBatch(c *gin.Context) {
	ids, err := queryIDs(c, "ids")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user IDs"})
		return
	}

	var users []models.User
	if err := database.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, newUserResponse(user))
	}
	c.JSON(http.StatusOK, responses)
}

// ChangeDisplayName godoc
// @Summary      Change display name
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body object{display_name=string} true "New display name"
// @Success      200  {object}  UserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Display name taken"
// @Router       /users/me/display-name [post]
func ChangeDisplayName(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input struct {
		DisplayName string `json:"display_name" binding:"required,min=1,max=64"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.DisplayName = input.DisplayName
	if err := database.DB.Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Display name taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update display name"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// VerifyEmail godoc
// @Summary      Verify email address
// @Description  Confirms the 6-character code from the verification mail.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body object{token=string} true "Verification code"
// @Success      200  {object}  UserResponse
// @Failure      403  {object}  ErrorResponse "Already verified, wrong or missing token"
// @Router       /users/me/email/verify [post]
func VerifyEmail(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input struct {
		Token string `json:"token" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.VerifiedEmail != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "User already verified mail"})
		return
	}

	if !email.HasToken(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No mail verification token found for user (request a new one)"})
		return
	}
	if !email.VerifyToken(user.ID, input.Token) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Incorrect mail verification token"})
		return
	}

	now := time.Now()
	user.VerifiedEmail = &now
	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// RenewEmailToken godoc
// @Summary      Request a new verification code
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string "{"message": "Token sent"}"
// @Failure      403  {object}  ErrorResponse "Already verified"
// @Failure      429  {object}  ErrorResponse "Renew cooldown not elapsed"
// @Router       /users/me/email/renew-token [post]
func RenewEmailToken(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.VerifiedEmail != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "User already verified mail"})
		return
	}

	if age, ok := email.TokenAge(user.ID); ok && age <= config.AppConfig.EmailTokenRenewTimeout {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "Wait at least " + config.AppConfig.EmailTokenRenewTimeout.String() + " before requesting a new token",
		})
		return
	}

	token := email.NewVerificationToken(user.ID)
	go func() {
		if err := email.SendVerificationEmail(user.Username, token); err != nil {
			log.Printf("Failed to send verification email to user %d: %v", user.ID, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "Token sent"})
}

// endregion

// region --- Helpers ---

// queryIDs parses a repeated uint query parameter.
func queryIDs(c *gin.Context, name string) ([]uint, error) {
	raw := c.QueryArray(name)
	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// endregion
