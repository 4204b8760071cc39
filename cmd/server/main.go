package main

import (
	"fmt"
	"log"
	"net/http"

	"metaserver/backend/internal/auth"
	"metaserver/backend/internal/config"
	"metaserver/backend/internal/database"
	"metaserver/backend/internal/handler"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "metaserver/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           Community Metaserver API
// @version         1.0
// @description     Meta-server for the game community: accounts, clans, skins, game servers and skill ratings.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", handler.RegisterUser)
			authRoutes.POST("/login", handler.LoginUser)
			authRoutes.POST("/verify-proof", handler.VerifyUserProof)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", handler.GetUsersBatch)
			userRoutes.GET("/me", handler.GetMe)
			userRoutes.GET("/me/clan-invites", handler.GetMyClanInvites)
			userRoutes.GET("/me/clans", handler.GetMyClanMemberships)
			userRoutes.POST("/me/display-name", handler.ChangeDisplayName)
			userRoutes.POST("/me/email/verify", handler.VerifyEmail)
			userRoutes.POST("/me/email/renew-token", handler.RenewEmailToken)
			userRoutes.GET("/:id", handler.GetUserByID)
		}

		// Clan icon is public so game clients can fetch it without a session
		apiV1.GET("/clans/:id/icon.png", handler.GetClanIcon)

		// Clan routes (protected)
		clanRoutes := apiV1.Group("/clans")
		clanRoutes.Use(auth.AuthMiddleware())
		{
			clanRoutes.GET("", handler.ListClans)
			clanRoutes.POST("", handler.CreateClan)
			clanRoutes.POST("/verify-membership", handler.VerifyClanMembership)
			clanRoutes.GET("/:id", handler.GetClanByID)
			clanRoutes.GET("/:id/members", handler.GetClanMembers)
			clanRoutes.GET("/:id/invites", handler.GetClanInvites)
			clanRoutes.POST("/:id/invite", handler.InviteToClan)
			clanRoutes.POST("/:id/invite-response", handler.RespondToInvite)
			clanRoutes.POST("/:id/invite-retract", handler.RetractInvite)
			clanRoutes.POST("/:id/leave", handler.LeaveClan)
			clanRoutes.POST("/:id/kick", handler.KickFromClan)
			clanRoutes.POST("/:id/rank", handler.UpdateClanRank)
			clanRoutes.POST("/:id/icon", handler.UpdateClanIcon)
		}

		// Skin routes (protected)
		skinRoutes := apiV1.Group("/skins")
		skinRoutes.Use(auth.AuthMiddleware())
		{
			skinRoutes.GET("/for-user", handler.GetSkinsForUser)
			skinRoutes.GET("/for-clan/:id", handler.GetSkinsForClan)
		}

		// Stats routes (protected)
		statsRoutes := apiV1.Group("/stats")
		statsRoutes.Use(auth.AuthMiddleware())
		{
			statsRoutes.GET("", handler.GetUserStats)
			statsRoutes.GET("/batch", handler.GetUserStatsBatch)
		}

		// Server routes
		serverRoutes := apiV1.Group("/servers")
		{
			serverRoutes.POST("/login", handler.LoginServer)
			serverRoutes.GET("/online", handler.GetOnlineServers)

			// Owned by users
			userServerRoutes := serverRoutes.Group("")
			userServerRoutes.Use(auth.AuthMiddleware())
			{
				userServerRoutes.POST("", handler.RegisterServer)
				userServerRoutes.GET("/my", handler.GetMyServers)
			}

			// Called by game servers themselves
			gameServerRoutes := serverRoutes.Group("")
			gameServerRoutes.Use(auth.ServerAuthMiddleware())
			{
				gameServerRoutes.POST("/update", handler.UpdateServer)
				gameServerRoutes.POST("/match-update", handler.PostMatchUpdate)
				gameServerRoutes.POST("/verify-clan-membership", handler.ServerVerifyClanMembership)
				gameServerRoutes.GET("/stats/batch", handler.GetUserStatsBatch)
			}
		}
	}

	fmt.Println("Server is running on :8080")
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(":8080"))
}
