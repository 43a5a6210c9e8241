package router

import (
	"waypoint/internal/handlers"
	"waypoint/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	cityHandler := handlers.NewCityHandler()
	placeHandler := handlers.NewPlaceHandler()
	playbookHandler := handlers.NewPlaybookHandler()
	voteHandler := handlers.NewVoteHandler()
	userHandler := handlers.NewUserHandler()
	bookmarkHandler := handlers.NewBookmarkHandler()
	gigHandler := handlers.NewGigHandler()
	productHandler := handlers.NewProductHandler()
	chatHandler := handlers.NewChatHandler()

	api := r.Group("/api")

	// Public routes
	api.GET("/cities", cityHandler.List)
	api.GET("/cities/:id", cityHandler.Detail)
	api.GET("/cities/:id/places", placeHandler.ListByCity)
	api.GET("/cities/:id/gigs", gigHandler.ListByCity)
	api.GET("/places/:pid", placeHandler.Detail)
	api.GET("/places/:pid/comments", placeHandler.ListComments)
	api.GET("/playbooks", playbookHandler.List)
	api.GET("/playbooks/:pid", playbookHandler.Detail)
	api.GET("/playbooks/:pid/revisions", playbookHandler.ListRevisions)
	api.GET("/gigs/:gid", gigHandler.Detail)
	api.GET("/products", productHandler.List)
	api.GET("/users/:id", userHandler.Profile)

	api.POST("/signup", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)

		authorized.POST("/places", placeHandler.Create)
		authorized.POST("/places/:pid/comments", placeHandler.CreateComment)
		authorized.POST("/playbooks", playbookHandler.Create)
		authorized.PUT("/playbooks/:pid", playbookHandler.Update)

		authorized.POST("/vote/:type/:id", voteHandler.Cast)
		authorized.GET("/vote/:type/:id", voteHandler.Get)

		authorized.POST("/bookmarks/:pid", bookmarkHandler.Toggle)
		authorized.GET("/bookmarks", bookmarkHandler.List)

		authorized.POST("/gigs", gigHandler.Create)
		authorized.POST("/products", productHandler.Create)

		authorized.GET("/chat/rooms", chatHandler.ListRooms)
		authorized.POST("/chat/rooms", chatHandler.CreateRoom)
		authorized.GET("/chat/rooms/:id/messages", chatHandler.ListMessages)
		authorized.POST("/chat/rooms/:id/messages", chatHandler.PostMessage)

		authorized.GET("/points", userHandler.PointLogs)
	}
}
