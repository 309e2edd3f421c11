package server

import (
	"time"

	"github.com/gin-gonic/gin"

	handler "github.com/dumbledor90/lumi-auctions-webapp/services/auction/handler"
	"github.com/dumbledor90/lumi-auctions-webapp/web"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(auctionService handler.AuctionServiceInterface, userService handler.UserServiceInterface, sessionSecret []byte, sessionTTL time.Duration) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(SessionMiddleware(sessionSecret))

	router.SetHTMLTemplate(web.Templates())

	listingHandler := handler.NewListingHandler(auctionService)
	authHandler := handler.NewAuthHandler(userService, sessionSecret, sessionTTL)

	router.GET("/", listingHandler.IndexHandler)
	router.GET("/profile/:username", listingHandler.IndexHandler)

	router.GET("/login", authHandler.ShowLoginHandler)
	router.POST("/login", authHandler.LoginHandler)
	router.GET("/logout", authHandler.LogoutHandler)
	router.GET("/register", authHandler.ShowRegisterHandler)
	router.POST("/register", authHandler.RegisterHandler)

	router.GET("/detail/:id", listingHandler.DetailHandler)
	router.POST("/detail/:id", listingHandler.DetailPostHandler)

	router.GET("/c/", listingHandler.CategoriesHandler)
	router.GET("/c/:category", listingHandler.CategoriesHandler)

	authed := router.Group("/", RequireAuth)
	{
		authed.GET("/create", listingHandler.ShowCreateHandler)
		authed.POST("/create", listingHandler.CreateHandler)
		authed.GET("/update/:id", listingHandler.ShowUpdateHandler)
		authed.POST("/update/:id", listingHandler.UpdateHandler)
		authed.GET("/delete/:id", listingHandler.DeleteConfirmHandler)
		authed.POST("/delete/:id", listingHandler.DeleteHandler)
		authed.GET("/close/:id", listingHandler.CloseConfirmHandler)
		authed.POST("/close/:id", listingHandler.CloseHandler)
		authed.GET("/watchlist", listingHandler.WatchlistHandler)
	}

	return router
}
