package route

import (
	"database/sql"

	"book-market/internal/cache"
	"book-market/internal/delivery/http/handler"
	"book-market/internal/delivery/http/middleware"
	"book-market/internal/delivery/ws"
	entity "book-market/internal/domain"
	mongorepo "book-market/internal/repository/mongodb"
	repo "book-market/internal/repository/postgresql"
	service "book-market/internal/service/postgresql"
	"book-market/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "book-market/docs"
)

// SetupRoute wires repositories, services and handlers onto the router.
func SetupRoute(app *gin.Engine, db *sql.DB, mongoClient *mongo.Client, c *cache.Cache, store storage.Store, hub *ws.Hub) {
	// Repositories
	userRepo := repo.NewUserRepository(db)
	bookRepo := repo.NewBookRepository(db)
	loanRepo := repo.NewLoanRepository(db)
	sellPostRepo := repo.NewSellPostRepository(db)
	offerRepo := repo.NewOfferRepository(db)
	convRepo := repo.NewConversationRepository(db)
	reviewRepo := repo.NewReviewRepository(db)
	logRepo := mongorepo.NewLogRepository(mongoClient)

	// Services
	notifier := service.NewNotifier(logRepo)
	authService := service.NewAuthService(userRepo, notifier)
	catalogService := service.NewCatalogService(bookRepo, c, notifier)
	loanService := service.NewLoanService(loanRepo, catalogService, notifier)
	sellPostService := service.NewSellPostService(sellPostRepo, notifier)
	offerService := service.NewOfferService(offerRepo, sellPostRepo, notifier)
	convService := service.NewConversationService(convRepo, sellPostRepo, notifier, hub)
	reviewService := service.NewReviewService(reviewRepo, convRepo, notifier)
	notificationService := service.NewNotificationService(logRepo)
	assistantService := service.NewAssistantService(bookRepo)
	adminService := service.NewAdminService(userRepo, sellPostRepo, logRepo, notifier)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	loanHandler := handler.NewLoanHandler(loanService)
	sellPostHandler := handler.NewSellPostHandler(sellPostService, store)
	offerHandler := handler.NewOfferHandler(offerService)
	convHandler := handler.NewConversationHandler(convService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	assistantHandler := handler.NewAssistantHandler(assistantService)
	adminHandler := handler.NewAdminHandler(adminService)

	app.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := app.Group("/api")
	api.Use(middleware.Metrics())

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/profile", middleware.AuthRequired(), authHandler.Profile)
	}

	books := api.Group("/books")
	{
		books.GET("", catalogHandler.ListBooks)
		books.GET("/categories", catalogHandler.ListCategories)
		books.GET("/:id", catalogHandler.GetBook)
	}

	loans := api.Group("/loans", middleware.AuthRequired())
	{
		loans.POST("", loanHandler.Borrow)
		loans.GET("", loanHandler.MyLoans)
		loans.POST("/:id/return", loanHandler.Return)
	}

	sellPosts := api.Group("/sell-posts")
	{
		sellPosts.GET("", sellPostHandler.Browse)
		sellPosts.GET("/:id", sellPostHandler.GetSellPost)

		authed := sellPosts.Group("", middleware.AuthRequired())
		authed.POST("", sellPostHandler.CreateSellPost)
		authed.GET("/my", sellPostHandler.MyPosts)
		authed.POST("/:id/sold", sellPostHandler.MarkSold)
		authed.POST("/:id/release", sellPostHandler.ReleasePost)
		authed.DELETE("/:id", sellPostHandler.RemoveSellPost)
		authed.GET("/:id/offers", offerHandler.GetOffersForPost)
	}

	offers := api.Group("/offers", middleware.AuthRequired())
	{
		offers.POST("", offerHandler.CreateOffer)
		offers.GET("/my", offerHandler.GetMyOffers)
		offers.POST("/:id/respond", offerHandler.RespondToOffer)
		offers.POST("/:id/accept-counter", offerHandler.AcceptCounter)
		offers.DELETE("/:id", offerHandler.WithdrawOffer)
	}

	conversations := api.Group("/conversations", middleware.AuthRequired())
	{
		conversations.POST("", convHandler.StartConversation)
		conversations.GET("", convHandler.ListConversations)
		conversations.GET("/:id/messages", convHandler.ListMessages)
		conversations.POST("/:id/messages", convHandler.SendMessage)
		conversations.POST("/:id/read", convHandler.MarkRead)
		conversations.POST("/:id/archive", convHandler.Archive)
		conversations.POST("/:id/unarchive", convHandler.Unarchive)
		conversations.POST("/:id/block", convHandler.Block)
		conversations.POST("/:id/unblock", convHandler.Unblock)
		conversations.POST("/:id/complete", convHandler.MarkTransactionComplete)
		conversations.POST("/:id/review", reviewHandler.CreateReview)
	}

	api.GET("/sellers/:id/reviews", reviewHandler.GetSellerReviews)

	notifications := api.Group("/notifications", middleware.AuthRequired())
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/read", notificationHandler.MarkAllRead)
	}

	api.POST("/assistant/chat", middleware.AuthRequired(), assistantHandler.Chat)

	api.GET("/ws", middleware.AuthRequired(), hub.ServeWS)

	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RoleAllowed(entity.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/active", adminHandler.SetUserActive)
		admin.PUT("/sell-posts/:id/moderate", adminHandler.ModerateSellPost)
		admin.GET("/activities", adminHandler.ListActivities)
		admin.POST("/books", catalogHandler.CreateBook)
	}
}
