package routes

import (
	"fmt"
	"time"

	"spa-booking-backend/config"
	"spa-booking-backend/controllers"
	"spa-booking-backend/repository"
	"spa-booking-backend/services"
	"spa-booking-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Deps is everything the HTTP layer needs from the service layer
type Deps struct {
	Config  *config.Config
	Tokens  *utils.TokenIssuer
	Catalog *services.CatalogService
	Carts   *services.CartService
	Orders  *services.OrderService
	History *services.HistoryService
	Close   *services.DailyClose
	Idem    repository.IdempotencyStore
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	log := d.Config.Log
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept-Language", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(config.PerformanceLogger(log))

	authController := &controllers.AuthController{
		Tokens:            d.Tokens,
		Carts:             d.Carts,
		History:           d.History,
		AdminPasswordHash: d.Config.AdminPasswordHash,
		Log:               log,
	}
	catalogController := &controllers.CatalogController{Catalog: d.Catalog, Log: log}
	cartController := &controllers.CartController{Carts: d.Carts, History: d.History, Idem: d.Idem, Log: log}
	orderController := &controllers.OrderController{Orders: d.Orders, History: d.History, Idem: d.Idem, Log: log}
	customerController := &controllers.CustomerController{History: d.History, Log: log}
	reportController := &controllers.ReportController{Close: d.Close, Log: log}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "businessDay": d.Close.CurrentBusinessDay()})
	})

	api := r.Group("/api")
	api.Use(d.Tokens.OptionalSession())
	{
		// Catalog routes
		api.GET("/services", catalogController.GetServices)
		api.GET("/categories", catalogController.GetCategories)

		// Session routes
		api.POST("/session", authController.CreateSession)
		api.GET("/session", authController.GetSession)
		api.DELETE("/session", authController.EndSession)

		// Order routes
		api.POST("/orders", orderController.CreateOrder)
		api.GET("/orders", orderController.ListOrders)
		api.POST("/booking", orderController.CreateBooking)

		api.GET("/customers/check-email", customerController.CheckEmail)

		carts := api.Group("/cart", d.Tokens.SessionMiddleware())
		{
			carts.GET("", cartController.GetCart)
			carts.DELETE("", cartController.ClearCart)
			carts.PUT("/options", cartController.UpdateAllOptions)
			carts.POST("/lines", cartController.AddLine)
			carts.PATCH("/lines/:lineId", cartController.UpdateLine)
			carts.DELETE("/lines/:lineId", cartController.RemoveLine)
			carts.PUT("/lines/:lineId/options", cartController.UpdateLineOptions)
			carts.POST("/lines/:lineId/areas", cartController.ToggleArea)
			carts.POST("/restore", cartController.Restore)
			carts.POST("/checkout", cartController.Checkout)
		}
	}

	admin := r.Group("/api/admin")
	admin.POST("/login", authController.AdminLogin)
	admin.Use(d.Tokens.AdminMiddleware())
	{
		admin.POST("/services", catalogController.CreateService)
		admin.PUT("/services/:id", catalogController.UpdateService)
		admin.PUT("/categories", catalogController.UpsertCategory)
		admin.GET("/reports/daily", reportController.GetDailyReport)
		admin.POST("/reports/daily/close", reportController.RunDailyClose)
	}

	return r, nil
}
