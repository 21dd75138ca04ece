// Package router assembles the gin engine: every route of the API together
// with its authentication, per-user locking and subscription limit checks.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "kumoney/internal/docs" // swagger spec
	"kumoney/internal/handlers"
	"kumoney/internal/lock"
	"kumoney/internal/middleware"
	"kumoney/internal/payment"
	"kumoney/internal/services"
)

// Services is the business layer the routes dispatch to.
type Services struct {
	Users         services.UserServicer
	Packages      services.PackageServicer
	Subscriptions services.SubscriptionServicer
	Limits        services.LimitServicer
	Orders        services.OrderServicer
	Accounts      services.AccountServicer
	Categories    services.CategoryServicer
	Transactions  services.TransactionServicer
	Dashboard     services.DashboardServicer
}

// NewServices wires the gorm-backed services. Paid orders grant entitlement
// through the subscription service.
func NewServices(db *gorm.DB, gateway payment.Gateway, clientURL string) Services {
	subscriptions := services.NewSubscriptionService(db)
	return Services{
		Users:         services.NewUserService(db),
		Packages:      services.NewPackageService(db),
		Subscriptions: subscriptions,
		Limits:        services.NewLimitService(db),
		Orders:        services.NewOrderService(db, gateway, subscriptions, clientURL),
		Accounts:      services.NewAccountService(db),
		Categories:    services.NewCategoryService(db),
		Transactions:  services.NewTransactionService(db),
		Dashboard:     services.NewDashboardService(db),
	}
}

// Options tunes the engine.
type Options struct {
	// Locker serializes a user's limit-checked mutations. Nil disables locking.
	Locker lock.Locker
	// LockWait bounds how long a request waits for the user lock.
	LockWait time.Duration
	// CallbackToken authenticates payment gateway webhooks.
	CallbackToken string
	// AllowedOrigin is sent as Access-Control-Allow-Origin. Empty means "*".
	AllowedOrigin string
}

// New builds the engine.
func New(svc Services, opts Options) *gin.Engine {
	if opts.Locker == nil {
		opts.Locker = lock.Noop{}
	}

	authHandler := handlers.NewAuthHandler(svc.Users)
	packageHandler := handlers.NewPackageHandler(svc.Packages)
	subscriptionHandler := handlers.NewSubscriptionHandler(svc.Subscriptions)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	webhookHandler := handlers.NewWebhookHandler(svc.Orders)
	accountHandler := handlers.NewAccountHandler(svc.Accounts)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors(opts.AllowedOrigin))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	v1.GET("/packages", packageHandler.ListPackages)
	v1.POST("/orders/webhook/xendit", middleware.CallbackTokenMiddleware(opts.CallbackToken), webhookHandler.HandleXendit)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Limit-checked mutations hold the user lock from the check through the write.
	serialized := middleware.UserLock(opts.Locker, opts.LockWait)

	protected.GET("/profile", authHandler.GetProfile)

	subscriptions := protected.Group("/subscriptions")
	subscriptions.GET("", subscriptionHandler.GetSubscription)
	subscriptions.GET("/expired", subscriptionHandler.GetExpiryStatus)

	orders := protected.Group("/orders")
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("/status/:transactionId", orderHandler.GetOrderStatus)
	orders.GET("/my-orders", orderHandler.GetUserOrders)
	orders.GET("/last", orderHandler.GetLastOrder)

	accounts := protected.Group("/accounts")
	accounts.POST("", serialized, middleware.AccountLimit(svc.Limits), accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", serialized, middleware.AccountBalanceLimit(svc.Limits), accountHandler.UpdateAccount)
	accounts.DELETE("/:id", serialized, accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", serialized, middleware.CategoryLimit(svc.Limits), categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", serialized, categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", serialized, middleware.TransactionLimit(svc.Limits, svc.Categories), transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", serialized, transactionHandler.DeleteTransaction)

	protected.GET("/dashboard/summary", dashboardHandler.GetSummary)

	return router
}

func cors(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
