package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/lltsaorg/thiha-shop-app/internal/account"
	"github.com/lltsaorg/thiha-shop-app/internal/auth"
	"github.com/lltsaorg/thiha-shop-app/internal/cache"
	"github.com/lltsaorg/thiha-shop-app/internal/catalog"
	"github.com/lltsaorg/thiha-shop-app/internal/config"
	"github.com/lltsaorg/thiha-shop-app/internal/notify"
	"github.com/lltsaorg/thiha-shop-app/internal/purchase"
	"github.com/lltsaorg/thiha-shop-app/internal/queue"
	"github.com/lltsaorg/thiha-shop-app/internal/topup"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	notify *notify.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	// One queue registry and one balance cache for the whole process.
	// Top-ups and purchases for the same account must share a queue,
	// and a credit must invalidate the same cache a read goes through.
	queues := queue.NewRegistry()
	balances := cache.New[account.BalanceSnapshot]()

	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, balances, cfg.BalanceCacheTTL, cfg.JWTSecret)
	accountHandler := account.NewHandler(accountService, cfg.JWTSecret, cfg.AdminPasswordHash)

	catalogHandler := catalog.NewHandler(catalog.NewRepository(db))

	topupRepo := topup.NewRepository(db)
	topupService := topup.NewService(topupRepo, queues, cfg.QueueMaxPending, balances, notifier)
	topupHandler := topup.NewHandler(topupService)

	purchaseRepo := purchase.NewRepository(db)
	purchaseService := purchase.NewService(purchaseRepo, accountRepo, queues, cfg.QueueMaxPending, balances)
	purchaseHandler := purchase.NewHandler(purchaseService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", accountHandler.Register)
		public.POST("/login", accountHandler.Login)
	}
	router.POST("/admin/login", RateLimitMiddleware(5, 10), accountHandler.AdminLogin)

	router.GET("/products", catalogHandler.ListProducts)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", accountHandler.GetMe)
		protected.GET("/me/balance", accountHandler.GetBalance)
		protected.GET("/me/purchases", purchaseHandler.ListMine)
		protected.POST("/purchase", purchaseHandler.Purchase)
		protected.POST("/topup-requests", topupHandler.Create)
		protected.GET("/me/topup-requests", topupHandler.ListMine)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/topup-requests", topupHandler.List)
		admin.POST("/topup-requests/approve", topupHandler.Approve)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.PUT("/products", catalogHandler.UpdateProduct)
		admin.GET("/notifications/queue", NotificationQueue(notifier))
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		notify: notifier,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
