package handler

import (
	"runnerhub/internal/adapter/http/middleware"
	redisStore "runnerhub/internal/adapter/storage/redis"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	UserSvc        ports.UserService
	TaskSvc        ports.TaskService
	Ledger         ports.LedgerService
	MatchingSvc    ports.MatchingService
	ReviewSvc      ports.ReviewService
	PaymentSvc     ports.PaymentService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimits     map[string]middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	MaxBodyBytes   int64
	Mode           string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rl := func(group string) gin.HandlerFunc {
		rule, ok := deps.RateLimits[group]
		if deps.RateLimitStore == nil || !ok || rule.Limit <= 0 {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}
	can := middleware.RequireCapability

	v1 := r.Group("/api/v1")

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth", rl("auth"))
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	v1.POST("/payments/verify", rl("auth"), paymentHandler.Verify)

	// --- Authenticated routes ---
	api := v1.Group("", middleware.JWTAuth(deps.TokenSvc), rl("api"))

	userHandler := NewUserHandler(deps.UserSvc)
	users := api.Group("/users/me")
	{
		users.GET("", userHandler.Me)
		users.PATCH("", userHandler.UpdateMe)
		users.PUT("/location", userHandler.UpdateLocation)
	}

	taskHandler := NewTaskHandler(deps.TaskSvc)
	tasks := api.Group("/tasks")
	{
		tasks.POST("", can(domain.CapPostTask), taskHandler.Post)
		tasks.GET("", can(domain.CapViewAllTasks), taskHandler.List)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PUT("/:id/accept", can(domain.CapRunTask), taskHandler.Accept)
		tasks.PUT("/:id/complete", can(domain.CapRunTask), taskHandler.Complete)
		tasks.PUT("/:id/cancel", can(domain.CapCancelTask), taskHandler.Cancel)
		tasks.PUT("/:id/paid", can(domain.CapMarkPaid), taskHandler.MarkPaid)
	}

	walletHandler := NewWalletHandler(deps.Ledger)
	wallet := api.Group("/wallet")
	{
		wallet.GET("/me", can(domain.CapUseWallet), walletHandler.Me)
		wallet.POST("/topup", can(domain.CapUseWallet), walletHandler.Topup)
		wallet.POST("/payout", can(domain.CapUseWallet), walletHandler.Payout)
		wallet.GET("/admin/:userId", can(domain.CapViewAnyWallet), walletHandler.ForUser)
	}

	reportHandler := NewReportHandler(deps.ReportingSvc)
	transactions := api.Group("/transactions")
	{
		transactions.GET("", can(domain.CapViewLedger), reportHandler.ListTransactions)
		transactions.GET("/my", reportHandler.MyTransactions)
		transactions.GET("/:id", can(domain.CapViewLedger), reportHandler.GetTransaction)
	}

	analytics := api.Group("/analytics", can(domain.CapViewAnalytics))
	{
		analytics.GET("/kpis", reportHandler.KPIs)
		analytics.GET("/revenue", reportHandler.Revenue)
	}

	matchingHandler := NewMatchingHandler(deps.MatchingSvc)
	api.GET("/matching/:taskId", can(domain.CapFindRunner), matchingHandler.BestRunner)

	reviewHandler := NewReviewHandler(deps.ReviewSvc)
	reviews := api.Group("/reviews")
	{
		reviews.POST("", can(domain.CapReview), reviewHandler.Submit)
		reviews.GET("/user/:userId", reviewHandler.ListForUser)
		reviews.DELETE("/:id", can(domain.CapModerateReviews), reviewHandler.Delete)
	}

	api.POST("/payments/initiate", can(domain.CapPay), paymentHandler.Initiate)

	return r
}
