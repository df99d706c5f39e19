package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/domain"
	"github.com/gigboard/gigadmin/internal/middleware"
	"github.com/gigboard/gigadmin/internal/ws"
)

// Authenticator is the auth surface the router needs: the sign-in endpoints
// plus token validation and the admin flag check used by middleware.
type Authenticator interface {
	domain.AuthService
	domain.TokenValidator
	domain.AdminChecker
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	DB           Pinger
	Hub          *ws.Hub
	Users        domain.UserService
	Projects     domain.ProjectService
	Progress     domain.ProgressProjectService
	AutoTasks    domain.AutoTaskService
	Transactions domain.TransactionService
	Audit        domain.AuditService
	Auth         Authenticator
	LoginGuard   LoginGuard
	CORSOrigins  []string
	Version      string
}

// Router-level limits.
const (
	maxBodySize   = 1 << 20 // 1 MB
	authPerMinute = 20      // sign-in attempts per minute per IP
	authBurst     = 10
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	var clients ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}

	health := NewHealthHandler(deps.DB, clients, log, deps.Version)
	auth := NewAuthHandler(deps.Auth, deps.LoginGuard, log)
	users := NewUserHandler(deps.Users, log)
	projects := NewProjectHandler(deps.Projects, log)
	progress := NewProgressHandler(deps.Progress, log)
	autoTasks := NewAutoTaskHandler(deps.AutoTasks, log)
	transactions := NewTransactionHandler(deps.Transactions, log)
	audit := NewAuditHandler(deps.Audit, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Sign-in endpoints are public but rate limited per IP.
	authGroup := api.Group("/auth", middleware.NewRateLimiter(ctx, authPerMinute, authBurst).Handler())
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login/access-token", auth.Refresh)
	authGroup.POST("/refresh", auth.Refresh)

	requireAdmin := middleware.RequireAdmin(deps.Auth, log)

	// The live feed accepts the token from the query string as well.
	api.GET("/admin-action-logs/stream",
		streamAuth(),
		middleware.Authenticate(deps.Auth, log),
		requireAdmin,
		wsHandler(ctx, log, deps.Hub, deps.CORSOrigins, deps.Auth),
	)

	admin := api.Group("", middleware.Authenticate(deps.Auth, log), requireAdmin)

	// Users.
	admin.GET("/users", users.List)
	admin.POST("/users", users.Create)
	admin.GET("/users/:id", users.Get)
	admin.PATCH("/users/:id", users.Update)
	admin.DELETE("/users/:id", users.Delete)
	admin.PATCH("/users/:id/ban", users.Ban)
	admin.PATCH("/users/:id/unban", users.Unban)
	admin.PATCH("/users/:id/role", users.UpdateRole)
	admin.PATCH("/user-admins/:id/admin", users.UpdateAdmin)

	// Projects.
	admin.GET("/projects", projects.List)
	admin.POST("/projects", projects.Create)
	admin.GET("/projects/:id", projects.Get)
	admin.PATCH("/projects/:id", projects.Update)
	admin.DELETE("/projects/:id", projects.Delete)
	admin.PATCH("/projects/:id/status", projects.UpdateStatus)

	// Progress.
	admin.GET("/progress-projects", progress.List)
	admin.POST("/progress-projects", progress.Create)
	admin.GET("/progress-projects/:id", progress.Get)
	admin.PATCH("/progress-projects/:id", progress.Update)
	admin.DELETE("/progress-projects/:id", progress.Delete)

	// Auto tasks. The static /applications route wins over /:id.
	admin.GET("/auto-task", autoTasks.List)
	admin.POST("/auto-task", autoTasks.Create)
	admin.GET("/auto-task/applications", autoTasks.Applications)
	admin.GET("/auto-task/:id", autoTasks.Get)
	admin.PATCH("/auto-task/:id", autoTasks.Update)
	admin.PUT("/auto-task/:id/update", autoTasks.Update)
	admin.DELETE("/auto-task/:id", autoTasks.Delete)

	// Transactions.
	admin.GET("/transactions", transactions.List)
	admin.POST("/transactions", transactions.Create)
	admin.GET("/transactions/:id", transactions.Get)
	admin.PATCH("/transactions/:id", transactions.Update)
	admin.DELETE("/transactions/:id", transactions.Delete)

	// Admin action log.
	admin.GET("/admin-action-logs", audit.ListAll)
	admin.GET("/admin-action-logs/query", audit.Query)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
