package routes

import (
	"net/http"
	"time"

	adminapi "civix-api/internal/api/admin"
	authapi "civix-api/internal/api/auth"
	contributorsapi "civix-api/internal/api/contributors"
	csrfapi "civix-api/internal/api/csrf"
	docsapi "civix-api/internal/api/docs"
	issuesapi "civix-api/internal/api/issues"
	profileapi "civix-api/internal/api/profile"
	webhooksapi "civix-api/internal/api/webhooks"
	"civix-api/internal/app/http/httperr"
	"civix-api/internal/app/http/middleware"
	"civix-api/internal/domain/users"
	"civix-api/internal/infra/csrf"
	"civix-api/internal/infra/metrics"
	"civix-api/internal/infra/sanitizer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const Version = "1.0.0"

// Options is built once at startup and read-only afterwards.
type Options struct {
	Logger  *logrus.Logger
	Metrics *metrics.Metrics

	Sanitizer    *sanitizer.Sanitizer
	MaxBodyBytes int64
	CSRFStore    *csrf.Store
	CSRFExempt   csrf.Rules

	JWTSecret     []byte
	WebhookSecret []byte
	CORSOrigins   []string
	Production    bool

	Issues       issuesapi.Store
	Users        authapi.Store
	Profiles     profileapi.Store
	Contributors contributorsapi.Store
	Admin        adminapi.Store
}

// New builds the engine with the security pipeline in front of every
// route. Outer to inner: recovery, request log, CORS, generic error
// translator, panic-to-error, CSRF error translator, sanitization, CSRF
// guard.
func New(opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Authorization",
				middleware.HeaderCSRFToken, middleware.HeaderAltCSRFToken, middleware.HeaderRequestID,
			},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.Errors(middleware.ErrorsConfig{Production: opts.Production, Logger: opts.Logger}))
	r.Use(middleware.RecoverErrors())
	r.Use(middleware.CSRFErrors())
	r.Use(middleware.SanitizeInput(middleware.SanitizeConfig{
		Sanitizer:    opts.Sanitizer,
		MaxBodyBytes: opts.MaxBodyBytes,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
	}))
	r.Use(middleware.CSRF(middleware.CSRFConfig{
		Store:   opts.CSRFStore,
		Exempt:  opts.CSRFExempt,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	}))

	RegisterRoutes(r, opts)

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(httperr.NotFound("Route not found"))
	})

	return r
}

func RegisterRoutes(r *gin.Engine, opts Options) {
	h := httperr.Handle

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/api-docs", docsapi.NewHandler("Civix API", Version, r.Routes).Index)

	api := r.Group("/api")
	api.GET("/csrf-token", h(csrfapi.Token))

	auth := authapi.NewHandler(opts.Users, opts.JWTSecret, opts.Logger)
	api.POST("/auth/register", h(auth.Register))
	api.POST("/auth/login", h(auth.Login))

	issues := issuesapi.NewHandler(opts.Issues, opts.Logger)
	api.POST("/issues", middleware.OptionalAuth(opts.JWTSecret), h(issues.Create))
	api.GET("/issues", h(issues.List))
	api.GET("/issues/:id", h(issues.Get))

	contributors := contributorsapi.NewHandler(opts.Contributors)
	api.GET("/contributors", h(contributors.List))

	webhooks := webhooksapi.NewHandler(opts.WebhookSecret, opts.Issues, opts.Logger)
	api.POST("/webhooks/media", h(webhooks.Media))

	// Authenticated
	authed := api.Group("/")
	authed.Use(middleware.AuthMiddleware(opts.JWTSecret))

	profile := profileapi.NewHandler(opts.Profiles)
	authed.GET("/profile", h(profile.Get))
	authed.PUT("/profile", h(profile.Update))
	authed.POST("/auth/change-password", h(auth.ChangePassword))

	// Admin
	admin := authed.Group("/")
	admin.Use(middleware.RequireRole(users.RoleAdmin))

	admin.PATCH("/issues/:id/status", h(issues.UpdateStatus))
	admin.DELETE("/issues/:id", h(issues.Delete))

	stats := adminapi.NewHandler(opts.Admin)
	admin.GET("/admin/stats", h(stats.Stats))
	admin.GET("/admin/users", h(stats.ListUsers))
}
