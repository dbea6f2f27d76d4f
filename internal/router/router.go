package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tandem/internal/auth"
	"tandem/internal/categorize"
	"tandem/internal/logging"
	"tandem/internal/metrics"
	"tandem/internal/middleware"
	"tandem/internal/pantry"
	"tandem/internal/shopping"
)

// Deps is everything the HTTP surface is built from. Recategorize may be
// nil, in which case the admin route is not registered.
type Deps struct {
	Auth         *auth.Handler
	Shopping     *shopping.Handler
	Pantry       *pantry.Handler
	Recategorize *categorize.Handler
	Metrics      *metrics.Metrics
	CORSOrigins  []string
	Log          *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		logging.GinLogger(d.Log),
		d.Metrics.Middleware(),
	)

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
			ExposeHeaders:    []string{"Idempotent-Replayed"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// ───────────────────────── AUTH ─────────────────────────
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
	}

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(d.Log))

	// ───────────────────────── SHOPPING LIST ─────────────────────────
	{
		protected.GET("/shopping-list", d.Shopping.Get)
		protected.POST("/shopping-list/reconcile", d.Shopping.Reconcile)
	}

	// ───────────────────────── PANTRY ─────────────────────────
	{
		protected.POST("/orders", d.Pantry.CreateOrder)
		protected.GET("/pantry", d.Pantry.List)
	}

	// ───────────────────────── OWNER ROUTES ─────────────────────────
	owner := protected.Group("")
	owner.Use(middleware.RequireRole(auth.RoleOwner))
	{
		owner.POST("/household/members", d.Auth.AddMember)
		if d.Recategorize != nil {
			owner.POST("/admin/pantry/recategorize", d.Recategorize.Recategorize)
		}
	}

	return r
}
