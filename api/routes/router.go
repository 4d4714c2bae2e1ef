// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"taplist/internal/analytics"
	"taplist/internal/auth"
	"taplist/internal/batches"
	"taplist/internal/identity"
	"taplist/internal/lists"
	"taplist/internal/nfctags"
	"taplist/internal/shared/config"
	"taplist/internal/shared/database"
	"taplist/internal/taps"
	"taplist/internal/visitors"
	"taplist/pkg/cache"
	"taplist/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	log      *logger.Logger
	producer taps.EventProducer

	// Cross-domain services, kept for setter injection
	cacheService   cache.Service
	batchService   batches.Service
	tagService     nfctags.Service
	visitorService visitors.Service
	tapService     taps.Service
	authRepo       auth.Repository
	authService    auth.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer taps.EventProducer, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		log:      log,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Redis-backed cache, shared by lists (PIN throttle) and analytics
	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.GetRedis())
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Setup auth routes
		r.setupAuthRoutes(api)

		// Setup admin catalog routes (batches before tags: tags reference batches)
		r.setupBatchRoutes(api)
		r.setupTagRoutes(api)

		// Setup visitor routes
		r.setupVisitorRoutes(api)

		// Setup list routes
		r.setupListRoutes(api)

		// Setup tap routes (the /t/... redirect endpoint lives at the engine root)
		r.setupTapRoutes(engine, api)

		// Setup identity routes (must come after taps/auth for setter injection)
		r.setupIdentityRoutes(api)

		// Setup analytics routes
		r.setupAnalyticsRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "taplist-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "taplist-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config, r.log)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	// Kept for the identity claimer and landing resolver injections
	r.authRepo = authRepo
	r.authService = authService

	authRouter.SetupRoutes(rg)
}

// setupBatchRoutes configures batch management routes
func (r *Router) setupBatchRoutes(rg *gin.RouterGroup) {
	batchRepo := batches.NewRepository(r.db.GetPostgreSQL())
	batchService := batches.NewService(batchRepo)
	batchController := batches.NewController(batchService)

	r.batchService = batchService

	batches.SetupBatchRoutes(rg, batchController)
}

// setupTagRoutes configures tag management routes
func (r *Router) setupTagRoutes(rg *gin.RouterGroup) {
	tagRepo := nfctags.NewRepository(r.db.GetPostgreSQL())
	tagService := nfctags.NewService(tagRepo)
	tagController := nfctags.NewController(tagService)

	r.tagService = tagService

	nfctags.SetupTagRoutes(rg, tagController)
}

// setupVisitorRoutes configures anonymous visitor routes
func (r *Router) setupVisitorRoutes(rg *gin.RouterGroup) {
	visitorRepo := visitors.NewRepository(r.db.GetPostgreSQL())
	visitorService := visitors.NewService(visitorRepo, r.log)
	visitorController := visitors.NewController(visitorService, &r.config.Attribution)

	r.visitorService = visitorService

	visitors.SetupVisitorRoutes(rg, visitorController)
}

// setupListRoutes configures grocery list routes
func (r *Router) setupListRoutes(rg *gin.RouterGroup) {
	listRepo := lists.NewRepository(r.db.GetPostgreSQL())
	listService := lists.NewService(listRepo, r.cacheService, &r.config.Attribution, r.log)
	listController := lists.NewController(listService, r.visitorService)

	lists.SetupListRoutes(rg, listController, r.config)
}

// setupTapRoutes configures the tap ingestion pipeline routes
func (r *Router) setupTapRoutes(engine *gin.Engine, rg *gin.RouterGroup) {
	tapRepo := taps.NewRepository(r.db.GetPostgreSQL())
	tapService := taps.NewService(
		tapRepo,
		r.batchService,
		r.tagService,
		r.visitorService,
		r.producer,
		&r.config.Attribution,
		r.log,
	)
	tapController := taps.NewController(tapService, &r.config.Attribution)

	r.tapService = tapService

	// Redirects honor the tapper's stored landing preference when signed in
	tapService.SetLandingResolver(auth.NewLandingResolverAdapter(r.authRepo))

	taps.SetupTapRoutes(engine, rg, tapController, r.config)
}

// setupIdentityRoutes configures the claim/attach engine and injects it into
// the tap and auth services as their history claimer
func (r *Router) setupIdentityRoutes(rg *gin.RouterGroup) {
	identityRepo := identity.NewRepository(r.db.GetPostgreSQL())
	identityService := identity.NewService(identityRepo, r.visitorService, &r.config.Attribution, r.log)
	identityController := identity.NewController(identityService, &r.config.Attribution)

	if r.tapService != nil {
		r.tapService.SetHistoryClaimer(identityService)
	}
	if r.authService != nil {
		r.authService.SetHistoryClaimer(identityService)
	}

	identity.SetupIdentityRoutes(rg, identityController)
}

// setupAnalyticsRoutes configures admin analytics routes
func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	analyticsService := analytics.NewService(analyticsRepo)

	// Cache-aside reads when Redis is up; straight repo reads otherwise
	if r.cacheService != nil {
		analyticsService.SetCacheService(r.cacheService)
	}

	analyticsController := analytics.NewController(analyticsService)

	analytics.SetupAnalyticsRoutes(rg, analyticsController)
}
