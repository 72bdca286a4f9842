package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/internal/app/controller"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	personController    *controller.PersonController
	blacklistController *controller.BlacklistController
	matchController     *controller.MatchController
	configController    *controller.ConfigController
	authMiddleware      *middleware.AuthMiddleware
	healthCheck         func() error
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	personController *controller.PersonController,
	blacklistController *controller.BlacklistController,
	matchController *controller.MatchController,
	configController *controller.ConfigController,
	authMiddleware *middleware.AuthMiddleware,
	healthCheck func() error,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		personController:    personController,
		blacklistController: blacklistController,
		matchController:     matchController,
		configController:    configController,
		authMiddleware:      authMiddleware,
		healthCheck:         healthCheck,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authn := r.authMiddleware.Authenticate()
	require := r.authMiddleware.RequirePermission

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", authn, r.authController.Logout)
			auth.GET("/me", authn, r.authController.Me)
		}

		users := v1.Group("/users", authn, require(model.PermManageUsers))
		{
			users.POST("", r.userController.CreateUser)
			users.GET("", r.userController.ListUsers)
			users.POST("/:id/roles", r.userController.AssignRole)
		}

		roles := v1.Group("/roles", authn, require(model.PermManageUsers))
		{
			roles.POST("", r.userController.CreateRole)
			roles.GET("", r.userController.ListRoles)
		}

		persons := v1.Group("/persons", authn)
		{
			persons.POST("", require(model.PermCreatePerson), r.personController.CreatePerson)
			persons.GET("", require(model.PermViewPerson), r.personController.ListPersons)
			persons.GET("/:id", require(model.PermViewPerson), r.personController.GetPerson)
			persons.DELETE("/:id", require(model.PermDeletePerson), r.personController.DeletePerson)
			persons.POST("/:id/natural-details", require(model.PermCreatePerson), r.personController.CreateNaturalDetail)
			persons.POST("/:id/juridical-details", require(model.PermCreatePerson), r.personController.CreateJuridicalDetail)
			persons.GET("/:id/matches", require(model.PermViewMatches), r.personController.ListMatches)
		}

		blacklists := v1.Group("/blacklists", authn)
		{
			blacklists.POST("", require(model.PermManageBlacklist), r.blacklistController.CreateEntry)
			blacklists.GET("", require(model.PermViewBlacklist), r.blacklistController.ListEntries)
			blacklists.GET("/:id", require(model.PermViewBlacklist), r.blacklistController.GetEntry)
			blacklists.POST("/:id/persons", require(model.PermManageBlacklist), r.blacklistController.CreatePerson)
			blacklists.GET("/:id/persons", require(model.PermViewBlacklist), r.blacklistController.ListPersons)
		}

		listed := v1.Group("/blacklisted-persons", authn)
		{
			listed.GET("/:id", require(model.PermViewBlacklist), r.blacklistController.GetPerson)
			listed.DELETE("/:id", require(model.PermManageBlacklist), r.blacklistController.DeletePerson)
			listed.POST("/:id/natural-details", require(model.PermManageBlacklist), r.blacklistController.CreateNaturalDetail)
			listed.POST("/:id/juridical-details", require(model.PermManageBlacklist), r.blacklistController.CreateJuridicalDetail)
			listed.PUT("/:id/attributes/:name", require(model.PermManageBlacklist), r.blacklistController.SetAttribute)
			listed.GET("/:id/matches", require(model.PermViewMatches), r.blacklistController.ListMatches)
		}

		matches := v1.Group("/matches", authn, require(model.PermViewMatches))
		{
			matches.GET("", r.matchController.ListMatches)
			matches.GET("/stream", r.matchController.Stream)
			matches.GET("/export", r.matchController.Export)
			matches.GET("/:id", r.matchController.GetMatch)
		}

		cfg := v1.Group("/config", authn)
		{
			cfg.GET("", require(model.PermManageConfig), r.configController.List)
			cfg.GET("/:name", require(model.PermManageConfig), r.configController.Get)
			cfg.PUT("/:name", require(model.PermManageConfig), r.configController.Set)
		}
	}

	return router
}

func (r *Router) health(c *gin.Context) {
	if r.healthCheck != nil {
		if err := r.healthCheck(); err != nil {
			middleware.GetLoggerFromContext(c).Error("Health check failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "screening API is running",
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
