// Package api wires the HTTP surface: database, cache, services, routes.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskhub/backend/internal/audit"
	"taskhub/backend/internal/cache"
	"taskhub/backend/internal/config"
	"taskhub/backend/internal/handlers"
	"taskhub/backend/internal/middleware"
	"taskhub/backend/internal/models"
	"taskhub/backend/internal/monitoring"
	"taskhub/backend/internal/permission"
	"taskhub/backend/internal/services"
)

type Server struct {
	cfg         *config.Config
	db          *gorm.DB
	cache       *cache.RedisCache
	router      *gin.Engine
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	redisCache := cache.New(&cache.Config{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	s := &Server{
		cfg:    cfg,
		db:     db,
		cache:  redisCache,
		logger: logger,
	}

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Health(ctx)
	})

	if err := s.seedAdmin(context.Background()); err != nil {
		return nil, err
	}

	s.buildRouter()

	return s, nil
}

func (s *Server) buildRouter() {
	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.Default())

	if s.cfg.RateLimit.Enabled {
		s.rateLimiter = middleware.NewRateLimiter(
			s.cfg.RateLimit.RequestsPerMin,
			s.cfg.RateLimit.BurstSize,
			s.cfg.RateLimit.CleanupInterval,
		)
		router.Use(s.rateLimiter.Middleware())
	}

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/ready", monitoring.ReadinessHandler())
	router.GET("/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	auditWriter := audit.NewWriter()
	auditReader := audit.NewReader(s.db)

	projectService := services.NewCachedProjectService(
		services.NewProjectService(s.db, auditWriter), s.cache)
	taskService := services.NewCachedTaskService(
		services.NewTaskService(s.db, auditWriter, auditReader), s.cache)
	userService := services.NewUserService(s.db)
	analyticsService := services.NewCachedAnalyticsService(
		services.NewAnalyticsService(s.db), s.cache)
	authService := services.NewAuthService(s.db, s.cfg.Auth.JWTSecret,
		s.cfg.Auth.AccessTokenTTL, s.cfg.Auth.RefreshTokenTTL)
	registerService := services.NewRegisterService(s.db, s.cfg.Auth.BCryptCost)

	authHandler := handlers.NewAuthHandler(authService, s.cfg.Auth.AccessTokenTTL)
	registerHandler := handlers.NewRegisterHandler(registerService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	authn := middleware.Auth(s.cfg.Auth.JWTSecret)

	api := router.Group("/api")
	{
		api.POST("/auth/register", registerHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authn, authHandler.Logout)

		projects := api.Group("/projects", authn)
		{
			projects.GET("", projectHandler.List)
			projects.POST("", middleware.AdminOnly(), projectHandler.Create)

			projects.GET("/:id",
				middleware.RequireProjectAccess(projectService, permission.ReadProject),
				projectHandler.Get)
			projects.PATCH("/:id", middleware.AdminOnly(), projectHandler.Update)
			projects.DELETE("/:id", middleware.AdminOnly(), projectHandler.Delete)

			projects.POST("/:id/members", middleware.AdminOnly(), projectHandler.AddMember)
			projects.PATCH("/:id/members/:memberId", middleware.AdminOnly(), projectHandler.UpdateMember)
			projects.DELETE("/:id/members/:memberId", middleware.AdminOnly(), projectHandler.RemoveMember)

			projects.GET("/:id/tasks",
				middleware.RequireProjectAccess(projectService, permission.ReadProject),
				taskHandler.ListByProject)
			projects.POST("/:id/tasks",
				middleware.RequireProjectAccess(projectService, permission.WriteTask),
				taskHandler.Create)

			projects.GET("/:id/analytics",
				middleware.RequireProjectAccess(projectService, permission.ReadProject),
				analyticsHandler.ProjectAnalytics)
		}

		tasks := api.Group("/tasks", authn)
		{
			tasks.GET("/:id",
				middleware.RequireTaskAccess(taskService, projectService, permission.ReadProject),
				taskHandler.Get)
			tasks.PATCH("/:id",
				middleware.RequireTaskAccess(taskService, projectService, permission.WriteTask),
				taskHandler.Update)
			tasks.DELETE("/:id",
				middleware.RequireTaskAccess(taskService, projectService, permission.WriteTask),
				taskHandler.Delete)
			tasks.GET("/:id/history",
				middleware.RequireTaskAccess(taskService, projectService, permission.ReadProject),
				taskHandler.History)
		}

		users := api.Group("/users", authn, middleware.AdminOnly())
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.PATCH("/:id/role", userHandler.UpdateRole)
			users.DELETE("/:id", userHandler.Delete)
		}
	}

	s.router = router
}

// seedAdmin bootstraps the first ADMIN account when the users table is
// empty. Skipped when no admin password is configured.
func (s *Server) seedAdmin(ctx context.Context) error {
	if s.cfg.Admin.Password == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Admin.Password), s.cfg.Auth.BCryptCost)
	if err != nil {
		return err
	}

	admin := models.User{
		ID:           uuid.Must(uuid.NewV4()),
		Email:        s.cfg.Admin.Email,
		Name:         s.cfg.Admin.Name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	s.logger.Info("seeded admin account", "email", admin.Email)
	return nil
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) DB() *gorm.DB {
	return s.db
}

func (s *Server) Close() error {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Warn("closing redis", "error", err)
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
