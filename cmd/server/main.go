package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/config"
	"github.com/taskflow/project-management-api/internal/constants"
	"github.com/taskflow/project-management-api/internal/database"
	"github.com/taskflow/project-management-api/internal/handlers"
	"github.com/taskflow/project-management-api/internal/middleware"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/repository"
	"github.com/taskflow/project-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	logger, err := newLogger(cfg.GinMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	if err := database.Connect(cfg, logger); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// Audit wiring: the recorder observes every project/task mutation; the
	// registry lets log entries resolve still-existing subjects.
	recorder := audit.NewRecorder(activityRepo, logger)
	registry := newAuditRegistry()

	// Services
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, recorder)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, recorder)
	activityService := services.NewActivityLogService(activityRepo, registry, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	activityHandler := handlers.NewActivityLogHandler(activityService)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("failed to create redis session store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (register/login public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.Me)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/active", projectHandler.ActiveProjects)
			projects.GET("/completed", projectHandler.CompletedProjects)
			projects.GET("/search", projectHandler.SearchProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/assigned", taskHandler.AssignedTasks)
			tasks.GET("/pending", taskHandler.PendingTasks)
			tasks.GET("/high-priority", taskHandler.HighPriorityTasks)
			tasks.GET("/search", taskHandler.SearchTasks)
			tasks.GET("/project/:projectId", taskHandler.TasksByProject)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Activity log routes (protected, read-only)
		logs := api.Group("/activity-logs")
		logs.Use(middleware.RequireAuth())
		{
			logs.GET("", activityHandler.ListActivityLogs)
			logs.GET("/recent", activityHandler.RecentActivityLogs)
			logs.GET("/by-user/:userId", activityHandler.ActivityLogsByUser)
			logs.GET("/by-event/:eventType", activityHandler.ActivityLogsByEvent)
			logs.GET("/:id", activityHandler.GetActivityLog)
		}
	}

	// Start server
	logger.Info("server starting", zap.String("addr", ":8080"))
	if err := r.Run(":8080"); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode == "release" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newAuditRegistry registers a lookup per audited entity type.
func newAuditRegistry() *audit.Registry {
	registry := audit.NewRegistry()

	registry.Register("Project", func(db *gorm.DB, id uint64) (audit.Auditable, error) {
		var project models.Project
		if err := db.First(&project, id).Error; err != nil {
			return nil, err
		}
		return &project, nil
	})

	registry.Register("Task", func(db *gorm.DB, id uint64) (audit.Auditable, error) {
		var task models.Task
		if err := db.First(&task, id).Error; err != nil {
			return nil, err
		}
		return &task, nil
	})

	return registry
}
