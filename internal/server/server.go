package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskhub/internal/config"
	"taskhub/internal/handler"
	"taskhub/internal/middleware"
	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/push"
	"taskhub/internal/repository"
	"taskhub/internal/workflow"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	NATS   *nats.Conn
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.Notification{},
		&model.ServiceRequest{},
	); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Database schema up to date")

	// Push-брокер не обязателен: без него уведомления только сохраняются
	var sender push.Sender = push.NoopSender{}
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Printf("⚠️ NATS unavailable, push delivery disabled: %v", err)
		nc = nil
	} else {
		log.Println("✅ Connected to NATS")
		sender = push.NewNATSSender(nc, cfg.PushSubject)
	}

	logger := log.Default()

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	serviceRequestRepo := repository.NewServiceRequestRepository(db)

	// Initialize services
	notifier := notify.NewService(notificationRepo, userRepo, sender, logger)
	engine := workflow.NewEngine(taskRepo, projectRepo, notifier, logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	taskHandler := handler.NewTaskHandler(engine, taskRepo)
	projectHandler := handler.NewProjectHandler(projectRepo, userRepo, notifier, logger)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	serviceRequestHandler := handler.NewServiceRequestHandler(serviceRequestRepo, userRepo, notifier, logger)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.PUT("/users/push-token", userHandler.UpdatePushToken)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/:id", taskHandler.GetByID)

		// Project routes
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", projectHandler.Get)

		// Notification routes
		authorized.GET("/notifications", notificationHandler.List)
		authorized.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)

		// Service request routes
		authorized.GET("/service-requests", serviceRequestHandler.List)
	}

	// Manager routes - task and project administration
	managers := authorized.Group("/")
	managers.Use(middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	{
		managers.POST("/tasks", taskHandler.Create)
		managers.DELETE("/tasks/:id", taskHandler.Delete)
		managers.PUT("/tasks/:id/approve", taskHandler.Approve)

		managers.POST("/projects", projectHandler.Create)
		managers.PUT("/projects/:id", projectHandler.Update)
		managers.PUT("/projects/:id/status", projectHandler.UpdateStatus)
		managers.DELETE("/projects/:id", projectHandler.Delete)

		managers.PUT("/service-requests/:id", serviceRequestHandler.Update)
	}

	// Employee routes - progress reporting and service requests
	employees := authorized.Group("/")
	employees.Use(middleware.RequireRole(model.RoleEmployee, model.RoleAdmin))
	{
		employees.POST("/tasks/:id/progress", taskHandler.SubmitProgress)
		employees.POST("/service-requests", serviceRequestHandler.Create)
	}

	return &Server{
		Engine: r,
		DB:     db,
		NATS:   nc,
		Config: cfg,
	}, nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.NATS != nil {
		if err := s.NATS.Drain(); err != nil {
			log.Printf("⚠️ NATS drain failed: %v", err)
		}
		s.NATS.Close()
	}

	log.Println("✅ Server exited properly")
}
