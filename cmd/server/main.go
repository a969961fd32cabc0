package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron"
	_ "modernc.org/sqlite"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/api/handlers"
	"github.com/promura/backend/internal/api/middleware"
	job "github.com/promura/backend/internal/jobs"
	"github.com/promura/backend/internal/metrics"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/service"
	"github.com/promura/backend/internal/storage"
	"github.com/promura/backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if cfg.SecretKey == "" {
		key, err := utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate secret key: %v", err)
		}
		cfg.SecretKey = key
		log.Println("Warning: SECRET_KEY not set, generated an ephemeral key; tokens will not survive a restart")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	store, err := storage.NewDocStore(db)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	collector := metrics.NewCollector()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	app.Use(middleware.Metrics(collector))
	app.Static("/static/library", cfg.LibraryPath)

	userRepo := repository.NewUserRepository(store)
	auditRepo := repository.NewAuditRepository(store)
	captionRepo := repository.NewCaptionRepository(store)
	mediaRepo := repository.NewMediaRepository(store)
	templateRepo := repository.NewTemplateRepository(store)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	auditService := service.NewAuditService(auditRepo)
	captionService := service.NewCaptionService(captionRepo)
	mediaService := service.NewMediaService(*cfg, mediaRepo)
	posterService := service.NewPosterService(*cfg)
	suggestionService := service.NewSuggestionService()
	queueService := service.NewQueueService(*cfg, mediaService, posterService, suggestionService, collector)
	templateService := service.NewTemplateService(templateRepo)

	if err := authService.SeedDefaults(context.Background()); err != nil {
		log.Fatalf("Failed to seed default users: %v", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg, authService, auditService)

	auth := handlers.NewAuthHandler(authService, userService, auditService)
	app.Post("/api/auth/login", auth.Login)

	api := app.Group("/api", authMiddleware.RequireAuth())

	api.Post("/auth/logout", auth.Logout)
	api.Get("/auth/me", auth.Me)
	api.Post("/auth/change-password", auth.ChangePassword)
	api.Get("/auth/users", authMiddleware.RequirePermission("all"), auth.ListUsers)

	team := handlers.NewTeamHandler(userService, auditService)
	teamGroup := api.Group("/team", authMiddleware.RequirePermission("all"))
	teamGroup.Get("/users", team.ListUsers)
	teamGroup.Post("/add-user", team.AddUser)
	teamGroup.Put("/update-user/:username", team.UpdateUser)
	teamGroup.Delete("/delete-user/:username", team.DeleteUser)

	audit := handlers.NewAuditHandler(auditService)
	auditGroup := api.Group("/audit", authMiddleware.RequirePermission("all"))
	auditGroup.Get("/logs", audit.Logs)
	auditGroup.Get("/user/:username", audit.UserLogs)

	post := handlers.NewPostHandler(queueService, posterService, suggestionService, auditService)
	app.Post("/schedule-post", authMiddleware.RequireAuth(), authMiddleware.RequirePermission("schedule"), post.SchedulePost)
	api.Get("/queue", authMiddleware.RequirePermission("queue"), post.Queue)
	api.Post("/queue/:id/cancel", authMiddleware.RequirePermission("queue"), post.Cancel)
	api.Post("/queue/:id/edit", authMiddleware.RequirePermission("queue"), post.Edit)
	api.Delete("/queue/:id", authMiddleware.RequirePermission("queue"), post.Delete)
	api.Get("/history", authMiddleware.RequirePermission("view"), post.History)
	api.Get("/status", authMiddleware.RequirePermission("view"), post.Status)
	api.Get("/schedule/suggestions", authMiddleware.RequirePermission("view"), post.Suggestions)
	api.Get("/schedule/patterns", authMiddleware.RequirePermission("view"), post.Patterns)

	metricsHandler := handlers.NewMetricsHandler(collector)
	api.Get("/metrics", authMiddleware.RequirePermission("metrics"), metricsHandler.Dashboard)

	caption := handlers.NewCaptionHandler(captionService, auditService)
	captionGroup := api.Group("/captions", authMiddleware.RequirePermission("captions"))
	captionGroup.Get("/", caption.List)
	captionGroup.Post("/upload", caption.Upload)
	captionGroup.Post("/replace-all", caption.ReplaceAll)
	captionGroup.Post("/add-single", caption.AddSingle)
	captionGroup.Get("/popular", caption.Popular)
	captionGroup.Get("/recent", caption.Recent)
	captionGroup.Get("/stats", caption.Stats)
	captionGroup.Post("/clear", caption.Clear)
	captionGroup.Put("/:id", caption.Update)
	captionGroup.Delete("/:id", caption.Delete)
	captionGroup.Post("/:id/use", caption.Use)

	media := handlers.NewMediaHandler(mediaService, auditService)
	libraryGroup := api.Group("/library")
	libraryGroup.Get("/", authMiddleware.RequirePermission("view"), media.Library)
	libraryGroup.Get("/search", authMiddleware.RequirePermission("view"), media.Search)
	libraryGroup.Get("/stats", authMiddleware.RequirePermission("view"), media.Stats)
	libraryGroup.Post("/upload", authMiddleware.RequirePermission("edit"), media.Upload)
	libraryGroup.Post("/:id/use", authMiddleware.RequirePermission("edit"), media.Use)
	libraryGroup.Delete("/:id", authMiddleware.RequirePermission("edit"), media.Delete)

	template := handlers.NewTemplateHandler(templateService)
	templateGroup := api.Group("/templates", authMiddleware.RequirePermission("schedule"))
	templateGroup.Get("/", template.List)
	templateGroup.Post("/", template.Create)
	templateGroup.Get("/stats", template.Stats)
	templateGroup.Get("/:id", template.Get)
	templateGroup.Put("/:id", template.Update)
	templateGroup.Delete("/:id", template.Delete)
	templateGroup.Post("/:id/use", template.Use)
	templateGroup.Post("/:id/duplicate", template.Duplicate)

	// cron jobs
	retentionJob := job.NewAuditRetentionJob(auditService)

	c := cron.New()
	c.AddFunc("@daily", retentionJob.Prune)
	c.Start()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
