package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/config"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/database"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/handlers"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/jobs"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/repository"
	cronjobs "github.com/YeiyoNathnael/Green-Commitment-wall/internal/scheduler"
	"github.com/YeiyoNathnael/Green-Commitment-wall/internal/services"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/ai"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/logger"
	"github.com/YeiyoNathnael/Green-Commitment-wall/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// The Gemini oracle is optional. Without an API key every AI call falls
	// back to the deterministic estimators.
	var oracle ai.Oracle
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.WithError(err).Warn("Gemini client unavailable, using fallback estimates")
		} else {
			oracle = client
		}
	} else {
		logger.Log.Warn("GEMINI_API_KEY not set, using fallback estimates")
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	commitmentRepo := repository.NewCommitmentRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	aiService := services.NewAIService(oracle)
	gamificationService := services.NewGamificationService(
		userRepo, notificationService, services.DefaultLevelThresholds, services.DefaultBadgeRules())
	commitmentService := services.NewCommitmentService(
		commitmentRepo, milestoneRepo, commentRepo, userRepo, aiService, gamificationService, notificationService)
	progressService := services.NewProgressService(
		commitmentRepo, milestoneRepo, progressRepo, userRepo, gamificationService, notificationService)
	challengeService := services.NewChallengeService(challengeRepo, userRepo, notificationService)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	commitmentHandler := handlers.NewCommitmentHandler(commitmentService)
	progressHandler := handlers.NewProgressHandler(progressService)
	socialHandler := handlers.NewSocialHandler(notificationService, challengeService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public auth routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateProfileHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/{id}/commitments", commitmentHandler.GetUserCommitmentsHandler).Methods("GET")

	// Commitment routes
	commitmentRoutes := router.PathPrefix("/commitments").Subrouter()
	commitmentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	commitmentRoutes.HandleFunc("", commitmentHandler.CreateCommitmentHandler).Methods("POST")
	commitmentRoutes.HandleFunc("/{id}", commitmentHandler.GetCommitmentHandler).Methods("GET")
	commitmentRoutes.HandleFunc("/{id}", commitmentHandler.UpdateCommitmentHandler).Methods("PUT")
	commitmentRoutes.HandleFunc("/{id}", commitmentHandler.DeleteCommitmentHandler).Methods("DELETE")
	commitmentRoutes.HandleFunc("/{id}/like", commitmentHandler.ToggleLikeHandler).Methods("POST")
	commitmentRoutes.HandleFunc("/{id}/comments", commitmentHandler.AddCommentHandler).Methods("POST")
	commitmentRoutes.HandleFunc("/{id}/comments", commitmentHandler.GetCommentsHandler).Methods("GET")
	commitmentRoutes.HandleFunc("/{id}/progress", progressHandler.RecordProgressHandler).Methods("POST")
	commitmentRoutes.HandleFunc("/{id}/progress", progressHandler.GetProgressUpdatesHandler).Methods("GET")
	commitmentRoutes.HandleFunc("/{id}/milestones", progressHandler.GetMilestonesHandler).Methods("GET")

	// Wall routes
	wallRoutes := router.PathPrefix("/wall").Subrouter()
	wallRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	wallRoutes.HandleFunc("", commitmentHandler.GetWallFeedHandler).Methods("GET")
	wallRoutes.HandleFunc("/trending", commitmentHandler.GetTrendingHandler).Methods("GET")
	wallRoutes.HandleFunc("/stats", commitmentHandler.GetWallStatsHandler).Methods("GET")

	// Dashboard route
	dashboardRoutes := router.PathPrefix("/dashboard").Subrouter()
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	dashboardRoutes.HandleFunc("", progressHandler.GetDashboardHandler).Methods("GET")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", socialHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", socialHandler.MarkNotificationReadHandler).Methods("POST")

	// Challenge and leaderboard routes
	challengeRoutes := router.PathPrefix("/challenges").Subrouter()
	challengeRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	challengeRoutes.HandleFunc("", socialHandler.CreateChallengeHandler).Methods("POST")
	challengeRoutes.HandleFunc("", socialHandler.GetChallengesHandler).Methods("GET")
	challengeRoutes.HandleFunc("/{id}", socialHandler.GetChallengeHandler).Methods("GET")
	challengeRoutes.HandleFunc("/{id}/join", socialHandler.JoinChallengeHandler).Methods("POST")

	leaderboardRoutes := router.PathPrefix("/leaderboard").Subrouter()
	leaderboardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	leaderboardRoutes.HandleFunc("", socialHandler.GetLeaderboardHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/notifications", socialHandler.AdminNotifyHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background jobs
	reminder := jobs.NewReminderNotifier(commitmentRepo, notificationService)
	cronjobs.StartCronJobs(reminder, notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
