package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/trustedgroup/enrollment-service/internal/app"
	"github.com/trustedgroup/enrollment-service/internal/config"
	"github.com/trustedgroup/enrollment-service/internal/controllers"
	"github.com/trustedgroup/enrollment-service/internal/middleware"
	"github.com/trustedgroup/enrollment-service/internal/repositories"
	"github.com/trustedgroup/enrollment-service/internal/routes"
	"github.com/trustedgroup/enrollment-service/internal/services"
	"github.com/trustedgroup/enrollment-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	allowlistRepo := repositories.NewAllowlistRepository(application.DB)
	pendingRepo := repositories.NewPendingSessionRepository(application.DB)
	identityRepo := repositories.NewIdentityRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	channel := services.NewTwilioChannel(cfg)
	sessionService := services.NewSessionService(cfg)
	adminPolicy := services.NewAdminPolicy(cfg)

	invitationService := services.NewInvitationService(allowlistRepo, pendingRepo, channel, cfg)
	enrollmentService := services.NewEnrollmentService(allowlistRepo, pendingRepo, identityRepo, channel, cfg)
	cleanupService := services.NewCleanupService(allowlistRepo, pendingRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	enrollmentController := controllers.NewEnrollmentController(invitationService, enrollmentService, sessionService, cfg)
	adminController := controllers.NewAdminController(invitationService, enrollmentService)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")

	// Open endpoints: webhook + enrollment finalization
	router.HandleFunc(routes.Answer, enrollmentController.Answer).Methods("POST")
	router.HandleFunc(routes.Login, enrollmentController.Login).Methods("POST")
	router.HandleFunc(routes.Logout, enrollmentController.Logout).Methods("POST")

	// Admin endpoints behind the session-cookie admin gate
	adminRouter := router.NewRoute().Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware(sessionService, adminPolicy))
	adminRouter.HandleFunc(routes.Invite, enrollmentController.Invite).Methods("POST")
	adminRouter.HandleFunc(routes.Uninvite, adminController.Uninvite).Methods("POST")
	adminRouter.HandleFunc(routes.Remove, adminController.Remove).Methods("POST")

	//----------------------------------------------------------------------
	// Setup daily cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()

	_, schErr := c.AddFunc("0 3 * * *", func() {
		if e := cleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled enrollment cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule enrollment cleanup job")
	}

	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
