package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"scribesnap/internal/cache"
	"scribesnap/internal/config"
	"scribesnap/internal/controllers"
	"scribesnap/internal/database"
	"scribesnap/internal/jwt"
	"scribesnap/internal/logging"
	"scribesnap/internal/mailer"
	"scribesnap/internal/middleware"
	"scribesnap/internal/repository"
	"scribesnap/internal/service"
)

func main() {
	log := logging.New()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis holds OTP codes, reset tokens and the logout denylist, so unlike
	// a pure cache it is not optional here.
	cacheClient, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	log.Info().Msg("connected to Redis")

	// Mail: real SMTP relay when configured, log output otherwise.
	var mail mailer.Mailer
	if cfg.SMTPAddr != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		log.Warn().Msg("SMTP_ADDR not set, mail is written to the log")
		mail = mailer.NewLogMailer(log)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, cacheClient, mail, service.AuthConfig{
		OTPTTL:             time.Duration(cfg.OTPTTLMinutes) * time.Minute,
		ResetTTL:           time.Duration(cfg.ResetTTLMinutes) * time.Minute,
		BaseURL:            cfg.BaseURL,
		FrontendURL:        cfg.FrontendURL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
	}, log)
	noteService := service.NewNoteService(noteRepo)

	// Initialize controllers
	authController := controllers.NewAuthController(authService, cfg.FrontendURL)
	notesController := controllers.NewNotesController(noteService)
	qrcodeController := controllers.NewQRCodeController(noteService, cfg.FrontendURL)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)

	// Create a Gin router
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API v1 routes group with general rate limiting
	api := router.Group("/api/v1")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/signup", authController.SignUp)
			auth.POST("/login", authController.Login)
			auth.POST("/otp/verify", authController.VerifyOTP)
			auth.POST("/otp/resend", authController.ResendOTP)
			auth.POST("/password/forgot", authController.ForgotPassword)
			auth.POST("/password/reset", authController.ResetPassword)
			auth.GET("/oauth/google", authController.GoogleRedirect)
			auth.GET("/oauth/google/callback", authController.GoogleCallback)
		}

		// Protected routes - require JWT authentication
		protected := api.Group("")
		protected.Use(middleware.Auth(jwtService, authService))
		{
			protected.GET("/me", authController.Me)
			protected.PATCH("/me", authController.UpdateProfile)
			protected.POST("/auth/logout", authController.Logout)

			protected.GET("/notes", notesController.List)
			protected.POST("/notes", notesController.Create)
			protected.PATCH("/notes/:id", notesController.Update)
			protected.DELETE("/notes/:id", notesController.Delete)
			protected.GET("/notes/:id/qrcode", qrcodeController.NoteQRCode)
		}
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
