// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brydge/brydge-backend/internal/config"
	"github.com/brydge/brydge-backend/internal/fingerprint"
	"github.com/brydge/brydge-backend/internal/handlers"
	"github.com/brydge/brydge-backend/internal/matching"
	"github.com/brydge/brydge-backend/internal/middleware"
	"github.com/brydge/brydge-backend/internal/repository"
	"github.com/brydge/brydge-backend/internal/services"
	"github.com/brydge/brydge-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 unavailable, storing uploads on local disk")
		storageService = services.NewLocalStorageService(cfg)
	}

	clearanceRepo := repository.NewGormClearanceRepository(db)
	workRepo := repository.NewGormWorkRepository(db)

	matcher := matching.NewMatcher(cfg.Matching.MinConfidence, cfg.Matching.MaxResults)
	extractor := selectExtractor(cfg)

	authService := services.NewAuthService(db, cfg)
	workService := services.NewWorkService(db, storageService, extractor)
	clearanceService := services.NewClearanceService(clearanceRepo, workRepo, notificationService)
	matchingService := services.NewMatchingService(workRepo, matcher, clearanceService)
	paymentService := services.NewPaymentService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	workHandler := handlers.NewWorkHandler(workService)
	clearanceHandler := handlers.NewClearanceHandler(clearanceService, matchingService)
	fingerprintHandler := handlers.NewFingerprintHandler(extractor, matchingService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Work catalog routes
		works := v1.Group("/works")
		{
			works.GET("/originals", middleware.OptionalAuth(), workHandler.ListOriginals)
			works.GET("/originals/:id", middleware.OptionalAuth(), workHandler.GetOriginal)

			protected := works.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/originals", middleware.UploadRateLimit(), workHandler.CreateOriginal)
				protected.POST("/derivatives", middleware.UploadRateLimit(), workHandler.CreateDerivative)
				protected.GET("/derivatives", workHandler.ListDerivatives)
				protected.GET("/derivatives/:id", workHandler.GetDerivative)
				protected.GET("/derivatives/:id/candidates", clearanceHandler.Candidates)
			}
		}

		// Clearance negotiation routes
		clearances := v1.Group("/clearances")
		clearances.Use(middleware.AuthRequired())
		{
			clearances.POST("", clearanceHandler.Create)
			clearances.POST("/auto", clearanceHandler.CreateWithMatching)
			clearances.GET("", clearanceHandler.List)
			clearances.GET("/statistics", clearanceHandler.Statistics)
			clearances.GET("/:id", clearanceHandler.Get)
			clearances.POST("/:id/respond", clearanceHandler.Respond)
			clearances.POST("/:id/counter", clearanceHandler.Counter)
			clearances.POST("/:id/accept", clearanceHandler.Accept)
		}

		// Fingerprint routes
		fingerprints := v1.Group("/fingerprints")
		fingerprints.Use(middleware.AuthRequired())
		{
			fingerprints.POST("/extract", middleware.UploadRateLimit(), fingerprintHandler.Extract)
			fingerprints.POST("/compare", fingerprintHandler.Compare)
			fingerprints.POST("/match", fingerprintHandler.Match)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/clearance-fee", paymentHandler.CreateClearanceFee)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
			payments.GET("/history", paymentHandler.GetPaymentHistory)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}

// selectExtractor prefers the Chromaprint CLI when it is installed and
// falls back to the deterministic hash extractor otherwise.
func selectExtractor(cfg *config.Config) fingerprint.Extractor {
	fpcalc := fingerprint.NewFpcalcExtractor(cfg.Fingerprint.FpcalcPath)
	if fpcalc.Available() {
		return fpcalc
	}

	logrus.WithField("fpcalc_path", cfg.Fingerprint.FpcalcPath).
		Warn("fpcalc not found, using stub fingerprint extractor")
	return fingerprint.StubExtractor{}
}
