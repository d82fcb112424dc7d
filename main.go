package main

import (
	"time"

	"tomaai-api/config"
	"tomaai-api/database"
	"tomaai-api/internal/api/generation"
	routes "tomaai-api/internal/app/http"
	"tomaai-api/internal/app/http/middleware"
	"tomaai-api/internal/app/jobs"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/infra/imagegen"
	"tomaai-api/internal/infra/logging"
	"tomaai-api/internal/infra/storage"
	stripeinfra "tomaai-api/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const limiterMaxKeys = 10000

func main() {
	config.LoadEnv()
	logging.Init(config.LOG_LEVEL, config.IsProduction())

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB(config.DB_URL)

	plans.ConfigurePriceIDs(config.STRIPE_PRICE_STARTER, config.STRIPE_PRICE_PRO, config.STRIPE_PRICE_ENTERPRISE)
	stripeinfra.Configure(config.STRIPE_SECRET_KEY)
	if !stripeinfra.Configured() {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, checkout and portal are disabled")
	}

	if config.OPENAI_API_KEY != "" {
		generation.Provider = imagegen.NewOpenAIClient(config.OPENAI_API_KEY, config.OPENAI_IMAGE_MODEL, config.OPENAI_BASE_URL)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, image generation is disabled")
	}
	generation.Timeout = config.GENERATION_TIMEOUT

	store, err := storage.NewLocalStore(config.MEDIA_DIR, config.MEDIA_BASE_URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare media storage")
	}
	generation.Storage = storage.NewMirror(store)

	limiter := middleware.NewRateLimiter(config.GENERATE_RATE_PER_MINUTE)

	retention := time.Duration(config.WEBHOOK_EVENT_RETENTION_DAYS) * 24 * time.Hour
	scheduler, err := jobs.Start(database.DB, retention, jobs.Task{
		Name: "rate limiter cleanup",
		Spec: "@every 10m",
		Run:  func() { limiter.Cleanup(limiterMaxKeys) },
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start background jobs")
	}
	defer scheduler.Stop()

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	// CORS before routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, limiter)

	log.Info().Str("port", config.PORT).Str("env", config.APP_ENV).Msg("server starting")
	if err := r.Run(":" + config.PORT); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
