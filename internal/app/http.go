package app

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Proof-social/proof-social-instagram-auth/internal/callback"
	"github.com/Proof-social/proof-social-instagram-auth/internal/config"
	"github.com/Proof-social/proof-social-instagram-auth/internal/handler"
	"github.com/Proof-social/proof-social-instagram-auth/internal/meta"
	"github.com/Proof-social/proof-social-instagram-auth/internal/secrets"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	apps := secrets.NewApps(
		infra.Secrets,
		cfg.MetaAppIDSecretName,
		cfg.MetaAppSecretSecretName,
		cfg.AppConfigCacheTTL,
	)

	graph := meta.NewClient(cfg.GraphBaseURL, nil)

	processor := callback.NewProcessor(
		apps,
		infra.Secrets,
		infra.Integrations,
		graph,
		callback.NewGuard(),
		cfg.ReplayWindow,
	)

	authHandler := handler.NewHandler(processor, apps, infra.Verifier, cfg)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Proof Social Instagram Auth API",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, infra.Close, nil
}
