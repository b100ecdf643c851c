package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/config"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/http/handlers"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/http/middleware"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/ipn"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/mpay24"
	"github.com/chesio/bc-woocommerce-mpay24-gateway/internal/modules/orders"
)

// NewRouter wires the gin engine: middleware chain, order store, IPN engine
// and payment page client.
func NewRouter(logger *slog.Logger, db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()
	// No proxies are trusted: ClientIP in the access log reports the TCP
	// peer, never an X-Forwarded-For value the caller picked.
	_ = r.SetTrustedProxies(nil)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ErrorHandler(logger))

	repo := orders.NewRepo(db)

	validator := ipn.NewValidator(repo, cfg.IPNSubnets, logger)
	reconciler := ipn.NewReconciler(logger)
	events := ipn.NewEventLog(db, logger)
	urls := ipn.NewURLBuilder(cfg.BaseURL)

	client := mpay24.NewClient(mpay24.Config{
		User:     cfg.Mpay24User,
		Password: cfg.Mpay24Password,
		TestMode: cfg.TestMode(),
	})

	ipnHandler := handlers.NewIPNHandler(logger, validator, reconciler, events)
	payHandler := handlers.NewPayHandler(logger, repo, urls, client, cfg.BaseURL)

	r.GET(ipn.ConfirmationPath, ipnHandler.Handle)
	r.POST("/orders/:id/pay", payHandler.Pay)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
