package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/herbadrink/storefront/internal/config"
	"github.com/herbadrink/storefront/internal/gateway"
	"github.com/herbadrink/storefront/internal/metrics"
	"github.com/herbadrink/storefront/internal/orders"
	"github.com/herbadrink/storefront/internal/store"
	"github.com/herbadrink/storefront/internal/webhook"
)

func init() {
	// Initialize logger
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.FromEnv()
	if cfg.ServerKey == "" {
		log.Fatal("MIDTRANS_SERVER_KEY must be set")
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open order store: ", err)
	}
	defer st.Close()

	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.ServerKey, cfg.SiteBaseURL)
	orderHandler := orders.New(st, gw)
	reconciler := webhook.New(st, cfg.ServerKey)

	router := gin.Default()

	// Add Prometheus middleware
	router.Use(metrics.PrometheusMiddleware("storefront"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Order endpoints
	router.POST("/api/orders", orderHandler.CreateOrder)
	router.GET("/api/orders/:orderId", orderHandler.GetOrder)
	router.POST("/api/anon-order", orderHandler.TrackOrder)
	router.POST("/api/payment", orderHandler.CreatePayment)

	// Gateway callback
	router.POST("/api/webhook/midtrans", reconciler.HandleNotification)
	router.GET("/gateway/circuit-status", gw.CircuitStatus)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.WithFields(log.Fields{
		"gateway_url": cfg.GatewayBaseURL,
		"db_path":     cfg.DBPath,
	}).Info("Storefront service starting on ", cfg.ListenAddr)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
