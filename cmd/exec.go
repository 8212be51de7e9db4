package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-portal/config"
	"booking-portal/handlers"
	"booking-portal/internal/gateway"
	"booking-portal/monitoring"
	"booking-portal/security"
	"booking-portal/services"
	"booking-portal/utils"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"go.uber.org/zap"
)

// Start wires the portal together and runs it until a shutdown signal.
func Start() error {
	cfg := config.LoadConfig()

	log, err := utils.NewLogger(cfg.Environment)
	if err != nil {
		return err
	}
	defer log.Sync()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := gateway.New(cfg.APIBaseURL, cfg.APITimeout, log)

	// Services
	sessionService := services.NewSessionService(redisClient, gw, cfg.SessionTTL, log)
	bookingService := services.NewBookingService(redisClient, gw, cfg.MaxAttendees, cfg.WorkflowTTL, log)
	paymentService := services.NewPaymentService(ctx, redisClient, gw, pn, bookingService,
		cfg.PaymentPollInterval, cfg.PaymentPollMaxErrors, log)
	authoringService := services.NewAuthoringService(gw, log)
	ticketService := services.NewTicketService(gw, log)

	// Handlers
	router := &handlers.Router{
		Auth:       handlers.NewAuthHandler(sessionService, cfg.SessionCookie, cfg.SessionTTL),
		Events:     handlers.NewEventHandler(gw),
		Bookings:   handlers.NewBookingHandler(bookingService, ticketService, gw),
		Payments:   handlers.NewPaymentHandler(paymentService, bookingService),
		Admin:      handlers.NewAdminHandler(authoringService, ticketService, gw),
		Sessions:   sessionService,
		Limiter:    security.NewRateLimiter(redisClient),
		CookieName: cfg.SessionCookie,
		Log:        log,
	}

	e := echo.New()
	router.Register(e)

	// Pick up payments that were mid-flight when the last process died.
	go paymentService.Resume(ctx)

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go serveMetrics(cfg.MetricsPort, log)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go handleShutdown(cancel, server, log)

	log.Info("portal listening",
		zap.String("port", cfg.Port),
		zap.String("api_base_url", cfg.APIBaseURL),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func serveMetrics(port string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info("metrics listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server stopped", zap.Error(err))
	}
}

func handleShutdown(cancel context.CancelFunc, server *http.Server, log *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}
