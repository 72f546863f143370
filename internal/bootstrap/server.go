package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/savichev/kickora/api"
	"github.com/savichev/kickora/config"
	"github.com/savichev/kickora/internal/service/booking"
	"github.com/savichev/kickora/internal/service/matches"
	"github.com/savichev/kickora/internal/service/payments"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	registry *prometheus.Registry,
	matchSvc matches.MatchUseCase,
	bookingSvc booking.BookingUseCase,
	paymentSvc payments.PaymentUseCase,
) error {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.Use(api.AuthMiddleware())

	matchHandler := api.NewMatchHandler(matchSvc, bookingSvc)
	matchHandler.Register(v1.Group("/matches"))

	paymentHandler := api.NewPaymentHandler(paymentSvc)
	paymentHandler.Register(v1.Group("/payment"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
