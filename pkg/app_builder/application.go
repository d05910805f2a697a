package appbuilder

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kyp2022/ghostlink/pkg/logger"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

const shutdownGrace = 15 * time.Second

type Application struct {
	Logger *logger.Logger
	Addr   string
	Conn   *amqp.Connection
	Engine *gin.Engine
}

type ApplicationInterface interface {
	Start() error
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up to shutdownGrace.
// Proof computations already handed to the engine are not stopped by the drain.
func (a *Application) Start() error {
	a.Logger.Info("Starting Application runtime...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              a.Addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Infof("REST API is now listening on: %s", a.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down REST API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	if a.Conn != nil {
		_ = a.Conn.Close()
	}
	return err
}
