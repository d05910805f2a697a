package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/config"
	"github.com/kyp2022/ghostlink/internal/app/prover"
	appbuilder "github.com/kyp2022/ghostlink/pkg/app_builder"
	"github.com/kyp2022/ghostlink/pkg/logger"
	"github.com/kyp2022/ghostlink/pkg/rest"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	EnvPort         = "MOCK_PROVER_PORT"
	EnvDelay        = "MOCK_PROVER_DELAY"
	EnvRejectStatus = "MOCK_PROVER_REJECT_STATUS"
	EnvRejectCode   = "MOCK_PROVER_REJECT_CODE"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		panic(err)
	}
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{
		Config: logger.LoggerConfig{LogLevel: zerolog.InfoLevel},
		Args:   []logger.LoggerArg{{Key: "service", Value: "mock-prover"}},
	})
	log := logger.Default()

	engine := prover.NewFakeEngine()
	delay, err := time.ParseDuration(config.GetenvDefault(EnvDelay, "0s"))
	if err != nil {
		log.Fatal(err, "Invalid "+EnvDelay)
	}
	engine.Delay = delay
	engine.RejectStatus = config.GetenvDefault(EnvRejectStatus, "")
	engine.RejectCode = config.GetenvDefault(EnvRejectCode, "")

	app := &appbuilder.Application{
		Logger: log,
		Addr:   fmt.Sprintf("0.0.0.0:%s", config.GetenvDefault(EnvPort, "3000")),
		Engine: newRouter(engine, log),
	}
	log.Infof("Mock prover listening on %s (delay %s)", app.Addr, delay)
	if err := app.Start(); err != nil {
		log.Fatal(err, "Mock prover stopped")
	}
}

func newRouter(engine prover.Engine, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), rest.RequestLogger(log))
	rest.Register(router, []rest.Route{
		rest.NewRoute(rest.POST, "", "prove", proveHandler(engine, log)),
	}, func(r rest.Route) {
		log.Warnf("Unrecognized HTTP method: %s", r.Method)
	})
	return router
}

func proveHandler(engine prover.Engine, base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prover.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, prover.Response{Status: "error", ErrorCode: "BAD_REQUEST", Message: err.Error()})
			return
		}
		log := base.WithContext(c.Request.Context())
		log.Infof("Proving %s claim with %d fields for %s", req.CredentialType, len(req.Data), req.Recipient)

		resp, err := engine.Prove(c.Request.Context(), req)
		if err != nil {
			log.Error(err, "Fake proof failed")
			c.JSON(http.StatusInternalServerError, prover.Response{Status: "error", ErrorCode: "INTERNAL", Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
