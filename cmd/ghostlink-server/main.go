package main

import (
	"github.com/kyp2022/ghostlink/internal/app/config"
	"github.com/kyp2022/ghostlink/internal/app/document"
	"github.com/kyp2022/ghostlink/internal/app/extract"
	"github.com/kyp2022/ghostlink/internal/app/handlers"
	"github.com/kyp2022/ghostlink/internal/app/hasher"
	"github.com/kyp2022/ghostlink/internal/app/normalizer"
	"github.com/kyp2022/ghostlink/internal/app/pipeline"
	"github.com/kyp2022/ghostlink/internal/app/prover"
	"github.com/kyp2022/ghostlink/internal/app/provider"
	appbuilder "github.com/kyp2022/ghostlink/pkg/app_builder"
	"github.com/kyp2022/ghostlink/pkg/logger"
	"github.com/kyp2022/ghostlink/pkg/rabbitmq"
	"github.com/kyp2022/ghostlink/pkg/rest"
)

const serviceName = "ghostlink-server"

type builder = appbuilder.AppBuilder[config.GhostlinkConfigJson, config.GhostlinkConfig]

func main() {
	if err := config.LoadDotenv(); err != nil {
		panic(err)
	}

	app := appbuilder.New[config.GhostlinkConfigJson, config.GhostlinkConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{{Key: "service", Value: serviceName}},
		}).
		LoadConfig(config.Path()).
		WithOption(func(a *builder) {
			if err := a.Config().Validate(); err != nil {
				a.Logger().Error(err, "Invalid configuration")
				panic(err)
			}
		}).
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(func(a *builder) {
			if logPublisher := rabbitmq.GetPublisher(rabbitmq.LogPublisherAlias); logPublisher != nil {
				logger.AddSinkToLoggerInstance(a.Logger(), rabbitmq.CreateRabbitmqLoggerSink(logPublisher, serviceName))
			}
		}).
		WithOption(func(a *builder) {
			cfg := a.Config()
			h := handlers.NewHandler(
				buildPipeline(a),
				handlers.WithProviders(buildProviders(a)),
				handlers.WithMaxUploadBytes(cfg.RestConf.MaxUploadBytes),
				handlers.WithLogger(a.Logger()),
			)
			a.AddGinMiddleware(
				rest.NewMiddleware(rest.GlobalGroup, rest.RequestLogger(a.Logger())),
				rest.NewMiddleware(rest.GlobalGroup, rest.CORSMiddleware(cfg.RestConf.AllowedOrigins)),
			)
			a.AddGinRoutes(h.Routes()...)
		}).
		InitGinRouter().
		Build()

	if err := app.Start(); err != nil {
		logger.Default().Fatal(err, "Server stopped")
	}
}

func buildPipeline(a *builder) *pipeline.Pipeline {
	cfg := a.Config()
	log := a.Logger()

	engine, err := prover.NewHTTPEngine(cfg.ProverConf, prover.WithEngineLogger(log))
	if err != nil {
		log.Error(err, "Failed to create proof engine client")
		panic(err)
	}
	log.Infof("Proof engine at %s", cfg.ProverConf.URL)

	opts := []func(*pipeline.Pipeline){pipeline.WithLogger(log)}
	if alerts := rabbitmq.GetPublisher(rabbitmq.AlertPublisherAlias); alerts != nil {
		opts = append(opts, pipeline.WithAlertPublisher(alerts))
		log.Info("Operational alerts enabled")
	}

	return pipeline.New(
		document.PDFLoader{},
		document.NewAuthenticator(cfg.DocumentConf),
		extract.New(hasher.New(hasher.WithAlgorithm(cfg.ClaimsConf.HashAlgorithm))),
		normalizer.NewRegistry(normalizer.GitHub{}, normalizer.Twitter{}, cfg.ClaimsConf.Alipay),
		prover.NewClient(engine, prover.WithLogger(log)),
		opts...,
	)
}

// buildProviders registers the OAuth providers that have a client id configured.
func buildProviders(a *builder) *provider.Registry {
	cfg := a.Config().OAuthConf
	log := a.Logger()

	var list []provider.ProfileProvider
	if cfg.GitHub.ClientID != "" {
		gh, err := provider.NewGitHub(cfg.GitHub)
		if err != nil {
			log.Error(err, "Failed to configure GitHub provider")
			panic(err)
		}
		list = append(list, gh)
	} else {
		log.Warn("GitHub OAuth not configured, callback disabled")
	}
	if cfg.Twitter.ClientID != "" {
		tw, err := provider.NewTwitter(cfg.Twitter)
		if err != nil {
			log.Error(err, "Failed to configure Twitter provider")
			panic(err)
		}
		list = append(list, tw)
	} else {
		log.Warn("Twitter OAuth not configured, callback disabled")
	}
	return provider.NewRegistry(list...)
}
