package appbuilder

import (
	"fmt"

	"github.com/kyp2022/ghostlink/pkg/logger"
	"github.com/kyp2022/ghostlink/pkg/rabbitmq"
	"github.com/kyp2022/ghostlink/pkg/rest"
	"github.com/kyp2022/ghostlink/pkg/utilities"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type AppConfig interface {
	GetLoggerConfig() logger.LoggerConfig
	GetRabbitmqConfig() rabbitmq.RabbitmqConfig
	GetRestApiPort() uint16
}

type AppBuilder[T utilities.JsonConfigObj[U], U AppConfig] struct {
	logger      *logger.Logger
	config      U
	conn        *amqp.Connection
	middlewares []rest.Middleware
	routes      []rest.Route
	engine      *gin.Engine
}

func New[T utilities.JsonConfigObj[U], U AppConfig]() *AppBuilder[T, U] {
	return &AppBuilder[T, U]{}
}

func (a *AppBuilder[T, U]) Logger() *logger.Logger { return a.logger }
func (a *AppBuilder[T, U]) Config() U              { return a.config }

// Connection is nil when RabbitMQ is disabled.
func (a *AppBuilder[T, U]) Connection() *amqp.Connection { return a.conn }

func (a *AppBuilder[T, U]) InitLogger(loggerArgs logger.GlobalLoggerConfig) *AppBuilder[T, U] {
	logger.InitDefaultLogger(loggerArgs)
	a.logger = logger.Default()
	a.logger.Info("Logger initialized")

	return a
}

func (a *AppBuilder[T, U]) LoadConfig(filePath string) *AppBuilder[T, U] {
	a.logger.Infof("Preparing to load config from %s ...", filePath)
	jsonConfig, err := utilities.ReadConfig[T, U](filePath)
	if err != nil {
		a.logger.Error(err, "Failed to load config")
		panic(err)
	}

	a.config = jsonConfig
	if level := a.config.GetLoggerConfig().LogLevel; level != zerolog.NoLevel {
		a.logger.WithLevel(level)
	}
	a.logger.Info("Config successfully loaded.")
	return a
}

// WithOption runs fn against the builder, typically to construct services from the loaded config.
func (a *AppBuilder[T, U]) WithOption(fn func(a *AppBuilder[T, U])) *AppBuilder[T, U] {
	fn(a)
	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqConnection() *AppBuilder[T, U] {
	rabbitmqConfig := a.config.GetRabbitmqConfig()
	if !rabbitmqConfig.Enabled {
		a.logger.Info("Rabbitmq disabled, skipping connection")
		return a
	}

	a.logger.Info("Preparing to connect to Rabbitmq server...")
	conn, err := rabbitmq.ConnectToRabbitmq(rabbitmqConfig)
	if err != nil {
		panic(err)
	}

	a.conn = conn
	a.logger.Info("Connection with Rabbitmq server established")

	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqRegistries() *AppBuilder[T, U] {
	if a.conn == nil {
		return a
	}

	a.logger.Info("Initializing Rabbitmq registries from config")
	rabbitmqConf := a.config.GetRabbitmqConfig()

	if err := rabbitmq.InitializePublisherRegistry(a.conn, rabbitmqConf.PublishersConfig); err != nil {
		a.logger.Error(err, "Failed to initialize Rabbitmq publishers")
		panic(err)
	}
	a.logger.Info("Successfully initialized Rabbitmq registries from config")

	return a
}

func (a *AppBuilder[T, U]) AddGinMiddleware(middlewares ...rest.Middleware) *AppBuilder[T, U] {
	a.middlewares = append(a.middlewares, middlewares...)
	return a
}

func (a *AppBuilder[T, U]) AddGinRoutes(routes ...rest.Route) *AppBuilder[T, U] {
	a.logger.Info("Adding Gin REST API routes to Application...")
	a.routes = append(a.routes, routes...)
	return a
}

func (a *AppBuilder[T, U]) InitGinRouter() *AppBuilder[T, U] {
	a.logger.Info("Initializing Gin Router...")
	router := gin.New()
	router.Use(gin.Recovery())

	for _, m := range a.middlewares {
		if m.Group == rest.GlobalGroup {
			router.Use(m.Handler)
		}
	}

	a.logger.Info("Registering REST API routes...")
	rest.Register(router, a.withGroupMiddleware(), func(r rest.Route) {
		a.logger.Warnf("Unrecognized HTTP method: %s", r.Method)
	})

	a.engine = router
	a.logger.Info("Successfully registered REST API routes.")
	return a
}

// withGroupMiddleware prepends group-scoped middleware to the handlers of matching routes.
func (a *AppBuilder[T, U]) withGroupMiddleware() []rest.Route {
	routes := make([]rest.Route, 0, len(a.routes))
	for _, r := range a.routes {
		handlers := []gin.HandlerFunc{}
		for _, m := range a.middlewares {
			if m.Group == r.Group {
				handlers = append(handlers, m.Handler)
			}
		}
		if len(handlers) > 0 {
			final := r.HandlerFunc
			chain := append(handlers, final)
			r.HandlerFunc = func(c *gin.Context) {
				for _, h := range chain {
					if c.IsAborted() {
						return
					}
					h(c)
				}
			}
		}
		routes = append(routes, r)
	}
	return routes
}

func (a *AppBuilder[T, U]) Engine() *gin.Engine { return a.engine }

func (a *AppBuilder[T, U]) Build() ApplicationInterface {
	return &Application{
		Logger: a.logger,
		Addr:   fmt.Sprintf("0.0.0.0:%d", a.config.GetRestApiPort()),
		Conn:   a.conn,
		Engine: a.engine,
	}
}
