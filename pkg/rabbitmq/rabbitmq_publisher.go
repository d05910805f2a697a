package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	"github.com/kyp2022/ghostlink/pkg/logger"
	"github.com/kyp2022/ghostlink/pkg/utilities"

	amqp "github.com/rabbitmq/amqp091-go"
)

type PublisherAlias string

const (
	AlertPublisherAlias PublisherAlias = "AlertPublisher"
	LogPublisherAlias   PublisherAlias = "LogPublisher"
)

var (
	PublisherRegistry map[PublisherAlias]IRabbitmqPublisher
	publisherMu       sync.RWMutex
	oncePublisher     sync.Once
)

// GetPublisher returns nil when alias was not configured.
func GetPublisher(alias PublisherAlias) IRabbitmqPublisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return PublisherRegistry[alias]
}

func InitializePublisherRegistry(conn *amqp.Connection, publisherConfig []RabbitmqPublishersConfig) error {
	var initErr error
	oncePublisher.Do(func() {
		registry := make(map[PublisherAlias]IRabbitmqPublisher)

		for _, publisher := range publisherConfig {
			channel, err := conn.Channel()
			if err != nil {
				initErr = fmt.Errorf("open channel for publisher %s: %w", publisher.PublisherAlias, err)
				return
			}

			err = channel.ExchangeDeclare(
				publisher.Exchange,
				publisher.ExchangeKind,
				true,  // durable
				false, // auto-deleted
				false, // internal
				false, // no-wait
				nil,
			)
			if err != nil {
				initErr = fmt.Errorf("declare exchange %s: %w", publisher.Exchange, err)
				return
			}

			registry[publisher.PublisherAlias] = NewPublisher(
				channel,
				publisher.Exchange,
				publisher.RoutingKey,
			)
			logger.Default().Infof("Registered publisher %s on exchange %s", publisher.PublisherAlias, publisher.Exchange)
		}

		publisherMu.Lock()
		PublisherRegistry = registry
		publisherMu.Unlock()
	})
	return initErr
}

// PublishChannel is the part of *amqp.Channel a publisher needs.
type PublishChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitmqPublisher struct {
	Channel    PublishChannel
	Exchange   string
	RoutingKey string
}

func NewPublisher(ch PublishChannel, exchange, routingKey string) *RabbitmqPublisher {
	return &RabbitmqPublisher{
		Channel:    ch,
		Exchange:   exchange,
		RoutingKey: routingKey,
	}
}

type IRabbitmqPublisher interface {
	Publish(body utilities.Serializable) error
}

func (rp *RabbitmqPublisher) Publish(body utilities.Serializable) error {
	json, err := body.Serialize()
	if err != nil {
		return err
	}

	return rp.Channel.Publish(
		rp.Exchange,
		rp.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         json,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		},
	)
}
