package rabbitmq

import "github.com/kyp2022/ghostlink/pkg/utilities"

type RabbimqConfigJson struct {
	Enabled          bool                           `json:"enabled"`
	Host             string                         `json:"host"`
	Port             uint16                         `json:"port"`
	User             string                         `json:"user"`
	Password         string                         `json:"password"`
	MaxRetries       int                            `json:"max_retries"`
	PublishersConfig []RabbitmqPublishersConfigJson `json:"publishers"`
}

type RabbitmqConfig struct {
	Enabled          bool
	Host             string
	Port             uint16
	User             string
	Password         string
	MaxRetries       int
	PublishersConfig []RabbitmqPublishersConfig
}

func (rcj RabbimqConfigJson) ConvertToDomain() RabbitmqConfig {
	cfg := RabbitmqConfig{
		Enabled:    rcj.Enabled,
		Host:       rcj.Host,
		Port:       rcj.Port,
		User:       rcj.User,
		Password:   rcj.Password,
		MaxRetries: rcj.MaxRetries,
		PublishersConfig: utilities.ConvertJsonArrayToDomain[
			RabbitmqPublishersConfigJson,
			RabbitmqPublishersConfig,
		](rcj.PublishersConfig),
	}
	if cfg.Host == "" {
		cfg.Host = "rabbitmq"
	}
	if cfg.Port == 0 {
		cfg.Port = 5672
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 7
	}
	return cfg
}

type RabbitmqPublishersConfigJson struct {
	PublisherAlias string `json:"publisher_alias"`
	Exchange       string `json:"exchange"`
	ExchangeKind   string `json:"exchange_kind"`
	RoutingKey     string `json:"routing_key"`
}

type RabbitmqPublishersConfig struct {
	PublisherAlias PublisherAlias
	Exchange       string
	ExchangeKind   string
	RoutingKey     string
}

func (rpcj RabbitmqPublishersConfigJson) ConvertToDomain() RabbitmqPublishersConfig {
	kind := rpcj.ExchangeKind
	if kind == "" {
		kind = "topic"
	}
	return RabbitmqPublishersConfig{
		PublisherAlias: PublisherAlias(rpcj.PublisherAlias),
		Exchange:       rpcj.Exchange,
		ExchangeKind:   kind,
		RoutingKey:     rpcj.RoutingKey,
	}
}
