package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kyp2022/ghostlink/internal/app/document"
	"github.com/kyp2022/ghostlink/internal/app/hasher"
	"github.com/kyp2022/ghostlink/internal/app/normalizer"
	"github.com/kyp2022/ghostlink/internal/app/prover"
	"github.com/kyp2022/ghostlink/internal/app/provider"
	"github.com/kyp2022/ghostlink/pkg/logger"
	"github.com/kyp2022/ghostlink/pkg/rabbitmq"
	"github.com/kyp2022/ghostlink/pkg/utilities"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath          = "GHOSTLINK_CONFIG"
	EnvProverURL           = "GHOSTLINK_PROVER_URL"
	EnvGithubClientID      = "GHOSTLINK_GITHUB_CLIENT_ID"
	EnvGithubClientSecret  = "GHOSTLINK_GITHUB_CLIENT_SECRET"
	EnvTwitterClientID     = "GHOSTLINK_TWITTER_CLIENT_ID"
	EnvTwitterClientSecret = "GHOSTLINK_TWITTER_CLIENT_SECRET"
	EnvRabbitmqUser        = "RABBITMQ_USER"
	EnvRabbitmqPassword    = "RABBITMQ_PASSWORD"

	DefaultConfigPath = "config.json"
	DefaultProverURL  = "http://127.0.0.1:3000/prove"
	DefaultPort       = 8080
)

type GhostlinkConfigJson struct {
	LoggerConf   logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	RestConf     RestConfigJson             `json:"rest"`
	ProverConf   ProverConfigJson           `json:"prover"`
	DocumentConf DocumentConfigJson         `json:"document"`
	ClaimsConf   ClaimsConfigJson           `json:"claims"`
	OAuthConf    OAuthConfigJson            `json:"oauth"`
}

// ConvertToDomain also overlays the environment, so secrets never need to live in the file.
func (gcj GhostlinkConfigJson) ConvertToDomain() GhostlinkConfig {
	cfg := GhostlinkConfig{
		LoggerConf:   gcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: gcj.RabbitmqConf.ConvertToDomain(),
		RestConf:     gcj.RestConf.ConvertToDomain(),
		ProverConf:   gcj.ProverConf.ConvertToDomain(),
		DocumentConf: gcj.DocumentConf.ConvertToDomain(),
		ClaimsConf:   gcj.ClaimsConf.ConvertToDomain(),
		OAuthConf:    gcj.OAuthConf.ConvertToDomain(),
	}
	return cfg.ApplyEnv()
}

type GhostlinkConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     RestConfig
	ProverConf   prover.HTTPEngineConfig
	DocumentConf document.Policy
	ClaimsConf   ClaimsConfig
	OAuthConf    OAuthConfig
}

func (gc GhostlinkConfig) GetLoggerConfig() logger.LoggerConfig {
	return gc.LoggerConf
}

func (gc GhostlinkConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return gc.RabbitmqConf
}

func (gc GhostlinkConfig) GetRestApiPort() uint16 {
	return gc.RestConf.Port
}

// ApplyEnv overlays secrets and per-deployment values from the environment.
// Unset variables leave the file values in place.
func (gc GhostlinkConfig) ApplyEnv() GhostlinkConfig {
	gc.ProverConf.URL = GetenvDefault(EnvProverURL, gc.ProverConf.URL)
	gc.OAuthConf.GitHub.ClientID = GetenvDefault(EnvGithubClientID, gc.OAuthConf.GitHub.ClientID)
	gc.OAuthConf.GitHub.ClientSecret = GetenvDefault(EnvGithubClientSecret, gc.OAuthConf.GitHub.ClientSecret)
	gc.OAuthConf.Twitter.ClientID = GetenvDefault(EnvTwitterClientID, gc.OAuthConf.Twitter.ClientID)
	gc.OAuthConf.Twitter.ClientSecret = GetenvDefault(EnvTwitterClientSecret, gc.OAuthConf.Twitter.ClientSecret)
	gc.RabbitmqConf.User = GetenvDefault(EnvRabbitmqUser, gc.RabbitmqConf.User)
	gc.RabbitmqConf.Password = GetenvDefault(EnvRabbitmqPassword, gc.RabbitmqConf.Password)
	return gc
}

type RestConfigJson struct {
	Port           uint16   `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
	MaxUploadBytes int64    `json:"max_upload_bytes"`
}

type RestConfig struct {
	Port           uint16
	AllowedOrigins []string
	MaxUploadBytes int64
}

func (rcj RestConfigJson) ConvertToDomain() RestConfig {
	cfg := RestConfig{
		Port:           rcj.Port,
		AllowedOrigins: utilities.Map(rcj.AllowedOrigins, strings.TrimSpace),
		MaxUploadBytes: rcj.MaxUploadBytes,
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return cfg
}

type ProverConfigJson struct {
	URL                    string `json:"url"`
	ConnectTimeoutSeconds  int    `json:"connect_timeout_seconds"`
	ResponseTimeoutSeconds int    `json:"response_timeout_seconds"`
	MaxConnectAttempts     int    `json:"max_connect_attempts"`
}

func (pcj ProverConfigJson) ConvertToDomain() prover.HTTPEngineConfig {
	url := pcj.URL
	if url == "" {
		url = DefaultProverURL
	}
	return prover.HTTPEngineConfig{
		URL:                url,
		ConnectTimeout:     time.Duration(pcj.ConnectTimeoutSeconds) * time.Second,
		ResponseTimeout:    time.Duration(pcj.ResponseTimeoutSeconds) * time.Second,
		MaxConnectAttempts: pcj.MaxConnectAttempts,
	}
}

type DocumentConfigJson struct {
	MinSignatures  int    `json:"min_signatures"`
	RequiredSigner string `json:"required_signer"`
}

func (dcj DocumentConfigJson) ConvertToDomain() document.Policy {
	return document.Policy{
		MinSignatures:  dcj.MinSignatures,
		RequiredSigner: dcj.RequiredSigner,
	}
}

type ClaimsConfigJson struct {
	DefaultThreshold           string `json:"default_threshold"`
	AllowMissingIdentityNumber bool   `json:"allow_missing_identity_number"`
	HashAlgorithm              string `json:"hash_algorithm"`
}

type ClaimsConfig struct {
	Alipay        normalizer.Alipay
	HashAlgorithm hasher.Algorithm
}

// ConvertToDomain falls back to SHA3-256 on an unknown algorithm name; Validate reports it.
func (ccj ClaimsConfigJson) ConvertToDomain() ClaimsConfig {
	algo, err := hasher.ParseAlgorithm(ccj.HashAlgorithm)
	if err != nil {
		algo = hasher.Algorithm(ccj.HashAlgorithm)
	}
	threshold := ccj.DefaultThreshold
	if threshold == "" {
		threshold = normalizer.DefaultThreshold
	}
	return ClaimsConfig{
		Alipay: normalizer.Alipay{
			DefaultThreshold:           threshold,
			AllowMissingIdentityNumber: ccj.AllowMissingIdentityNumber,
		},
		HashAlgorithm: algo,
	}
}

type OAuthConfigJson struct {
	GitHub  OAuthProviderConfigJson `json:"github"`
	Twitter OAuthProviderConfigJson `json:"twitter"`
}

type OAuthConfig struct {
	GitHub  provider.Config
	Twitter provider.Config
}

func (ocj OAuthConfigJson) ConvertToDomain() OAuthConfig {
	return OAuthConfig{
		GitHub:  ocj.GitHub.ConvertToDomain(),
		Twitter: ocj.Twitter.ConvertToDomain(),
	}
}

type OAuthProviderConfigJson struct {
	ClientID       string `json:"client_id"`
	ClientSecret   string `json:"client_secret"`
	AuthURL        string `json:"auth_url"`
	TokenURL       string `json:"token_url"`
	APIBaseURL     string `json:"api_base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (opcj OAuthProviderConfigJson) ConvertToDomain() provider.Config {
	return provider.Config{
		ClientID:     opcj.ClientID,
		ClientSecret: opcj.ClientSecret,
		AuthURL:      opcj.AuthURL,
		TokenURL:     opcj.TokenURL,
		APIBaseURL:   opcj.APIBaseURL,
		Timeout:      time.Duration(opcj.TimeoutSeconds) * time.Second,
	}
}

// Validate reports settings that would only fail later, at request time.
func (gc GhostlinkConfig) Validate() error {
	if _, err := hasher.ParseAlgorithm(string(gc.ClaimsConf.HashAlgorithm)); err != nil {
		return err
	}
	if !normalizer.IsDecimal(gc.ClaimsConf.Alipay.DefaultThreshold) {
		return fmt.Errorf("default_threshold %q is not a decimal", gc.ClaimsConf.Alipay.DefaultThreshold)
	}
	if gc.ProverConf.URL == "" {
		return fmt.Errorf("prover url is required")
	}
	return nil
}

// GetenvDefault returns the environment variable value if set, or def otherwise.
func GetenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// LoadDotenv reads .env files into the process environment. Missing files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Path returns the config file location, honouring GHOSTLINK_CONFIG.
func Path() string {
	return GetenvDefault(EnvConfigPath, DefaultConfigPath)
}
