package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/resilience"
	"github.com/kbukum/armkit/security"
	"github.com/kbukum/armkit/validation"
)

// Authentication modes.
const (
	AuthModeDefault     = "default"
	AuthModeSecret      = "secret"
	AuthModeCertificate = "certificate"
	AuthModeStatic      = "static"
)

// Cloud names accepted in ClientConfig.Cloud.
const (
	CloudPublic = "public"
	CloudChina  = "china"
	CloudUSGov  = "usgov"
)

var cloudEndpoints = map[string]struct{ Management, Authority string }{
	CloudPublic: {"https://management.azure.com", "https://login.microsoftonline.com"},
	CloudChina:  {"https://management.chinacloudapi.cn", "https://login.chinacloudapi.cn"},
	CloudUSGov:  {"https://management.usgovcloudapi.net", "https://login.microsoftonline.us"},
}

// ClientConfig is everything needed to build a management-plane client.
//
// Projects embed it in their own config:
//
//	type Config struct {
//	    config.ClientConfig `yaml:",inline" mapstructure:",squash"`
//	    DefaultQueue string `yaml:"default_queue" mapstructure:"default_queue"`
//	}
type ClientConfig struct {
	// Name tags logs and is prefixed to the User-Agent as the application id.
	Name           string        `yaml:"name" mapstructure:"name"`
	Cloud          string        `yaml:"cloud" mapstructure:"cloud" validate:"oneof=public china usgov"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required,url"`
	Scopes         []string      `yaml:"scopes" mapstructure:"scopes" validate:"min=1,dive,required"`
	SubscriptionID string        `yaml:"subscription_id" mapstructure:"subscription_id" validate:"omitempty,uuid"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	Auth           AuthConfig                `yaml:"auth" mapstructure:"auth"`
	Retry          resilience.RetryConfig    `yaml:"retry" mapstructure:"retry"`
	RateLimit      RateLimitConfig           `yaml:"rate_limit" mapstructure:"rate_limit"`
	CircuitBreaker CircuitBreakerConfig      `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Bulkhead       resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
	TLS            security.TLSConfig        `yaml:"tls" mapstructure:"tls"`
	Storage        StorageConfig             `yaml:"storage" mapstructure:"storage"`
	Telemetry      TelemetryConfig           `yaml:"telemetry" mapstructure:"telemetry"`
	Logging        logger.Config             `yaml:"logging" mapstructure:"logging"`
}

// AuthConfig selects and parameterises the token credential.
type AuthConfig struct {
	Mode                string `yaml:"mode" mapstructure:"mode" validate:"oneof=default secret certificate static"`
	Authority           string `yaml:"authority" mapstructure:"authority" validate:"omitempty,url"`
	TenantID            string `yaml:"tenant_id" mapstructure:"tenant_id"`
	ClientID            string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret        string `yaml:"client_secret" mapstructure:"client_secret"`
	CertificatePath     string `yaml:"certificate_path" mapstructure:"certificate_path"`
	CertificatePassword string `yaml:"certificate_password" mapstructure:"certificate_password"`
	Token               string `yaml:"token" mapstructure:"token"`
}

// RateLimitConfig enables the client side token bucket.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Rate    float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	Burst   int     `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// CircuitBreakerConfig enables per-host circuit breaking.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// StorageConfig points the queue client at a storage account.
type StorageConfig struct {
	// QueueEndpoint is the account queue endpoint, for example
	// https://myaccount.queue.core.windows.net.
	QueueEndpoint string   `yaml:"queue_endpoint" mapstructure:"queue_endpoint" validate:"omitempty,url"`
	Scopes        []string `yaml:"scopes" mapstructure:"scopes"`
}

// TelemetryConfig controls the OpenTelemetry exporters.
type TelemetryConfig struct {
	Tracing      bool    `yaml:"tracing" mapstructure:"tracing"`
	Metrics      bool    `yaml:"metrics" mapstructure:"metrics"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	Insecure     bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate   float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// GetClientConfig returns the embedded ClientConfig. When ClientConfig is
// embedded the method is promoted to the outer struct.
func (c *ClientConfig) GetClientConfig() *ClientConfig {
	return c
}

// AuthorityHost returns the configured authority or the one of the selected cloud.
func (c *ClientConfig) AuthorityHost() string {
	if c.Auth.Authority != "" {
		return strings.TrimRight(c.Auth.Authority, "/")
	}
	return cloudEndpoints[c.cloudOrDefault()].Authority
}

func (c *ClientConfig) cloudOrDefault() string {
	if c.Cloud == "" {
		return CloudPublic
	}
	return c.Cloud
}

// ApplyDefaults fills unset fields. Embedding structs that override it call
// c.ClientConfig.ApplyDefaults() first.
func (c *ClientConfig) ApplyDefaults() {
	c.Cloud = c.cloudOrDefault()
	if c.Endpoint == "" {
		if ep, ok := cloudEndpoints[c.Cloud]; ok {
			c.Endpoint = ep.Management
		}
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	if len(c.Scopes) == 0 && c.Endpoint != "" {
		c.Scopes = []string{c.Endpoint + "/"}
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}

	if c.Auth.Mode == "" {
		switch {
		case c.Auth.Token != "":
			c.Auth.Mode = AuthModeStatic
		case c.Auth.CertificatePath != "":
			c.Auth.Mode = AuthModeCertificate
		case c.Auth.ClientSecret != "":
			c.Auth.Mode = AuthModeSecret
		default:
			c.Auth.Mode = AuthModeDefault
		}
	}

	retry := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = retry.MaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = retry.InitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = retry.MaxBackoff
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = retry.BackoffFactor
	}
	if c.Retry.Jitter == 0 {
		c.Retry.Jitter = retry.Jitter
	}

	rl := resilience.DefaultRateLimiterConfig("")
	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = rl.Rate
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = rl.Burst
	}

	cb := resilience.DefaultCircuitBreakerConfig("")
	if c.CircuitBreaker.MaxFailures == 0 {
		c.CircuitBreaker.MaxFailures = cb.MaxFailures
	}
	if c.CircuitBreaker.Timeout == 0 {
		c.CircuitBreaker.Timeout = cb.Timeout
	}

	bh := resilience.DefaultBulkheadConfig("")
	if c.Bulkhead.MaxConcurrent == 0 {
		c.Bulkhead.MaxConcurrent = bh.MaxConcurrent
	}
	if c.Bulkhead.MaxWait == 0 {
		c.Bulkhead.MaxWait = bh.MaxWait
	}

	if len(c.Storage.Scopes) == 0 {
		c.Storage.Scopes = []string{"https://storage.azure.com/.default"}
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}

	if c.Logging.ClientName == "" && c.Name != "" {
		c.Logging.ClientName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the struct tags and the cross-field rules of each auth mode.
func (c *ClientConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	switch c.Auth.Mode {
	case AuthModeSecret:
		v.Required("auth.tenant_id", c.Auth.TenantID).
			Required("auth.client_id", c.Auth.ClientID).
			Required("auth.client_secret", c.Auth.ClientSecret)
	case AuthModeCertificate:
		v.Required("auth.tenant_id", c.Auth.TenantID).
			Required("auth.client_id", c.Auth.ClientID).
			Required("auth.certificate_path", c.Auth.CertificatePath)
	case AuthModeStatic:
		v.Required("auth.token", c.Auth.Token)
	}
	if err := v.Err(); err != nil {
		return err
	}

	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("config.tls: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
