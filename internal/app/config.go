package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete service configuration, loadable from environment
// variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (CHECKOUT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Collaborators CollaboratorConfig
	Demo          DemoConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// CollaboratorConfig points at the cart, catalog, shipping and payment
// services. Addresses are host:port pairs.
type CollaboratorConfig struct {
	CartAddr     string        `usage:"Cart service address" flag:"cart-addr"`
	CatalogAddr  string        `usage:"Product catalog service address" flag:"catalog-addr"`
	ShippingAddr string        `usage:"Shipping service address" flag:"shipping-addr"`
	PaymentAddr  string        `usage:"Payment service address" flag:"payment-addr"`
	Timeout      time.Duration `default:"5s" usage:"Per-call collaborator timeout"`
}

// DemoConfig controls the embedded collaborator stack. When enabled, the
// service runs in-process fakes for all four collaborators and, if no
// database URL is configured, keeps orders in memory.
type DemoConfig struct {
	Enabled     bool   `default:"false" usage:"Run embedded fake collaborators" flag:"demo"`
	CatalogFile string `usage:"Product catalog JSON file (.json or .json.gz); empty uses the built-in catalog" flag:"catalog-file"`
	ListenAddr  string `default:"127.0.0.1:0" usage:"Embedded collaborator listen address" flag:"demo-addr"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and platform defaults, then validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Demo.Enabled {
		return nil
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set CHECKOUT_DATABASE_URL or DATABASE_URL")
	}
	missing := ""
	switch {
	case c.Collaborators.CartAddr == "":
		missing = "cart"
	case c.Collaborators.CatalogAddr == "":
		missing = "catalog"
	case c.Collaborators.ShippingAddr == "":
		missing = "shipping"
	case c.Collaborators.PaymentAddr == "":
		missing = "payment"
	}
	if missing != "" {
		return errors.Errorf("%s service address is required outside demo mode", missing)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// onto the CHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
