package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"k8s.io/utils/env"

	"github.com/Halfdees/Halo-csr-wrapper/internal/constant"
)

// Config holds application configuration. It is built once at startup and
// handed to the components that need it.
type Config struct {
	// Name of the relay instance, used in logs and self-signed certificates.
	Name string

	// Server configuration
	Port      string
	DebugMode bool
	TLS       TLSConfig

	// Forwarding configuration
	ForwardMode     ForwardMode
	UpstreamURL     string
	UpstreamSecret  string
	UpstreamTimeout time.Duration

	// CallerSecret is the value expected in the x-halo-auth header. Empty disables the check.
	CallerSecret string

	// Tier table configuration
	TierPolicy    TierPolicy
	TierTableFile string
	TierConfigMap string
	Namespace     string

	timeoutErr error
}

// Load loads configuration from environment variables and binds the
// command-line flags on top of them. Call Validate after flag.Parse.
func Load() *Config {
	return load(flag.CommandLine)
}

func load(fs *flag.FlagSet) *Config {
	debug, _ := env.GetBool("DEBUG_MODE", false)

	c := &Config{
		Name:           getEnvOrDefault("INSTANCE_NAME", constant.DefaultInstanceName),
		Port:           getEnvOrDefault("PORT", constant.DefaultPort),
		DebugMode:      debug,
		TLS:            loadTLSConfig(),
		ForwardMode:    ForwardSingleHop,
		UpstreamURL:    env.GetString("GRUNT_URL", ""),
		UpstreamSecret: env.GetString("GRUNT_SHARED_SECRET", ""),
		CallerSecret:   env.GetString("HALO_AUTH_SECRET", ""),
		TierPolicy:     TierDerive,
		TierTableFile:  env.GetString("TIER_TABLE_FILE", ""),
		TierConfigMap:  env.GetString("TIER_CONFIGMAP", ""),
		Namespace:      getEnvOrDefault("NAMESPACE", constant.DefaultNamespace),
	}

	if v := env.GetString("FORWARD_MODE", ""); v != "" {
		if err := c.ForwardMode.Set(v); err != nil {
			c.ForwardMode = ForwardMode(v)
		}
	}
	if v := env.GetString("TIER_POLICY", ""); v != "" {
		if err := c.TierPolicy.Set(v); err != nil {
			c.TierPolicy = TierPolicy(v)
		}
	}

	c.UpstreamTimeout = constant.DefaultUpstreamTimeout
	if v := env.GetString("UPSTREAM_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			c.timeoutErr = fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		} else {
			c.UpstreamTimeout = d
		}
	}

	c.bindFlags(fs)

	return c
}

// bindFlags binds selected config options to the given flagset.
// Secrets are env-only.
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Name, "name", c.Name, "Name of the relay instance")
	fs.StringVar(&c.Port, "port", c.Port, "Port to listen on")
	fs.BoolVar(&c.DebugMode, "debug", c.DebugMode, "Enable debug mode (verbose logs, permissive CORS)")
	fs.Var(&c.ForwardMode, "forward-mode", "How /csr is answered: stub, single-hop or two-hop")
	fs.StringVar(&c.UpstreamURL, "grunt-url", c.UpstreamURL, "Base URL of the Grunt upstream service")
	fs.DurationVar(&c.UpstreamTimeout, "upstream-timeout", c.UpstreamTimeout, "Timeout for each call to Grunt")
	fs.Var(&c.TierPolicy, "tier-policy", "Missing upstream tier handling: derive or upstream")
	fs.StringVar(&c.TierTableFile, "tier-table-file", c.TierTableFile, "YAML file overriding the built-in tier table")
	fs.StringVar(&c.TierConfigMap, "tier-configmap", c.TierConfigMap, "ConfigMap holding the tier table under the \"tiers\" key")
	fs.StringVar(&c.Namespace, "namespace", c.Namespace, "Namespace of the tier table ConfigMap")
	c.TLS.bindFlags(fs)
}

// Validate checks the parsed configuration. Missing upstream settings are
// not an error here: forwarding requests are refused at request time instead.
func (c *Config) Validate() error {
	if c.timeoutErr != nil {
		return c.timeoutErr
	}

	if c.ForwardMode == "" {
		c.ForwardMode = ForwardSingleHop
	}
	if c.TierPolicy == "" {
		c.TierPolicy = TierDerive
	}

	mode := c.ForwardMode
	if err := mode.Set(string(c.ForwardMode)); err != nil {
		return err
	}
	c.ForwardMode = mode

	policy := c.TierPolicy
	if err := policy.Set(string(c.TierPolicy)); err != nil {
		return err
	}
	c.TierPolicy = policy

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}

	if c.TierTableFile != "" && c.TierConfigMap != "" {
		return errors.New("--tier-table-file and --tier-configmap are mutually exclusive")
	}

	c.UpstreamURL = strings.TrimRight(strings.TrimSpace(c.UpstreamURL), "/")

	return c.TLS.validate()
}

// UpstreamConfigured reports whether both the Grunt URL and secret are set.
func (c *Config) UpstreamConfigured() bool {
	return c.UpstreamURL != "" && c.UpstreamSecret != ""
}

// AuthEnabled reports whether inbound callers must present x-halo-auth.
func (c *Config) AuthEnabled() bool {
	return c.CallerSecret != ""
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return ":" + c.Port
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
