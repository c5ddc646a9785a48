package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agentcore/internal/apperrors"
)

// Config represents the resident agent's runtime configuration. Values are
// resolved environment-first, with an optional YAML file supplying overrides
// and hard defaults filling in anything left unset.
type Config struct {
	BackendService string `mapstructure:"BACKEND_SERVICE"`
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	InstanceName   string `mapstructure:"INSTANCE_NAME"`

	ResolveDNSPeriodically bool `mapstructure:"IS_RESOLVE_DNS_PERIODICALLY"`

	ChannelCheckInterval    time.Duration `mapstructure:"GRPC_CHANNEL_CHECK_INTERVAL"`
	DynamicConfigInterval   time.Duration `mapstructure:"GET_AGENT_DYNAMIC_CONFIG_INTERVAL"`
	UpstreamTimeout         time.Duration `mapstructure:"GRPC_UPSTREAM_TIMEOUT"`
	ForceReconnectionPeriod int           `mapstructure:"FORCE_RECONNECTION_PERIOD"`

	AuthToken  string `mapstructure:"AGENT_AUTH_TOKEN"`
	TLSEnabled bool   `mapstructure:"GRPC_TLS_ENABLED"`

	Logging struct {
		Level  string `mapstructure:"LOG_LEVEL"`
		Format string `mapstructure:"LOG_FORMAT"`
	} `mapstructure:",squash"`

	Version string
}

// DefaultConfig returns a Config populated with hard defaults. Load()
// layers environment and file values on top of this.
func DefaultConfig() *Config {
	cfg := &Config{
		ServiceName:             DefaultServiceName,
		ResolveDNSPeriodically:  true,
		ChannelCheckInterval:    DefaultChannelCheckInterval,
		DynamicConfigInterval:   DefaultDynamicConfigInterval,
		UpstreamTimeout:         DefaultUpstreamTimeout,
		ForceReconnectionPeriod: DefaultForceReconnectionPeriod,
		Version:                 Version,
	}

	cfg.Logging.Level = LogLevel
	cfg.Logging.Format = LogFormat

	return cfg
}

// Load resolves Config from the environment, an optional config file, and
// hard defaults, in that order of precedence (env wins). The instance name
// is deliberately left for the identity service to fill in at boot — it is
// not read from the environment unless the operator pins it explicitly.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/agentcore")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		KeyBackendService, KeyResolveDNSPeriodically, KeyChannelCheckInterval,
		KeyDynamicConfigInterval, KeyUpstreamTimeout, KeyForceReconnectionPeriod,
		KeyServiceName, KeyInstanceName, KeyAuthToken, KeyTLSEnabled,
		KeyLoggingLevel, KeyLoggingFormat,
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetDefault(KeyServiceName, cfg.ServiceName)
	v.SetDefault(KeyResolveDNSPeriodically, cfg.ResolveDNSPeriodically)
	v.SetDefault(KeyChannelCheckInterval, cfg.ChannelCheckInterval)
	v.SetDefault(KeyDynamicConfigInterval, cfg.DynamicConfigInterval)
	v.SetDefault(KeyUpstreamTimeout, cfg.UpstreamTimeout)
	v.SetDefault(KeyForceReconnectionPeriod, cfg.ForceReconnectionPeriod)
	v.SetDefault(KeyLoggingLevel, cfg.Logging.Level)
	v.SetDefault(KeyLoggingFormat, cfg.Logging.Format)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Version = Version

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormat
	}

	return cfg, nil
}

// Validate checks invariants that the Channel Manager and Dynamic
// Configuration Service depend on before boot proceeds. A missing
// BACKEND_SERVICE is not itself fatal at the config layer — per spec the
// Channel Manager disables itself and logs rather than aborting the
// process — callers that need strict validation call this explicitly.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendService) == "" {
		return apperrors.ErrMissingBackendService
	}
	return nil
}

// HasBackendService reports whether a collector endpoint was configured.
func (c *Config) HasBackendService() bool {
	return strings.TrimSpace(c.BackendService) != ""
}
