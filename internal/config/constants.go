package config

import "time"

// Application metadata
const (
	AppName = "agentcore"
	Version = "0.1.0"

	ConfigFileName = "agentcore"
)

// Environment / config keys, matching the external configuration surface.
const (
	KeyBackendService          = "BACKEND_SERVICE"
	KeyResolveDNSPeriodically  = "IS_RESOLVE_DNS_PERIODICALLY"
	KeyChannelCheckInterval    = "GRPC_CHANNEL_CHECK_INTERVAL"
	KeyDynamicConfigInterval   = "GET_AGENT_DYNAMIC_CONFIG_INTERVAL"
	KeyUpstreamTimeout         = "GRPC_UPSTREAM_TIMEOUT"
	KeyForceReconnectionPeriod = "FORCE_RECONNECTION_PERIOD"
	KeyServiceName             = "SERVICE_NAME"
	KeyInstanceName            = "INSTANCE_NAME"
	KeyAuthToken               = "AGENT_AUTH_TOKEN"
	KeyTLSEnabled              = "GRPC_TLS_ENABLED"
	KeyLoggingLevel            = "LOG_LEVEL"
	KeyLoggingFormat           = "LOG_FORMAT"
)

// Logging defaults
const (
	LogLevel  = "info"
	LogFormat = "console"
)

// Timing defaults, seconds unless noted otherwise.
const (
	DefaultChannelCheckInterval    = 30 * time.Second
	DefaultDynamicConfigInterval   = 20 * time.Second
	DefaultUpstreamTimeout         = 10 * time.Second
	DefaultForceReconnectionPeriod = 10

	ShutdownTimeout = 5 * time.Second
)

// Command scheduler / serial cache bounds, per spec.
const (
	SerialCacheCapacity  = 64
	CommandQueueCapacity = 64
)

// Default logical service name when unset.
const DefaultServiceName = "agentcore"
