package constant

import "time"

const (
	DefaultInstanceName    = "halo-csr-relay"
	DefaultPort            = "3000"
	DefaultNamespace       = "default"
	DefaultUpstreamTimeout = 8 * time.Second

	// TierTableConfigMapKey is the ConfigMap data key holding the tier table YAML.
	TierTableConfigMapKey = "tiers"

	// Header configuration constants.
	HeaderCallerAuth   = "x-halo-auth"
	HeaderUpstreamAuth = "x-grunt-auth"
	HeaderRequestID    = "X-Request-ID"

	// Stub mode reply.
	StubCSR  = 1450
	StubTier = "Diamond 2"
)
