package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey stores an EndpointConfig in a huma operation's metadata.
const MetadataKey = "rateLimit"

// EndpointConfig is per-endpoint rate limit configuration, attached to huma
// operations via their Metadata field.
type EndpointConfig struct {
	// Limits replace the default limits for this endpoint.
	Limits []LimitConfig

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// EndpointConfigFromOperation extracts the EndpointConfig from operation
// metadata, or nil when the endpoint has none.
func EndpointConfigFromOperation(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
