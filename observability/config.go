package observability

import (
	"fmt"
	"strings"

	"github.com/gaborage/sqldao/config"
)

const (
	// EndpointStdout writes telemetry to the provider's output writer instead of a collector.
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"
)

// validate checks the settings NewProvider depends on. It runs after
// config.Validate, so it only covers what struct tags cannot express.
func validate(cfg *config.Config) error {
	if cfg == nil {
		return ErrNilConfig
	}

	obs := &cfg.Observability
	if !obs.Enabled {
		return nil
	}

	if cfg.App.Name == "" {
		return ErrMissingServiceName
	}

	if obs.Trace.Sample.Rate < 0.0 || obs.Trace.Sample.Rate > 1.0 {
		return fmt.Errorf("sample rate %.2f: %w", obs.Trace.Sample.Rate, ErrInvalidSampleRate)
	}

	if obs.Trace.Protocol != ProtocolHTTP && obs.Trace.Protocol != ProtocolGRPC {
		return fmt.Errorf("trace protocol '%s': %w", obs.Trace.Protocol, ErrInvalidProtocol)
	}

	if obs.Trace.Enabled {
		if err := validateEndpointFormat(obs.Trace.Endpoint, obs.Trace.Protocol); err != nil {
			return fmt.Errorf("trace endpoint '%s': %w", obs.Trace.Endpoint, err)
		}
	}

	if obs.Metrics.Enabled {
		if err := validateEndpointFormat(obs.Metrics.Endpoint, obs.Trace.Protocol); err != nil {
			return fmt.Errorf("metrics endpoint '%s': %w", obs.Metrics.Endpoint, err)
		}
	}

	return nil
}

func validateEndpointFormat(endpoint, protocol string) error {
	if endpoint == EndpointStdout {
		return nil
	}
	if endpoint == "" {
		return ErrInvalidEndpointFormat
	}

	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")

	if protocol == ProtocolGRPC && hasScheme {
		return ErrInvalidEndpointFormat
	}

	if protocol == ProtocolHTTP && !hasScheme {
		return ErrInvalidEndpointFormat
	}

	return nil
}
