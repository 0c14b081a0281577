package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConflictingTelemetryEndpoints is returned when both telemetry endpoint
// variables are set to different values. Neither one is preferred.
var ErrConflictingTelemetryEndpoints = errors.New("conflicting telemetry endpoints")

// Telemetry is the resolved telemetry export target
type Telemetry struct {
	// Endpoint is empty when telemetry is disabled
	Endpoint string
	// Source is the variable the endpoint came from
	Source string
	// Headers are sent with every export request
	Headers map[string]string
}

// Enabled reports whether an export endpoint is configured
func (t Telemetry) Enabled() bool {
	return t.Endpoint != ""
}

// Telemetry resolves the export endpoint from OTEL_EXPORTER_OTLP_ENDPOINT and
// OPENLIT_OTLP_ENDPOINT. Either may be used alone; when both are set they must agree.
func (c RunConfiguration) Telemetry() (Telemetry, error) {
	var ret Telemetry
	switch {
	case c.telemetryEndpoint != "" && c.openlitEndpoint != "":
		if strings.TrimRight(c.telemetryEndpoint, "/") != strings.TrimRight(c.openlitEndpoint, "/") {
			return ret, fmt.Errorf("%w: %s=%q, %s=%q", ErrConflictingTelemetryEndpoints, OTLPEndpointEnv, c.telemetryEndpoint, OpenLITEndpointEnv, c.openlitEndpoint)
		}
		ret.Endpoint, ret.Source = c.telemetryEndpoint, OTLPEndpointEnv
	case c.telemetryEndpoint != "":
		ret.Endpoint, ret.Source = c.telemetryEndpoint, OTLPEndpointEnv
	case c.openlitEndpoint != "":
		ret.Endpoint, ret.Source = c.openlitEndpoint, OpenLITEndpointEnv
	default:
		return ret, nil
	}
	headers, err := ParseHeaders(c.telemetryHeaders)
	if err != nil {
		return Telemetry{}, err
	}
	ret.Headers = headers
	return ret, nil
}

// ParseHeaders parses the OTEL_EXPORTER_OTLP_HEADERS format: comma separated
// key=value pairs with URL encoded values.
func ParseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid %s entry %q", OTLPHeadersEnv, pair)
		}
		value, err := url.PathUnescape(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value for %q: %w", OTLPHeadersEnv, k, err)
		}
		headers[k] = value
	}
	return headers, nil
}
