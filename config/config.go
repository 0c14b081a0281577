// Package config turns the process environment into an immutable run configuration
// and derives the operating mode from it.
package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// OpenAIAPIKeyEnv is the required LLM provider credential
	OpenAIAPIKeyEnv = "OPENAI_API_KEY"
	// SerperAPIKeyEnv enables web search when present
	SerperAPIKeyEnv = "SERPER_API_KEY"
	// OTLPEndpointEnv is the OpenTelemetry export target
	OTLPEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
	// OTLPHeadersEnv carries telemetry auth headers
	OTLPHeadersEnv = "OTEL_EXPORTER_OTLP_HEADERS"
	// OpenLITEndpointEnv is an alternate telemetry endpoint variable
	OpenLITEndpointEnv = "OPENLIT_OTLP_ENDPOINT"
)

// ErrMissingCredential is returned when the LLM credential is absent or empty
var ErrMissingCredential = errors.New("missing credential")

// MissingCredentialError names the variable that was not set
type MissingCredentialError struct {
	Variable string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: %s environment variable not set", ErrMissingCredential, e.Variable)
}

func (e *MissingCredentialError) Unwrap() error {
	return ErrMissingCredential
}

// RunConfiguration is built once at startup and never mutated
type RunConfiguration struct {
	llmCredential     string
	searchCredential  string
	telemetryEndpoint string
	telemetryHeaders  string
	openlitEndpoint   string
}

// Load reads the credentials and telemetry settings from env.
// It fails with ErrMissingCredential when OPENAI_API_KEY is absent or empty.
// Credentials are kept as given, any non-empty value counts as present.
func Load(env Environ) (*RunConfiguration, error) {
	if env == nil {
		env = OSEnviron()
	}
	raw := func(key string) string {
		v, _ := env(key)
		return v
	}
	trimmed := func(key string) string {
		return strings.TrimSpace(raw(key))
	}
	cfg := &RunConfiguration{
		llmCredential:     raw(OpenAIAPIKeyEnv),
		searchCredential:  raw(SerperAPIKeyEnv),
		telemetryEndpoint: trimmed(OTLPEndpointEnv),
		telemetryHeaders:  trimmed(OTLPHeadersEnv),
		openlitEndpoint:   trimmed(OpenLITEndpointEnv),
	}
	if cfg.llmCredential == "" {
		return nil, &MissingCredentialError{Variable: OpenAIAPIKeyEnv}
	}
	return cfg, nil
}

// LLMCredential returns the LLM provider API key without surrounding whitespace
func (c RunConfiguration) LLMCredential() string {
	return strings.TrimSpace(c.llmCredential)
}

// SearchCredential returns the web search API key without surrounding
// whitespace, empty when absent
func (c RunConfiguration) SearchCredential() string {
	return strings.TrimSpace(c.searchCredential)
}

// TelemetryEndpoint returns OTEL_EXPORTER_OTLP_ENDPOINT
func (c RunConfiguration) TelemetryEndpoint() string {
	return c.telemetryEndpoint
}

// TelemetryHeaders returns the raw OTEL_EXPORTER_OTLP_HEADERS value
func (c RunConfiguration) TelemetryHeaders() string {
	return c.telemetryHeaders
}

// OpenLITEndpoint returns OPENLIT_OTLP_ENDPOINT
func (c RunConfiguration) OpenLITEndpoint() string {
	return c.openlitEndpoint
}
