package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTelemetry(t *testing.T, env map[string]string) (Telemetry, error) {
	t.Helper()
	env[OpenAIAPIKeyEnv] = "sk-1"
	cfg, err := Load(MapEnviron(env))
	require.NoError(t, err)
	return cfg.Telemetry()
}

func TestTelemetryDisabled(t *testing.T) {
	tel, err := loadTelemetry(t, map[string]string{OTLPHeadersEnv: "a=b"})
	require.NoError(t, err)
	assert.False(t, tel.Enabled())
	assert.Nil(t, tel.Headers)
}

func TestTelemetrySingleSource(t *testing.T) {
	tel, err := loadTelemetry(t, map[string]string{OTLPEndpointEnv: "http://collector:4318"})
	require.NoError(t, err)
	assert.True(t, tel.Enabled())
	assert.Equal(t, "http://collector:4318", tel.Endpoint)
	assert.Equal(t, OTLPEndpointEnv, tel.Source)

	tel, err = loadTelemetry(t, map[string]string{OpenLITEndpointEnv: "http://openlit:4318", OTLPHeadersEnv: "x-api-key=k1"})
	require.NoError(t, err)
	assert.Equal(t, "http://openlit:4318", tel.Endpoint)
	assert.Equal(t, OpenLITEndpointEnv, tel.Source)
	assert.Equal(t, map[string]string{"x-api-key": "k1"}, tel.Headers)
}

func TestTelemetryAgreeingSources(t *testing.T) {
	tel, err := loadTelemetry(t, map[string]string{
		OTLPEndpointEnv:    "http://collector:4318/",
		OpenLITEndpointEnv: "http://collector:4318",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://collector:4318/", tel.Endpoint)
	assert.Equal(t, OTLPEndpointEnv, tel.Source)
}

func TestTelemetryConflictingSources(t *testing.T) {
	tel, err := loadTelemetry(t, map[string]string{
		OTLPEndpointEnv:    "http://collector:4318",
		OpenLITEndpointEnv: "http://openlit:4318",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflictingTelemetryEndpoints))
	assert.False(t, tel.Enabled())
}

func TestParseHeaders(t *testing.T) {
	headers, err := ParseHeaders("Authorization=Basic%20dXNlcjpwYXNz, x-tenant = acme ,,token=a+b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Authorization": "Basic dXNlcjpwYXNz",
		"x-tenant":      "acme",
		"token":         "a+b",
	}, headers)

	headers, err = ParseHeaders("")
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = ParseHeaders("novalue")
	assert.Error(t, err)
	_, err = ParseHeaders("=value")
	assert.Error(t, err)
	_, err = ParseHeaders("k=%zz")
	assert.Error(t, err)
}
