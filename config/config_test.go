package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingCredential(t *testing.T) {
	cases := map[string]map[string]string{
		"empty env":      {},
		"empty value":    {OpenAIAPIKeyEnv: ""},
		"only search":    {SerperAPIKeyEnv: "sp-1"},
		"only telemetry": {OTLPEndpointEnv: "http://localhost:4318"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(MapEnviron(env))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, ErrMissingCredential))
			var missing *MissingCredentialError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, OpenAIAPIKeyEnv, missing.Variable)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(MapEnviron(map[string]string{
		OpenAIAPIKeyEnv:    " sk-1 ",
		SerperAPIKeyEnv:    "sp-1",
		OTLPEndpointEnv:    "http://collector:4318",
		OTLPHeadersEnv:     "Authorization=Bearer%20abc",
		OpenLITEndpointEnv: "http://openlit:4318",
	}))
	require.NoError(t, err)
	assert.Equal(t, "sk-1", cfg.LLMCredential())
	assert.Equal(t, "sp-1", cfg.SearchCredential())
	assert.Equal(t, "http://collector:4318", cfg.TelemetryEndpoint())
	assert.Equal(t, "Authorization=Bearer%20abc", cfg.TelemetryHeaders())
	assert.Equal(t, "http://openlit:4318", cfg.OpenLITEndpoint())
}

func TestSelectMode(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want OperatingMode
	}{
		{"llm only", map[string]string{OpenAIAPIKeyEnv: "sk-1"}, LLMOnly},
		{"enhanced", map[string]string{OpenAIAPIKeyEnv: "sk-1", SerperAPIKeyEnv: "sp-1"}, Enhanced},
		{"empty search key", map[string]string{OpenAIAPIKeyEnv: "sk-1", SerperAPIKeyEnv: ""}, LLMOnly},
		{"whitespace search key", map[string]string{OpenAIAPIKeyEnv: "sk-1", SerperAPIKeyEnv: "   "}, Enhanced},
		{"invalid but present search key", map[string]string{OpenAIAPIKeyEnv: "sk-1", SerperAPIKeyEnv: "not-a-real-key"}, Enhanced},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := Load(MapEnviron(c.env))
			require.NoError(t, err)
			first := SelectMode(*cfg)
			assert.Equal(t, c.want, first)
			assert.Equal(t, first, SelectMode(*cfg), "mode selection must be idempotent")
		})
	}
}

func TestLoadWhitespaceCredential(t *testing.T) {
	cfg, err := Load(MapEnviron(map[string]string{OpenAIAPIKeyEnv: "  "}))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.LLMCredential())
	assert.Equal(t, LLMOnly, SelectMode(*cfg))
}

func TestSelectModeZeroValue(t *testing.T) {
	assert.Equal(t, LLMOnly, SelectMode(RunConfiguration{}))
}

func TestOperatingModeString(t *testing.T) {
	assert.Equal(t, "enhanced", Enhanced.String())
	assert.Equal(t, "llm-only", LLMOnly.String())
}
