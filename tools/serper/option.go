package serper

import (
	"net/http"

	"github.com/bububa/trip-planner/tools"
)

type Option func(*Config)

func WithEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.endpoint = endpoint
	}
}

// WithCountry sets the gl parameter, e.g. "us"
func WithCountry(country string) Option {
	return func(c *Config) {
		c.country = country
	}
}

// WithLanguage sets the hl parameter, e.g. "en"
func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.language = lang
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

func WithCacheSize(n int) Option {
	return func(c *Config) {
		c.cacheSize = n
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
