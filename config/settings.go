package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides of settings keys, TRIP_PLANNER_SEARCH_MAX_RESULTS
const EnvPrefix = "TRIP_PLANNER"

// Settings keys
const (
	KeyModel             = "model"
	KeyTemperature       = "temperature"
	KeyMaxTokens         = "max_tokens"
	KeyMaxToolIterations = "max_tool_iterations"
	KeyOpenAIBaseURL     = "openai.base_url"
	KeyOutputDir         = "output_dir"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeySearchEndpoint    = "search.endpoint"
	KeySearchMaxResults  = "search.max_results"
	KeySearchCountry     = "search.country"
	KeySearchLanguage    = "search.language"
	KeySearchTimeout     = "search.timeout"
	KeySearchCacheSize   = "search.cache_size"
	KeyScrapeEnabled     = "scrape.enabled"
	KeyScrapeTimeout     = "scrape.timeout"
	KeyScrapeMaxTokens   = "scrape.max_tokens"
	KeyResearchMaxTokens = "research.max_tokens"
	KeyS3Bucket          = "artifact.s3_bucket"
	KeyS3Prefix          = "artifact.s3_prefix"
	KeyServiceName       = "telemetry.service_name"
)

// Settings holds the tunables that are not credentials
type Settings struct {
	Model             string
	Temperature       float32
	MaxTokens         int
	MaxToolIterations int
	OpenAIBaseURL     string
	OutputDir         string
	LogLevel          string
	LogFormat         string
	Search            SearchSettings
	Scrape            ScrapeSettings
	// ResearchMaxTokens caps the web findings injected into a prompt
	ResearchMaxTokens int
	S3Bucket          string
	S3Prefix          string
	ServiceName       string
}

type SearchSettings struct {
	Endpoint   string
	MaxResults int
	Country    string
	Language   string
	Timeout    time.Duration
	CacheSize  int
}

type ScrapeSettings struct {
	Enabled   bool
	Timeout   time.Duration
	MaxTokens int
}

// NewViper returns a viper instance with defaults and environment bindings.
// configFile is optional.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyModel, "gpt-4o-mini")
	v.SetDefault(KeyTemperature, 0.7)
	v.SetDefault(KeyMaxTokens, 2000)
	v.SetDefault(KeyMaxToolIterations, 5)
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeySearchEndpoint, "https://google.serper.dev/search")
	v.SetDefault(KeySearchMaxResults, 5)
	v.SetDefault(KeySearchTimeout, 15*time.Second)
	v.SetDefault(KeySearchCacheSize, 128)
	v.SetDefault(KeyScrapeEnabled, true)
	v.SetDefault(KeyScrapeTimeout, 30*time.Second)
	v.SetDefault(KeyScrapeMaxTokens, 1500)
	v.SetDefault(KeyResearchMaxTokens, 3000)
	v.SetDefault(KeyS3Prefix, "trip-plans/")
	v.SetDefault(KeyServiceName, "trip-planner")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyOpenAIBaseURL, "OPENAI_API_BASE_URL", EnvPrefix+"_OPENAI_BASE_URL"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// LoadSettings reads Settings from v and validates them
func LoadSettings(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Model:             strings.TrimSpace(v.GetString(KeyModel)),
		Temperature:       float32(v.GetFloat64(KeyTemperature)),
		MaxTokens:         v.GetInt(KeyMaxTokens),
		MaxToolIterations: v.GetInt(KeyMaxToolIterations),
		OpenAIBaseURL:     strings.TrimSpace(v.GetString(KeyOpenAIBaseURL)),
		OutputDir:         v.GetString(KeyOutputDir),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFormat:         v.GetString(KeyLogFormat),
		Search: SearchSettings{
			Endpoint:   v.GetString(KeySearchEndpoint),
			MaxResults: v.GetInt(KeySearchMaxResults),
			Country:    v.GetString(KeySearchCountry),
			Language:   v.GetString(KeySearchLanguage),
			Timeout:    v.GetDuration(KeySearchTimeout),
			CacheSize:  v.GetInt(KeySearchCacheSize),
		},
		Scrape: ScrapeSettings{
			Enabled:   v.GetBool(KeyScrapeEnabled),
			Timeout:   v.GetDuration(KeyScrapeTimeout),
			MaxTokens: v.GetInt(KeyScrapeMaxTokens),
		},
		ResearchMaxTokens: v.GetInt(KeyResearchMaxTokens),
		S3Bucket:          strings.TrimSpace(v.GetString(KeyS3Bucket)),
		S3Prefix:          v.GetString(KeyS3Prefix),
		ServiceName:       v.GetString(KeyServiceName),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks Settings invariants
func (s Settings) Validate() error {
	var errs []error
	if s.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %.2f out of range [0, 2]", s.Temperature))
	}
	if s.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", s.MaxTokens))
	}
	if s.MaxToolIterations <= 0 {
		errs = append(errs, fmt.Errorf("max_tool_iterations must be positive, got %d", s.MaxToolIterations))
	}
	if s.Search.MaxResults <= 0 || s.Search.MaxResults > 100 {
		errs = append(errs, fmt.Errorf("search.max_results %d out of range [1, 100]", s.Search.MaxResults))
	}
	if s.Search.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("search.cache_size must be positive, got %d", s.Search.CacheSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}
