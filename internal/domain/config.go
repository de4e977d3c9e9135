package domain

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names that make up the configuration contract.
const (
	EnvURL            = "JIRA_URL"
	EnvUsername       = "JIRA_USERNAME"
	EnvPassword       = "JIRA_PASSWORD"
	EnvProjectFilter  = "JIRA_PROJECT_FILTER"
	EnvResponseFormat = "JIRA_RESPONSE_FORMAT"
	EnvTimeoutMS      = "JIRA_TIMEOUT_MS"
	EnvRetryCount     = "JIRA_RETRY_COUNT"
	EnvRetryDelayMS   = "JIRA_RETRY_DELAY_MS"
	EnvTLSVerify      = "JIRA_TLS_VERIFY"
	EnvCacheTTL       = "JIRA_CACHE_TTL_SECONDS"
)

// Default values applied before the settings file and environment are read.
const (
	DefaultTimeoutMS       = 30000
	DefaultRetryCount      = 3
	DefaultRetryDelayMS    = 1000
	DefaultCacheTTLSeconds = 300
)

// ResponseFormat selects how tool results are serialized.
type ResponseFormat int

const (
	// FormatJSON renders results as indented JSON
	FormatJSON ResponseFormat = iota
	// FormatNotation renders results in the compact indentation-based notation
	FormatNotation
)

// String returns the string representation of ResponseFormat.
func (f ResponseFormat) String() string {
	switch f {
	case FormatNotation:
		return "notation"
	default:
		return "json"
	}
}

// ParseResponseFormat converts a format token to a ResponseFormat.
// Exactly one alternate token is recognized, case-insensitively; every
// other value selects the JSON default.
func ParseResponseFormat(s string) ResponseFormat {
	if strings.EqualFold(strings.TrimSpace(s), "notation") {
		return FormatNotation
	}
	return FormatJSON
}

// Config holds the immutable settings for a server process.
// It is constructed once at startup by LoadConfig and passed explicitly to
// every component that needs it; there is no process-wide singleton.
type Config struct {
	BaseURL        string
	Username       string
	Password       string
	ProjectFilter  []string // upper-cased project keys; empty means no restriction
	ResponseFormat ResponseFormat
	TimeoutMS      int
	RetryCount     int
	RetryDelayMS   int
	TLSVerify      bool
	CacheTTLSec    int
}

// ConfigError reports a fatal configuration problem, such as a missing
// required variable or a malformed value.
type ConfigError struct {
	Message string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return "configuration error: " + e.Message
}

// fileConfig mirrors Config for the optional YAML settings file.
// Pointer fields distinguish "absent" from zero values so the file only
// overrides what it actually declares.
type fileConfig struct {
	URL            *string `yaml:"url"`
	Username       *string `yaml:"username"`
	Password       *string `yaml:"password"`
	ProjectFilter  *string `yaml:"project_filter"`
	ResponseFormat *string `yaml:"response_format"`
	TimeoutMS      *int    `yaml:"timeout_ms"`
	RetryCount     *int    `yaml:"retry_count"`
	RetryDelayMS   *int    `yaml:"retry_delay_ms"`
	TLSVerify      *bool   `yaml:"tls_verify"`
	CacheTTLSec    *int    `yaml:"cache_ttl_seconds"`
}

// LoadConfig builds a Config from defaults, an optional YAML settings file,
// and the environment, in that order of precedence (environment wins).
// The path may be empty, in which case only defaults and environment apply.
// Returns a *ConfigError describing every problem found.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		ResponseFormat: FormatJSON,
		TimeoutMS:      DefaultTimeoutMS,
		RetryCount:     DefaultRetryCount,
		RetryDelayMS:   DefaultRetryDelayMS,
		TLSVerify:      true,
		CacheTTLSec:    DefaultCacheTTLSeconds,
	}

	// Apply the optional settings file
	if path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Environment variables override file values
	var errors []string
	config.applyEnvironment(&errors)

	// Normalize derived values
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	// Validate the merged result
	config.validate(&errors)

	if len(errors) > 0 {
		return nil, &ConfigError{Message: strings.Join(errors, "; ")}
	}

	return config, nil
}

// applyFile merges values from a YAML settings file into the config.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigError{Message: fmt.Sprintf("settings file not found: %s", path)}
		}
		return &ConfigError{Message: fmt.Sprintf("failed to read settings file: %v", err)}
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return &ConfigError{Message: fmt.Sprintf("invalid YAML syntax in settings file: %v", err)}
	}

	if fc.URL != nil {
		c.BaseURL = *fc.URL
	}
	if fc.Username != nil {
		c.Username = *fc.Username
	}
	if fc.Password != nil {
		c.Password = *fc.Password
	}
	if fc.ProjectFilter != nil {
		c.ProjectFilter = parseProjectFilter(*fc.ProjectFilter)
	}
	if fc.ResponseFormat != nil {
		c.ResponseFormat = ParseResponseFormat(*fc.ResponseFormat)
	}
	if fc.TimeoutMS != nil {
		c.TimeoutMS = *fc.TimeoutMS
	}
	if fc.RetryCount != nil {
		c.RetryCount = *fc.RetryCount
	}
	if fc.RetryDelayMS != nil {
		c.RetryDelayMS = *fc.RetryDelayMS
	}
	if fc.TLSVerify != nil {
		c.TLSVerify = *fc.TLSVerify
	}
	if fc.CacheTTLSec != nil {
		c.CacheTTLSec = *fc.CacheTTLSec
	}

	return nil
}

// applyEnvironment merges values from the process environment into the
// config. Parse failures are appended to errors with the variable name.
func (c *Config) applyEnvironment(errors *[]string) {
	if v := os.Getenv(EnvURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvProjectFilter); v != "" {
		c.ProjectFilter = parseProjectFilter(v)
	}
	if v := os.Getenv(EnvResponseFormat); v != "" {
		c.ResponseFormat = ParseResponseFormat(v)
	}

	c.applyIntEnv(EnvTimeoutMS, &c.TimeoutMS, errors)
	c.applyIntEnv(EnvRetryCount, &c.RetryCount, errors)
	c.applyIntEnv(EnvRetryDelayMS, &c.RetryDelayMS, errors)
	c.applyIntEnv(EnvCacheTTL, &c.CacheTTLSec, errors)

	if v := os.Getenv(EnvTLSVerify); v != "" {
		c.TLSVerify = parseBoolFlag(v)
	}
}

// applyIntEnv parses a numeric environment variable into target.
func (c *Config) applyIntEnv(name string, target *int, errors *[]string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("%s must be an integer, got %q", name, v))
		return
	}
	*target = n
}

// validate checks the merged configuration for completeness and correctness,
// appending each failure to errors.
func (c *Config) validate(errors *[]string) {
	// Required settings
	if c.BaseURL == "" {
		*errors = append(*errors, EnvURL+" is required")
	} else {
		parsedURL, err := url.Parse(c.BaseURL)
		if err != nil {
			*errors = append(*errors, fmt.Sprintf("%s is invalid: %v", EnvURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			*errors = append(*errors, EnvURL+" must use http or https scheme")
		} else if parsedURL.Host == "" {
			*errors = append(*errors, EnvURL+" must include a host")
		}
	}
	if c.Username == "" {
		*errors = append(*errors, EnvUsername+" is required")
	}
	if c.Password == "" {
		*errors = append(*errors, EnvPassword+" is required")
	}

	// Numeric settings must be sane
	if c.TimeoutMS <= 0 {
		*errors = append(*errors, fmt.Sprintf("%s must be positive, got %d", EnvTimeoutMS, c.TimeoutMS))
	}
	if c.RetryCount < 0 {
		*errors = append(*errors, fmt.Sprintf("%s must not be negative, got %d", EnvRetryCount, c.RetryCount))
	}
	if c.RetryDelayMS <= 0 {
		*errors = append(*errors, fmt.Sprintf("%s must be positive, got %d", EnvRetryDelayMS, c.RetryDelayMS))
	}
	if c.CacheTTLSec <= 0 {
		*errors = append(*errors, fmt.Sprintf("%s must be positive, got %d", EnvCacheTTL, c.CacheTTLSec))
	}
}

// parseProjectFilter splits a comma-separated list of project keys,
// trimming whitespace, dropping empty entries, and upper-casing each key.
func parseProjectFilter(s string) []string {
	var keys []string
	for _, part := range strings.Split(s, ",") {
		key := strings.ToUpper(strings.TrimSpace(part))
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// parseBoolFlag interprets a boolean environment value. The strings "false"
// and "0" disable, case-insensitively; everything else enables.
func parseBoolFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "false", "0":
		return false
	default:
		return true
	}
}

// IsProjectAllowed reports whether the given project key passes the
// configured project filter. An empty filter allows every project.
func (c *Config) IsProjectAllowed(key string) bool {
	if len(c.ProjectFilter) == 0 {
		return true
	}
	upper := strings.ToUpper(strings.TrimSpace(key))
	for _, allowed := range c.ProjectFilter {
		if allowed == upper {
			return true
		}
	}
	return false
}

// Timeout returns the per-attempt request deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// RetryDelay returns the backoff base delay.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// CacheTTL returns the default cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}
