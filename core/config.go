package core

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for one coordination process. It supports
// three-layer priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithAgentID(3),
//	    core.WithLineWidth(0.5),
//	    core.WithRedisURL("redis://localhost:6379"),
//	)
type Config struct {
	// AgentID is this agent's integer id within the fleet. Ignored by the
	// mission controller.
	AgentID int `yaml:"agent_id"`

	Coverage  CoverageConfig  `yaml:"coverage"`
	Store     StoreConfig     `yaml:"store"`
	Engine    EngineConfig    `yaml:"engine"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CoverageConfig parametrizes the coverage strategies and the per-agent
// controller. Distances and tolerances are in degrees, matching the
// replicated coordinate space.
type CoverageConfig struct {
	// Strategy names the default coverage strategy when an assignment does
	// not request one explicitly.
	Strategy string `yaml:"strategy"`

	// LineWidth is the spacing between sweep lines (Snake) and the default
	// grid spacing (MinTime).
	LineWidth float64 `yaml:"line_width"`

	// ReachedAccuracy is the per-axis margin used to decide a target has
	// been reached.
	ReachedAccuracy float64 `yaml:"reached_accuracy"`

	// MinAltitude is the base altitude in meters; each covering agent flies
	// at MinAltitude + AltitudeSpacing*rank to stay vertically separated.
	MinAltitude     float64 `yaml:"min_altitude"`
	AltitudeSpacing float64 `yaml:"altitude_spacing"`

	// MinTimeDelta overrides LineWidth as the MinTime grid spacing when >0.
	MinTimeDelta float64 `yaml:"min_time_delta"`

	// RandomTargetBudget bounds the Random strategy's sequence; 0 means
	// unbounded (the strategy never reports a final target).
	RandomTargetBudget int `yaml:"random_target_budget"`

	// SubdivideRandom makes the Random strategy sample from the agent's
	// strip instead of the whole area. Off by default, matching the
	// original behavior.
	SubdivideRandom bool `yaml:"subdivide_random"`

	// TargetTimeoutTicks skips a target that has not been reached after
	// this many ticks; 0 disables the escape.
	TargetTimeoutTicks int `yaml:"target_timeout_ticks"`
}

// StoreConfig selects the knowledge-store backend.
type StoreConfig struct {
	Provider  string `yaml:"provider"` // "inmemory" or "redis"
	RedisURL  string `yaml:"redis_url"`
	Namespace string `yaml:"namespace"`
}

// EngineConfig parametrizes the tick evaluation loop.
type EngineConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// LoggingConfig controls the production logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR
	Format string `yaml:"format"` // "text" or "json"
}

// TelemetryConfig controls the optional OpenTelemetry provider.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Option is a functional configuration option.
type Option func(*Config)

// DefaultConfig returns the baseline configuration before env and options
// are applied.
func DefaultConfig() *Config {
	return &Config{
		Coverage: CoverageConfig{
			Strategy:        "snake",
			LineWidth:       0.5,
			ReachedAccuracy: 0.0000050,
			MinAltitude:     10.0,
			AltitudeSpacing: 0.5,
		},
		Store: StoreConfig{
			Provider:  "inmemory",
			Namespace: "skysweep",
		},
		Engine: EngineConfig{
			TickInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "skysweep",
		},
	}
}

// NewConfig builds a configuration from defaults, environment variables and
// functional options, then validates it.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironment()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file over the defaults and the
// environment; functional options still win.
func LoadConfigFile(path string, opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironment()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfiguration, path, err)
	}

	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironment() {
	if v := os.Getenv("SKYSWEEP_AGENT_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.AgentID = id
		}
	}
	if v := os.Getenv("SKYSWEEP_STRATEGY"); v != "" {
		c.Coverage.Strategy = v
	}
	if v := os.Getenv("SKYSWEEP_LINE_WIDTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Coverage.LineWidth = f
		}
	}
	if v := os.Getenv("SKYSWEEP_STORE_PROVIDER"); v != "" {
		c.Store.Provider = v
	}
	if v := os.Getenv("SKYSWEEP_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	} else if v := os.Getenv("REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("SKYSWEEP_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}
	if v := os.Getenv("SKYSWEEP_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Engine.TickInterval = d
		}
	}
	if v := os.Getenv("SKYSWEEP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SKYSWEEP_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	} else if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		c.Logging.Format = "json"
	}
	if v := os.Getenv("SKYSWEEP_TELEMETRY_ENABLED"); v == "true" {
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv("SKYSWEEP_TELEMETRY_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
}

// Validate rejects configurations the coordination core cannot run with.
func (c *Config) Validate() error {
	if c.AgentID < 0 {
		return fmt.Errorf("%w: agent id must be >= 0", ErrInvalidConfiguration)
	}
	if c.Coverage.LineWidth <= 0 || math.IsNaN(c.Coverage.LineWidth) {
		return fmt.Errorf("%w: line width must be > 0", ErrInvalidConfiguration)
	}
	if c.Coverage.ReachedAccuracy <= 0 || math.IsNaN(c.Coverage.ReachedAccuracy) {
		return fmt.Errorf("%w: reached accuracy must be > 0", ErrInvalidConfiguration)
	}
	if c.Coverage.AltitudeSpacing < 0 {
		return fmt.Errorf("%w: altitude spacing must be >= 0", ErrInvalidConfiguration)
	}
	if c.Store.Provider != "inmemory" && c.Store.Provider != "redis" {
		return fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfiguration, c.Store.Provider)
	}
	if c.Store.Provider == "redis" && c.Store.RedisURL == "" {
		return fmt.Errorf("%w: redis provider requires a URL", ErrInvalidConfiguration)
	}
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be > 0", ErrInvalidConfiguration)
	}
	return nil
}

// WithAgentID sets this agent's fleet id.
func WithAgentID(id int) Option {
	return func(c *Config) { c.AgentID = id }
}

// WithStrategy sets the default coverage strategy name.
func WithStrategy(name string) Option {
	return func(c *Config) { c.Coverage.Strategy = name }
}

// WithLineWidth sets the sweep-line spacing in degrees.
func WithLineWidth(w float64) Option {
	return func(c *Config) { c.Coverage.LineWidth = w }
}

// WithReachedAccuracy sets the target-reached tolerance in degrees.
func WithReachedAccuracy(tol float64) Option {
	return func(c *Config) { c.Coverage.ReachedAccuracy = tol }
}

// WithAltitudes sets the vertical separation parameters.
func WithAltitudes(min, spacing float64) Option {
	return func(c *Config) {
		c.Coverage.MinAltitude = min
		c.Coverage.AltitudeSpacing = spacing
	}
}

// WithTargetTimeout enables the unreachable-target escape after n ticks.
func WithTargetTimeout(n int) Option {
	return func(c *Config) { c.Coverage.TargetTimeoutTicks = n }
}

// WithRedisURL selects the Redis store backend.
func WithRedisURL(url string) Option {
	return func(c *Config) {
		c.Store.Provider = "redis"
		c.Store.RedisURL = url
	}
}

// WithTickInterval sets the evaluation interval.
func WithTickInterval(d time.Duration) Option {
	return func(c *Config) { c.Engine.TickInterval = d }
}
