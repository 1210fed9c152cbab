// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/seleniumshift/internal/extract"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Planner() PlannerConfig
	Compiler() CompilerConfig
	Coverage() CoverageConfig
	Store() StoreConfig
	Pipeline() PipelineConfig
	MCP() MCPConfig
	Report() ReportConfig

	SetPlannerBaseURL(string)
	SetCompilerClasspath(string)
	SetStoreType(string)
	SetPipelineConcurrency(int)
	SetMCPListenAddr(string)
}

// Config holds the entire application configuration. Fields are exported so viper
// can unmarshal into them; callers go through the Interface getters.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	PlannerCfg  PlannerConfig  `mapstructure:"planner" yaml:"planner"`
	CompilerCfg CompilerConfig `mapstructure:"compiler" yaml:"compiler"`
	CoverageCfg CoverageConfig `mapstructure:"coverage" yaml:"coverage"`
	StoreCfg    StoreConfig    `mapstructure:"store" yaml:"store"`
	PipelineCfg PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	MCPCfg      MCPConfig      `mapstructure:"mcp" yaml:"mcp"`
	ReportCfg   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Planner() PlannerConfig   { return c.PlannerCfg }
func (c *Config) Compiler() CompilerConfig { return c.CompilerCfg }
func (c *Config) Coverage() CoverageConfig { return c.CoverageCfg }
func (c *Config) Store() StoreConfig       { return c.StoreCfg }
func (c *Config) Pipeline() PipelineConfig { return c.PipelineCfg }
func (c *Config) MCP() MCPConfig           { return c.MCPCfg }
func (c *Config) Report() ReportConfig     { return c.ReportCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetPlannerBaseURL(u string)     { c.PlannerCfg.BaseURL = u }
func (c *Config) SetCompilerClasspath(cp string) { c.CompilerCfg.Classpath = cp }
func (c *Config) SetStoreType(t string)          { c.StoreCfg.Type = t }
func (c *Config) SetPipelineConcurrency(n int)   { c.PipelineCfg.Concurrency = n }
func (c *Config) SetMCPListenAddr(addr string)   { c.MCPCfg.ListenAddr = addr }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the database connection details for the postgres store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// PlannerConfig controls plan compilation.
type PlannerConfig struct {
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	WaitSeconds int    `mapstructure:"wait_seconds" yaml:"wait_seconds"`
	ActionOrder string `mapstructure:"action_order" yaml:"action_order"`
}

// CompilerConfig configures the external Java compiler.
type CompilerConfig struct {
	Binary    string        `mapstructure:"binary" yaml:"binary"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Classpath string        `mapstructure:"classpath" yaml:"classpath"`
	// RateLimit is compiler spawns per second; Burst is the bucket size.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// CoverageConfig holds the feature-coverage threshold.
type CoverageConfig struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

// StoreConfig selects where generated artifacts are kept.
type StoreConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // "file", "sqlite" or "postgres"
	Path string `mapstructure:"path" yaml:"path"`
}

// PipelineConfig tunes batch processing.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// MCPConfig configures the tool-invocation host.
type MCPConfig struct {
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// ReportConfig points at optional report validation rules.
type ReportConfig struct {
	RulesFile string `mapstructure:"rules_file" yaml:"rules_file"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "seleniumshift")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Planner --
	v.SetDefault("planner.base_url", "http://localhost:8080")
	v.SetDefault("planner.wait_seconds", 2)
	v.SetDefault("planner.action_order", string(extract.OrderSource))

	// -- Compiler --
	v.SetDefault("compiler.binary", "javac")
	v.SetDefault("compiler.timeout", "60s")
	v.SetDefault("compiler.classpath", "")
	v.SetDefault("compiler.rate_limit", 2.0)
	v.SetDefault("compiler.burst", 2)

	// -- Coverage --
	v.SetDefault("coverage.threshold", 0.6)

	// -- Store --
	v.SetDefault("store.type", "file")
	v.SetDefault("store.path", "~/.seleniumshift")

	// -- Pipeline --
	v.SetDefault("pipeline.concurrency", 4)

	// -- MCP --
	v.SetDefault("mcp.listen_addr", "127.0.0.1:8765")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	v.BindEnv("database.url", "SHIFT_DATABASE_URL", "DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.StoreCfg.Path != "" {
		expanded, err := homedir.Expand(cfg.StoreCfg.Path)
		if err != nil {
			return nil, fmt.Errorf("error expanding store.path: %w", err)
		}
		cfg.StoreCfg.Path = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if _, err := extract.ParseOrder(c.PlannerCfg.ActionOrder); err != nil {
		return fmt.Errorf("planner.action_order: %w", err)
	}
	if c.PlannerCfg.WaitSeconds <= 0 {
		return fmt.Errorf("planner.wait_seconds must be a positive integer")
	}
	if err := c.CompilerCfg.Validate(); err != nil {
		return fmt.Errorf("compiler configuration invalid: %w", err)
	}
	if c.CoverageCfg.Threshold < 0.0 || c.CoverageCfg.Threshold > 1.0 {
		return fmt.Errorf("coverage.threshold must be between 0.0 and 1.0")
	}
	if err := c.StoreCfg.validate(c.DatabaseCfg); err != nil {
		return fmt.Errorf("store configuration invalid: %w", err)
	}
	if c.PipelineCfg.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be a positive integer")
	}
	return nil
}

// Validate checks the compiler settings.
func (cc *CompilerConfig) Validate() error {
	if strings.TrimSpace(cc.Binary) == "" {
		return fmt.Errorf("binary is required")
	}
	if cc.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if cc.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if cc.RateLimit > 0 && cc.Burst <= 0 {
		return fmt.Errorf("burst must be positive when rate_limit is set")
	}
	return nil
}

func (s *StoreConfig) validate(db DatabaseConfig) error {
	switch s.Type {
	case "file", "sqlite":
		if s.Path == "" {
			return fmt.Errorf("path is required for the %s store", s.Type)
		}
	case "postgres":
		if db.URL == "" {
			return fmt.Errorf("database.url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown type %q (want file, sqlite or postgres)", s.Type)
	}
	return nil
}
