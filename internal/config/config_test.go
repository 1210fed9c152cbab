// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "seleniumshift", cfg.Logger().ServiceName)
	assert.Equal(t, "http://localhost:8080", cfg.Planner().BaseURL)
	assert.Equal(t, 2, cfg.Planner().WaitSeconds)
	assert.Equal(t, "source", cfg.Planner().ActionOrder)
	assert.Equal(t, "javac", cfg.Compiler().Binary)
	assert.Equal(t, 60*time.Second, cfg.Compiler().Timeout)
	assert.Equal(t, 0.6, cfg.Coverage().Threshold)
	assert.Equal(t, "file", cfg.Store().Type)
	assert.Equal(t, 4, cfg.Pipeline().Concurrency)
	assert.Equal(t, "127.0.0.1:8765", cfg.MCP().ListenAddr)
	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("should reject bad core values", func(t *testing.T) {
		cfg := NewDefaultConfig()

		badOrder := *cfg
		badOrder.PlannerCfg.ActionOrder = "shuffled"
		assert.ErrorContains(t, badOrder.Validate(), "planner.action_order")

		badWait := *cfg
		badWait.PlannerCfg.WaitSeconds = 0
		assert.ErrorContains(t, badWait.Validate(), "planner.wait_seconds must be a positive integer")

		badThreshold := *cfg
		badThreshold.CoverageCfg.Threshold = 1.5
		assert.ErrorContains(t, badThreshold.Validate(), "coverage.threshold must be between 0.0 and 1.0")

		badConcurrency := *cfg
		badConcurrency.PipelineCfg.Concurrency = -1
		assert.ErrorContains(t, badConcurrency.Validate(), "pipeline.concurrency must be a positive integer")
	})

	t.Run("should validate the compiler section", func(t *testing.T) {
		valid := CompilerConfig{Binary: "javac", Timeout: time.Second, RateLimit: 1, Burst: 1}
		assert.NoError(t, valid.Validate())

		unthrottled := valid
		unthrottled.RateLimit = 0
		unthrottled.Burst = 0
		assert.NoError(t, unthrottled.Validate())

		noBinary := valid
		noBinary.Binary = " "
		assert.ErrorContains(t, noBinary.Validate(), "binary is required")

		noTimeout := valid
		noTimeout.Timeout = 0
		assert.ErrorContains(t, noTimeout.Validate(), "timeout must be a positive duration")

		noBurst := valid
		noBurst.Burst = 0
		assert.ErrorContains(t, noBurst.Validate(), "burst must be positive")
	})

	t.Run("should validate the store section", func(t *testing.T) {
		cfg := NewDefaultConfig()

		pg := *cfg
		pg.StoreCfg.Type = "postgres"
		assert.ErrorContains(t, pg.Validate(), "database.url is required")
		pg.DatabaseCfg.URL = "postgres://u:p@localhost/shift"
		assert.NoError(t, pg.Validate())

		unknown := *cfg
		unknown.StoreCfg.Type = "s3"
		assert.ErrorContains(t, unknown.Validate(), `unknown type "s3"`)

		noPath := *cfg
		noPath.StoreCfg.Type = "sqlite"
		noPath.StoreCfg.Path = ""
		assert.ErrorContains(t, noPath.Validate(), "path is required for the sqlite store")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("should load values from YAML over defaults", func(t *testing.T) {
		yamlBytes := []byte(`
planner:
  base_url: "https://staging.shop.test"
  action_order: grouped
compiler:
  timeout: 5s
store:
  type: sqlite
  path: /tmp/shift
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "https://staging.shop.test", cfg.Planner().BaseURL)
		assert.Equal(t, "grouped", cfg.Planner().ActionOrder)
		assert.Equal(t, 5*time.Second, cfg.Compiler().Timeout)
		assert.Equal(t, "sqlite", cfg.Store().Type)
		assert.Equal(t, "/tmp/shift", cfg.Store().Path)
		assert.Equal(t, "info", cfg.Logger().Level)
	})

	t.Run("should fail validation", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("pipeline.concurrency", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "pipeline.concurrency must be a positive integer")
	})

	t.Run("should expand the home directory in store.path", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		home, err := homedir.Dir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".seleniumshift"), cfg.Store().Path)
	})

	t.Run("should let the environment override the database url", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
database:
  url: "postgres://configfile/db"
`)))
		t.Setenv("SHIFT_DATABASE_URL", "postgres://envvar/db")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "postgres://envvar/db", cfg.Database().URL)
	})
}

func TestSetters(t *testing.T) {
	var cfg Interface = NewDefaultConfig()
	cfg.SetPlannerBaseURL("https://x.test")
	cfg.SetCompilerClasspath("lib/*")
	cfg.SetStoreType("postgres")
	cfg.SetPipelineConcurrency(9)
	cfg.SetMCPListenAddr(":9000")

	assert.Equal(t, "https://x.test", cfg.Planner().BaseURL)
	assert.Equal(t, "lib/*", cfg.Compiler().Classpath)
	assert.Equal(t, "postgres", cfg.Store().Type)
	assert.Equal(t, 9, cfg.Pipeline().Concurrency)
	assert.Equal(t, ":9000", cfg.MCP().ListenAddr)
}
