// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
)

// EnvPrefix prefixes every environment override, e.g. SHIFT_PLANNER_BASE_URL.
const EnvPrefix = "SHIFT"

type contextKey string

const configKey contextKey = "config"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "seleniumshift",
		Short: "seleniumshift checks generated Selenium tests and compiles them into browser plans.",
		Long: `seleniumshift validates generated Java/Selenium test classes, runs them through the
Java compiler, and translates their browser interactions into execution plans for a
snapshot-and-ref browser automation host.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				_ = observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "seleniumshift"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}
			if err := observability.InitializeLogger(cfg.Logger()); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			observability.GetLogger().Debug("Starting seleniumshift", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, config.Interface(cfg)))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	provider := NewStoreProvider()
	rootCmd.AddCommand(
		newCheckCmd(),
		newCompileCmd(),
		newCoverageCmd(),
		newExtractCmd(),
		newPlanCmd(provider),
		newBatchCmd(provider),
		newIngestCmd(provider),
		newReportCmd(),
		newServeCmd(provider),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command and logs a failure. ErrCheckFailed is reported
// by the command's own output, not logged again.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrCheckFailed) && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	observability.Sync()
	return err
}

// initializeConfig reads the config file and binds environment variables.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// getConfigFromContext returns the configuration stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (config.Interface, error) {
	if cfg, ok := ctx.Value(configKey).(config.Interface); ok && cfg != nil {
		return cfg, nil
	}
	return nil, errors.New("configuration not loaded")
}
