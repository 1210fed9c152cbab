// File: cmd/compile.go
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
)

func newCompileCmd() *cobra.Command {
	var classpath string

	compileCmd := &cobra.Command{
		Use:   "compile <file.java>...",
		Short: "Compile test classes with the configured Java compiler",
		Long: `Runs compiler.binary over the files. A missing compiler, a timeout or an
interrupt reports status "skipped" and exits zero; compiler errors exit non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runCompile(cmd.Context(), cmd.OutOrStdout(), observability.GetLogger(), cfg, args, classpath)
		},
	}
	compileCmd.Flags().StringVar(&classpath, "classpath", "", "Classpath for the compiler (overrides compiler.classpath)")
	return compileCmd
}

// runCompile compiles files and prints the outcome.
func runCompile(ctx context.Context, out io.Writer, logger *zap.Logger, cfg config.Interface, files []string, classpath string) error {
	for _, f := range files {
		if _, err := readSourceFile(f); err != nil {
			return err
		}
	}
	runner := javac.NewExecRunner(cfg.Compiler(), logger)
	outcome := runner.Run(ctx, javac.Request{Files: files, Classpath: classpath})
	if err := writeJSON(out, outcome); err != nil {
		return err
	}
	if outcome.Status == javac.StatusFailure {
		return ErrCheckFailed
	}
	return nil
}
