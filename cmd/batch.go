// File: cmd/batch.go
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
	"github.com/xkilldash9x/seleniumshift/internal/pipeline"
)

func newBatchCmd(provider storeProvider) *cobra.Command {
	var concurrency int
	var classpath, storeType, baseURL string

	batchCmd := &cobra.Command{
		Use:   "batch <file.java>...",
		Short: "Check, compile and plan many test classes, storing each plan",
		Long: `Runs every file through syntax check, compilation, action extraction and plan
compilation. Plans are stored as plans/<Class>.plan.json; files in the same batch
that share a name get a path-derived suffix. Exits non-zero when any file failed or
was missing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("concurrency") {
				cfg.SetPipelineConcurrency(concurrency)
			}
			if flags.Changed("classpath") {
				cfg.SetCompilerClasspath(classpath)
			}
			if flags.Changed("store") {
				cfg.SetStoreType(storeType)
			}
			if flags.Changed("base-url") {
				cfg.SetPlannerBaseURL(baseURL)
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), observability.GetLogger(), cfg, args, provider)
		},
	}
	batchCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Files processed at once (default pipeline.concurrency)")
	batchCmd.Flags().StringVar(&classpath, "classpath", "", "Classpath for the compiler (default compiler.classpath)")
	batchCmd.Flags().StringVar(&storeType, "store", "", "Artifact store: file, sqlite or postgres (default store.type)")
	batchCmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL for the plans (default planner.base_url)")
	return batchCmd
}

// runBatch processes files and prints the batch report.
func runBatch(ctx context.Context, out io.Writer, logger *zap.Logger, cfg config.Interface, files []string, provider storeProvider) error {
	if cfg.Pipeline().Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer cleanup()

	runner := javac.NewExecRunner(cfg.Compiler(), logger)
	report, err := pipeline.New(cfg, runner, st, logger).Run(ctx, files)
	if err != nil {
		return err
	}
	if err := writeJSON(out, report); err != nil {
		return err
	}
	if report.Failed > 0 || report.NotFound > 0 {
		return ErrCheckFailed
	}
	return nil
}
