// File: cmd/plan.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/api/schemas"
	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/extract"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
	"github.com/xkilldash9x/seleniumshift/internal/planner"
	"github.com/xkilldash9x/seleniumshift/internal/store"
)

type planOptions struct {
	baseURL string
	order   string
	output  string
	save    bool
}

func newPlanCmd(provider storeProvider) *cobra.Command {
	var opts planOptions

	planCmd := &cobra.Command{
		Use:   "plan <file.java|extraction.json>",
		Short: "Compile a test class, or an extraction, into an execution plan",
		Long: `Compiles every test method into an ordered list of browser automation steps.
The input is either a Java source file or the JSON printed by "extract".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("base-url") {
				cfg.SetPlannerBaseURL(opts.baseURL)
			}
			order, err := orderFlag(cmd, opts.order, cfg.Planner().ActionOrder)
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), cmd.OutOrStdout(), observability.GetLogger(), cfg, args[0], order, opts, provider)
		},
	}
	planCmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Base URL for bootstrap and deferred navigation (default planner.base_url)")
	planCmd.Flags().StringVar(&opts.order, "order", "", "Action order: source or grouped (default planner.action_order)")
	planCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the plan to this file instead of stdout")
	planCmd.Flags().BoolVar(&opts.save, "save", false, "Also store the plan in the artifact store")
	return planCmd
}

// runPlan builds and prints the plan for input.
func runPlan(ctx context.Context, out io.Writer, logger *zap.Logger, cfg config.Interface, input string, order extract.Order, opts planOptions, provider storeProvider) error {
	data, err := readSourceFile(input)
	if err != nil {
		return err
	}

	var ex *schemas.Extraction
	if strings.EqualFold(filepath.Ext(input), ".json") {
		ex, err = schemas.DecodeExtraction([]byte(data))
		if err != nil {
			return err
		}
	} else {
		ex = extract.File(data, order)
	}

	pc := cfg.Planner()
	plan := planner.Build(ex, filepath.Base(input), planner.Options{
		BaseURL:     pc.BaseURL,
		WaitSeconds: pc.WaitSeconds,
		Order:       order,
	})

	if opts.save {
		st, cleanup, err := provider.Create(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer cleanup()
		encoded, err := schemas.EncodeJSON(plan)
		if err != nil {
			return err
		}
		name := store.PlanName(input)
		if err := st.Put(ctx, name, encoded); err != nil {
			return fmt.Errorf("failed to store plan: %w", err)
		}
		logger.Info("Plan stored", zap.String("name", name))
	}
	return writeOutput(out, opts.output, plan)
}
