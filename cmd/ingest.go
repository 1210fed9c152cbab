// File: cmd/ingest.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
	"github.com/xkilldash9x/seleniumshift/internal/pipeline"
)

func newIngestCmd(provider storeProvider) *cobra.Command {
	var id string

	ingestCmd := &cobra.Command{
		Use:   "ingest <model-output.txt|->",
		Short: "Store raw model output and the Java classes it contains",
		Long: `Keeps the raw text as raw/<id>.txt and every fenced java block as
code/<Class>.java in the artifact store. Reads stdin when the argument is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runIngest(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), observability.GetLogger(), cfg, args[0], id, provider)
		},
	}
	ingestCmd.Flags().StringVar(&id, "id", "", "Name for the raw output (default a random id)")
	return ingestCmd
}

type ingestResult struct {
	ID      string   `json:"id,omitempty"`
	Sources []string `json:"sources"`
}

// runIngest stores the model output read from input.
func runIngest(ctx context.Context, in io.Reader, out io.Writer, logger *zap.Logger, cfg config.Interface, input, id string, provider storeProvider) error {
	var raw []byte
	var err error
	if input == "-" {
		raw, err = io.ReadAll(in)
	} else {
		raw, err = os.ReadFile(input)
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", input)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to read model output: %w", err)
	}

	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer cleanup()

	p := pipeline.New(cfg, javac.NewExecRunner(cfg.Compiler(), logger), st, logger)
	names, err := p.Ingest(ctx, id, string(raw))
	if err != nil {
		return err
	}
	return writeJSON(out, ingestResult{ID: id, Sources: names})
}
