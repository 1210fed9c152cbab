// File: cmd/extract.go
package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/seleniumshift/internal/extract"
)

// orderFlag resolves --order against planner.action_order.
func orderFlag(cmd *cobra.Command, flag string, configured string) (extract.Order, error) {
	if cmd.Flags().Changed("order") {
		return extract.ParseOrder(flag)
	}
	return extract.ParseOrder(configured)
}

func newExtractCmd() *cobra.Command {
	var order, output string

	extractCmd := &cobra.Command{
		Use:   "extract <file.java>",
		Short: "Extract the browser actions of each test method",
		Long: `Prints {"testMethods": [{"name", "actions"}]}, the interchange format the plan
command accepts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			o, err := orderFlag(cmd, order, cfg.Planner().ActionOrder)
			if err != nil {
				return err
			}
			return runExtract(cmd.OutOrStdout(), args[0], o, output)
		},
	}
	extractCmd.Flags().StringVar(&order, "order", "", "Action order: source or grouped (default planner.action_order)")
	extractCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return extractCmd
}

// runExtract prints the extraction for file.
func runExtract(out io.Writer, file string, order extract.Order, output string) error {
	src, err := readSourceFile(file)
	if err != nil {
		return err
	}
	return writeOutput(out, output, extract.File(src, order))
}
