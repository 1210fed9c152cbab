// File: cmd/coverage.go
package cmd

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/seleniumshift/internal/coverage"
)

func newCoverageCmd() *cobra.Command {
	var feature string
	var threshold float64

	coverageCmd := &cobra.Command{
		Use:   "coverage <file.java>",
		Short: "Estimate whether a test class covers a named feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Coverage().Threshold
			}
			return runCoverage(cmd.OutOrStdout(), args[0], feature, threshold)
		},
	}
	coverageCmd.Flags().StringVarP(&feature, "feature", "f", "", "Feature name, e.g. \"shopping cart checkout\" (required)")
	_ = coverageCmd.MarkFlagRequired("feature")
	coverageCmd.Flags().Float64Var(&threshold, "threshold", coverage.DefaultThreshold, "Keyword share needed to count as covered")
	return coverageCmd
}

// runCoverage prints the coverage result for file.
func runCoverage(out io.Writer, file, feature string, threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return errors.New("threshold must be between 0 and 1")
	}
	src, err := readSourceFile(file)
	if err != nil {
		return err
	}
	res := coverage.Check(src, feature, threshold)
	if err := writeJSON(out, res); err != nil {
		return err
	}
	if !res.Covered {
		return ErrCheckFailed
	}
	return nil
}
