// File: cmd/report.go
package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/seleniumshift/internal/reportcheck"
)

// newReportCmd creates and configures the `validate-report` command.
func newReportCmd() *cobra.Command {
	var rulesFile string

	reportCmd := &cobra.Command{
		Use:   "validate-report <report.md>",
		Short: "Validate a generated test report against the report rules",
		Long: `Checks required sections, a minimum word count and forbidden placeholder
phrases. Rules come from --rules, report.rules_file or the built-in defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rules") {
				rulesFile = cfg.Report().RulesFile
			}
			return runReport(cmd.OutOrStdout(), args[0], rulesFile)
		},
	}
	reportCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file")
	return reportCmd
}

// runReport validates the report at path.
func runReport(out io.Writer, path, rulesFile string) error {
	rules, err := reportcheck.LoadRules(rulesFile)
	if err != nil {
		return err
	}
	text, err := readSourceFile(path)
	if err != nil {
		return err
	}
	res := rules.Validate(text)
	if err := writeJSON(out, res); err != nil {
		return err
	}
	if !res.Valid {
		return ErrCheckFailed
	}
	return nil
}
