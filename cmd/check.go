// File: cmd/check.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/seleniumshift/internal/syntaxcheck"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.java>",
		Short: "Check a test class for structural problems without compiling it",
		Long: `Scans the file for unbalanced braces, literals and comments, and verifies the
scaffolding a Selenium test class needs: a public class, JUnit test methods,
setup and teardown hooks and a WebDriver. Exits non-zero when the file is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), args[0])
		},
	}
}

// runCheck prints the syntax result for file.
func runCheck(out io.Writer, file string) error {
	src, err := readSourceFile(file)
	if err != nil {
		return err
	}
	res := syntaxcheck.Check(src)
	if err := writeJSON(out, res); err != nil {
		return err
	}
	if !res.Valid {
		return ErrCheckFailed
	}
	return nil
}

func readSourceFile(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", file)
		}
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}
