// File: cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/mcp"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
)

func newServeCmd(provider storeProvider) *cobra.Command {
	var stdio bool
	var addr string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the tools to a tool-calling host",
		Long: `Serves check_syntax, compile_java, check_feature_coverage, extract_plan,
record_locator, list_plans and validate_report. By default over HTTP on
mcp.listen_addr; with --stdio as newline-delimited JSON-RPC 2.0 for MCP clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.SetMCPListenAddr(addr)
			}
			return runServe(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), observability.GetLogger(), cfg, stdio, provider)
		},
	}
	serveCmd.Flags().BoolVar(&stdio, "stdio", false, "Speak JSON-RPC on stdin/stdout instead of HTTP")
	serveCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default mcp.listen_addr)")
	return serveCmd
}

// runServe hosts the tool registry until ctx is done or stdin closes.
func runServe(ctx context.Context, in io.Reader, out io.Writer, logger *zap.Logger, cfg config.Interface, stdio bool, provider storeProvider) error {
	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer cleanup()

	registry := mcp.NewDefaultRegistry(mcp.Deps{
		Config: cfg,
		Runner: javac.NewExecRunner(cfg.Compiler(), logger),
		Store:  st,
	}, logger)
	server := mcp.NewServer(cfg, registry, Version, logger)

	if stdio {
		return server.ServeStdio(ctx, in, out)
	}
	return server.Start(ctx)
}
