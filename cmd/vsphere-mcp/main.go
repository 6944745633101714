// vsphere-mcp - MCP server exposing VMware vCenter VM operations as tools
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Bibi40k/vsphere-mcp/configs"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = configs.Defaults.Server.Version

var (
	envFile      string
	transport    string
	httpAddr     string
	logLevel     string
	debugLogPath string
)

var rootCmd = &cobra.Command{
	Use:           "vsphere-mcp",
	Short:         "Serve VMware vCenter VM operations over the Model Context Protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Connect to vCenter and serve MCP tools (default)",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var checkCmd = &cobra.Command{
	Use:           "check",
	Short:         "Verify configuration and vCenter connectivity, then print the resolved placement",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", configs.Defaults.Server.Name, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"Path to a dotenv file (default: ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "",
		"MCP transport: stdio or http (overrides MCP_TRANSPORT)")
	rootCmd.PersistentFlags().StringVar(&httpAddr, "http-addr", "",
		"Listen address for the http transport (overrides MCP_HTTP_ADDR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"DEBUG, INFO, WARN or ERROR (overrides MCP_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&debugLogPath, "debug-log", "",
		"Also write DEBUG logs to this file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		const (
			red    = "\033[31m"
			yellow = "\033[33m"
			cyan   = "\033[36m"
			reset  = "\033[0m"
		)
		ue := asUserError(err)
		fmt.Fprintf(os.Stderr, "%sError:%s %s\n", red, reset, ue.Error())
		if hint := ue.Hint(); hint != "" {
			fmt.Fprintf(os.Stderr, "%sHint:%s %s%s%s\n", yellow, reset, cyan, hint, reset)
		}
		if debugCleanup != nil {
			debugCleanup()
		}
		if errors.Is(err, context.Canceled) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if debugCleanup != nil {
		debugCleanup()
	}
}
