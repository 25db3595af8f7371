package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	token       string
	noAutoStart bool
	jsonOutput  bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediagrab",
		Short:         "mediagrab CLI - list formats and download media through a mediagrab server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", envOr("MEDIAGRAB_SERVER", "http://localhost:5001"), "Server URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("MEDIAGRAB_TOKEN"), "Bearer token (default $MEDIAGRAB_TOKEN)")
	root.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start a local server if it is not running")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print raw JSON responses")

	root.AddCommand(
		newFormatsCmd(),
		newDownloadCmd(),
		newHistoryCmd(),
		newFetchFileCmd(),
		newHealthCmd(),
		newMeCmd(),
		newLogsCmd(),
		newConfigCmd(),
	)
	return root
}

func client() *apiClient {
	return newAPIClient(serverURL, token)
}

// ensureServer starts a local server unless --no-auto-start is set
func ensureServer(cmd *cobra.Command) {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(cmd.ErrOrStderr()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
