package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkcheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcheck",
		Short: "Find broken links in static HTML files",
		Long: `linkcheck checks the links of a static HTML file before it is published.

Internal paths are resolved relative to the document, fragment anchors are
looked up in the document itself, and external http(s) links are probed with
HEAD requests. The exit code is 1 when at least one link is broken.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Include ok links in reports and enable debug logging")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		// The report already told the user which links are broken.
		if !errors.Is(err, ErrLinksBroken) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
