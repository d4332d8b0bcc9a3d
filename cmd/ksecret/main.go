// Command ksecret propagates environment-scoped secrets from Google Cloud
// Secret Manager into Kubernetes namespaces.
package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/cmd/ksecret/commands"
	"github.com/systmms/ksecret/internal/config"
	"github.com/systmms/ksecret/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	// Wipe any secret material still held in protected memory.
	memguard.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		project string
		debug   bool
		noColor bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "ksecret",
		Short: "Sync Google Cloud Secret Manager secrets into Kubernetes",
		Long: `ksecret manages environment-scoped secrets stored in Google Cloud Secret
Manager and propagates them into Kubernetes namespaces as native Secrets.

Secrets follow the naming scheme <prefix>-<environment>-<name>; 'sync'
recreates every secret of an environment in the matching namespace.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Logger = logging.New(debug, noColor)
			cfg.ProjectOverride = project
			if cfg.ProjectOverride == "" {
				cfg.ProjectOverride = os.Getenv(config.EnvProject)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&project, "project", "", "GCP project ID (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		commands.NewSyncCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewDeleteCommand(cfg),
		commands.NewInitCommand(cfg),
	)

	return rootCmd.Execute()
}
