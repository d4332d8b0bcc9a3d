package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the configuration file",
		Long: `Init writes the configuration file with the given GCP project ID. An
existing file is overwritten; the secret prefix keeps its default unless
edited in the file afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fresh := &config.Config{
				Path:         cfg.Path,
				GCPProjectID: project,
				SecretPrefix: config.DefaultPrefix,
			}
			if err := fresh.Save(); err != nil {
				return err
			}

			cfg.Logger.Info("Configuration saved to %s", fresh.Path)
			cfg.Logger.Info("GCP project: %s", project)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "GCP project ID (required)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
