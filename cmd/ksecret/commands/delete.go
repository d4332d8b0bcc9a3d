package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/cache"
	"github.com/systmms/ksecret/internal/config"
	"github.com/systmms/ksecret/internal/gcp"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(cfg *config.Config) *cobra.Command {
	var (
		envName string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret and all its versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			name := args[0]

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf(
					"Delete secret '%s' from environment '%s'? This removes all versions", name, envName))
				if err != nil {
					return err
				}
				if !ok {
					cfg.Logger.Warn("Aborted")
					return nil
				}
			}

			client, err := gcp.New(ctx, cfg.Resolver(), cfg.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DeleteSecret(ctx, envName, name); err != nil {
				return err
			}

			// Drop any cached copy; failure here never undoes the delete.
			if store, err := cache.Load(); err == nil {
				store.Delete(envName, name)
				if err := store.Save(); err != nil {
					cfg.Logger.Debug("Failed to save cache: %v", err)
				}
			}

			cfg.Logger.Info("Secret '%s' deleted from environment '%s'", name, envName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "", "environment the secret belongs to (required)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}
