package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/config"
	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/gcp"
)

// NewListCommand creates the list command.
func NewListCommand(cfg *config.Config) *cobra.Command {
	var (
		envName string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the secrets of an environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if output != "table" && output != "json" {
				return kserrors.New(kserrors.ConfigMissing,
					fmt.Sprintf("Unknown output format '%s'", output),
					"Use --output table or --output json")
			}
			ctx := cmd.Context()

			client, err := gcp.New(ctx, cfg.Resolver(), cfg.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			secrets, err := client.ListSecrets(ctx, envName)
			if err != nil {
				return err
			}

			if output == "json" {
				type item struct {
					Name        string  `json:"name"`
					Environment string  `json:"environment"`
					CreatedAt   *string `json:"created_at"`
				}
				items := make([]item, 0, len(secrets))
				for _, s := range secrets {
					it := item{Name: s.Name, Environment: s.Environment}
					if s.CreatedAt != nil {
						created := formatCreatedAt(s.CreatedAt)
						it.CreatedAt = &created
					}
					items = append(items, it)
				}

				data, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(secrets) == 0 {
				cfg.Logger.Warn("No secrets found for environment '%s'", envName)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCREATED")
			for _, s := range secrets {
				fmt.Fprintf(w, "%s\t%s\n", s.Name, formatCreatedAt(s.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d secret(s)\n", len(secrets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "", "environment to list (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}
