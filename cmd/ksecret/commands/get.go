package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/cache"
	"github.com/systmms/ksecret/internal/config"
	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/gcp"
)

// NewGetCommand creates the get command.
func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		envName string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Read a secret value",
		Long: `Get prints the latest version of a secret. Values read from Secret
Manager are cached locally for 5 minutes; --no-cache bypasses the cache
entirely, neither reading nor updating it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if output != "text" && output != "json" {
				return kserrors.New(kserrors.ConfigMissing,
					fmt.Sprintf("Unknown output format '%s'", output),
					"Use --output text or --output json")
			}
			ctx := cmd.Context()
			name := args[0]

			var store *cache.Cache
			if !noCache {
				c, err := cache.Load()
				if err != nil {
					// A broken cache never blocks a read.
					cfg.Logger.Debug("Cache unavailable: %v", err)
				} else {
					store = c
				}
			}

			value, cached := "", false
			if store != nil {
				value, cached = store.Get(envName, name)
				if cached {
					cfg.Logger.Debug("Cache hit for %s:%s", envName, name)
				}
			}

			if !cached {
				client, err := gcp.New(ctx, cfg.Resolver(), cfg.Logger)
				if err != nil {
					return err
				}
				defer client.Close()

				value, err = client.GetSecret(ctx, envName, name)
				if err != nil {
					return err
				}

				if store != nil {
					store.Set(envName, name, value)
					if err := store.Save(); err != nil {
						cfg.Logger.Debug("Failed to save cache: %v", err)
					}
				}
			}

			if output == "json" {
				doc := struct {
					Name        string `json:"name"`
					Environment string `json:"environment"`
					Value       string `json:"value"`
				}{Name: name, Environment: envName, Value: value}

				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to serialize output: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "", "environment the secret belongs to (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the local cache for this read")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}
