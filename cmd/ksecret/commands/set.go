package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/config"
	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/gcp"
	"github.com/systmms/ksecret/internal/logging"
	"github.com/systmms/ksecret/internal/secure"
)

// NewSetCommand creates the set command.
func NewSetCommand(cfg *config.Config) *cobra.Command {
	var (
		envName  string
		value    string
		useStdin bool
	)

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Write a new secret version",
		Long: `Set creates the secret if it does not exist yet and adds a new version
holding the given value. The value comes from --value, from stdin with
--stdin, or from an interactive prompt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			if value != "" && useStdin {
				return kserrors.New(kserrors.ConfigMissing,
					"--value and --stdin are mutually exclusive",
					"Pass the value one way or the other")
			}
			ctx := cmd.Context()
			name := args[0]

			raw, err := readSecretValue(cmd, value, useStdin)
			if err != nil {
				return err
			}
			if raw == "" {
				return kserrors.New(kserrors.ConfigMissing,
					"Refusing to store an empty value",
					"Provide a non-empty value via --value, --stdin or the prompt")
			}

			// Keep the plaintext locked in memory until the API call needs it.
			buf := secure.NewBuffer([]byte(raw))
			defer buf.Destroy()

			client, err := gcp.New(ctx, cfg.Resolver(), cfg.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			locked, err := buf.Open()
			if err != nil {
				return err
			}
			defer locked.Destroy()

			cfg.Logger.Debug("Setting %s in environment %s to %s", name, envName, logging.Secret(raw))
			if err := client.SetSecret(ctx, envName, name, locked.Bytes()); err != nil {
				return err
			}

			cfg.Logger.Info("Secret '%s' set for environment '%s'", name, envName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "", "environment the secret belongs to (required)")
	cmd.Flags().StringVarP(&value, "value", "v", "", "secret value")
	cmd.Flags().BoolVar(&useStdin, "stdin", false, "read the secret value from stdin")
	_ = cmd.MarkFlagRequired("env")

	return cmd
}
