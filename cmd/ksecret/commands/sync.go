package commands

import (
	"github.com/spf13/cobra"

	"github.com/systmms/ksecret/internal/config"
	"github.com/systmms/ksecret/internal/gcp"
	"github.com/systmms/ksecret/internal/kube"
	"github.com/systmms/ksecret/internal/syncer"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(cfg *config.Config) *cobra.Command {
	var (
		namespace   string
		kubeContext string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "sync <environment>",
		Short: "Sync all secrets for an environment into a Kubernetes namespace",
		Long: `Sync fetches every Secret Manager secret belonging to the environment and
recreates it as a Kubernetes Secret in the target namespace.

JSON object and YAML mapping values become one Secret field per member;
any other value lands under the single field "value". Each cluster secret
is replaced wholesale, so fields removed upstream disappear here too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			environment := args[0]

			remote, err := gcp.New(ctx, cfg.Resolver(), cfg.Logger)
			if err != nil {
				return err
			}
			defer remote.Close()

			cluster, err := kube.New(kubeContext, cfg.Logger)
			if err != nil {
				return err
			}

			engine := syncer.New(remote, cluster, cfg.Logger)
			_, err = engine.Sync(ctx, syncer.Options{
				Environment: environment,
				Namespace:   namespace,
				DryRun:      dryRun,
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "target namespace (defaults to the environment name)")
	cmd.Flags().StringVarP(&kubeContext, "context", "c", "", "kubeconfig context to use (defaults to the current context)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be synced without writing to the cluster")

	return cmd
}
