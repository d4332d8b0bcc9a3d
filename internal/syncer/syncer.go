// Package syncer orchestrates one sync run: list the environment's secrets
// in Secret Manager, reshape each value into a field map, and apply it to
// the target namespace.
package syncer

import (
	"context"
	"fmt"

	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/fieldmap"
	"github.com/systmms/ksecret/internal/gcp"
	"github.com/systmms/ksecret/internal/logging"
)

// RemoteStore is the slice of the Secret Manager collaborator the engine
// consumes.
type RemoteStore interface {
	ListSecrets(ctx context.Context, environment string) ([]gcp.SecretInfo, error)
	GetSecret(ctx context.Context, environment, name string) (string, error)
}

// ClusterStore is the slice of the cluster collaborator the engine consumes.
type ClusterStore interface {
	NamespaceExists(ctx context.Context, namespace string) (bool, error)
	ApplySecret(ctx context.Context, namespace, name string, data map[string][]byte) error
}

// Options configures one sync run.
type Options struct {
	Environment string
	// Namespace overrides the target namespace; empty means the
	// environment name.
	Namespace string
	DryRun    bool
}

// Outcome summarizes a sync run. On failure the counts cover the items
// handled before the run aborted.
type Outcome struct {
	Total   int
	Applied int
	Skipped int
}

// Engine is the synchronization engine.
type Engine struct {
	remote  RemoteStore
	cluster ClusterStore
	logger  *logging.Logger
}

// New creates a sync engine.
func New(remote RemoteStore, cluster ClusterStore, logger *logging.Logger) *Engine {
	return &Engine{remote: remote, cluster: cluster, logger: logger}
}

// Sync runs one per-environment sync. Items are processed sequentially to
// keep the call rate against Secret Manager predictable and progress
// strictly ordered. The first error aborts the run; items already applied
// stay applied, and re-running after a fix is safe because each apply is
// idempotent delete-then-recreate.
func (e *Engine) Sync(ctx context.Context, opts Options) (Outcome, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = opts.Environment
	}

	e.logger.Step("Syncing secrets for environment '%s' to namespace '%s'", opts.Environment, namespace)
	if opts.DryRun {
		e.logger.Warn("dry-run mode - no changes will be made")
	}

	// No writes may happen before the namespace gate passes.
	exists, err := e.cluster.NamespaceExists(ctx, namespace)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		return Outcome{}, kserrors.New(kserrors.NamespaceNotFound,
			fmt.Sprintf("Namespace '%s' does not exist", namespace),
			"Create the namespace first, or target another one with --namespace")
	}

	secrets, err := e.remote.ListSecrets(ctx, opts.Environment)
	if err != nil {
		return Outcome{}, err
	}
	if len(secrets) == 0 {
		e.logger.Warn("No secrets found for environment '%s'", opts.Environment)
		return Outcome{}, nil
	}

	e.logger.Step("Found %d secret(s) to sync", len(secrets))

	outcome := Outcome{Total: len(secrets)}
	for _, secret := range secrets {
		e.logger.ItemStart(secret.Name)

		if opts.DryRun {
			e.logger.ItemEnd("skipped (dry-run)", false)
			outcome.Skipped++
			continue
		}

		value, err := e.remote.GetSecret(ctx, opts.Environment, secret.Name)
		if err != nil {
			e.logger.ItemEnd("failed", false)
			return outcome, err
		}

		fields := fieldmap.Detect(value)
		if err := e.cluster.ApplySecret(ctx, namespace, secret.Name, fields.Bytes()); err != nil {
			e.logger.ItemEnd("failed", false)
			return outcome, err
		}

		e.logger.ItemEnd("done", true)
		outcome.Applied++
	}

	if opts.DryRun {
		e.logger.Info("Dry run complete: %d secret(s) would be synced to namespace '%s'", outcome.Total, namespace)
	} else {
		e.logger.Info("Successfully synced %d secret(s) to namespace '%s'", outcome.Applied, namespace)
	}
	return outcome, nil
}
