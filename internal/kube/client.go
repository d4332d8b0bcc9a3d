// Package kube wraps the Kubernetes clientset behind the cluster operations
// the tool needs: namespace checks and secret delete/create. API errors are
// translated into the user-facing taxonomy at this boundary.
package kube

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/logging"
)

// ManagedByLabel marks cluster secrets as owned by this tool.
const ManagedByLabel = "app.kubernetes.io/managed-by"

// ManagedByValue is the fixed value of ManagedByLabel.
const ManagedByValue = "ksecret"

// Client is the cluster collaborator.
type Client struct {
	clientset kubernetes.Interface
	logger    *logging.Logger
}

// New builds a client from the local kubeconfig, optionally pinned to a
// context. An empty kubeContext uses the current context.
func New(kubeContext string, logger *logging.Logger) (*Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, kserrors.Wrap(kserrors.ClusterOther,
			"Failed to load Kubernetes configuration",
			"Check that your kubeconfig exists and the requested context is defined", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, kserrors.Wrap(kserrors.ClusterOther,
			"Failed to create Kubernetes client", "", err)
	}
	return &Client{clientset: clientset, logger: logger}, nil
}

// NewWithClientset wires an existing (possibly fake) clientset.
func NewWithClientset(clientset kubernetes.Interface, logger *logging.Logger) *Client {
	return &Client{clientset: clientset, logger: logger}
}

// NamespaceExists reports whether the namespace exists.
func (c *Client) NamespaceExists(ctx context.Context, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, kserrors.FromKube(err)
}

// DeleteSecret removes a secret, tolerating its absence.
func (c *Client) DeleteSecret(ctx context.Context, namespace, name string) error {
	err := c.clientset.CoreV1().Secrets(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return kserrors.FromKube(err)
	}
	return nil
}

// ApplySecret writes a secret with exactly the given field set, via
// delete-then-recreate: any same-named secret is removed first so no stale
// fields survive from a prior field set. The pair is not atomic; there is a
// brief window where the secret does not exist.
func (c *Client) ApplySecret(ctx context.Context, namespace, name string, data map[string][]byte) error {
	if err := c.DeleteSecret(ctx, namespace, name); err != nil {
		return err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels: map[string]string{
				ManagedByLabel: ManagedByValue,
			},
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}

	_, err := c.clientset.CoreV1().Secrets(namespace).Create(ctx, secret, metav1.CreateOptions{})
	if err != nil {
		return kserrors.FromKube(err)
	}
	c.logger.Debug("Created secret %s/%s with %d field(s)", namespace, name, len(data))
	return nil
}

// ListManagedSecrets returns the names of secrets in the namespace that
// carry the managed-by label.
func (c *Client) ListManagedSecrets(ctx context.Context, namespace string) ([]string, error) {
	list, err := c.clientset.CoreV1().Secrets(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: ManagedByLabel + "=" + ManagedByValue,
	})
	if err != nil {
		return nil, kserrors.FromKube(err)
	}

	names := make([]string, 0, len(list.Items))
	for _, s := range list.Items {
		names = append(names, s.Name)
	}
	return names, nil
}
