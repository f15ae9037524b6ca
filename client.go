// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Declares the debugger client interface of a debug session, together with
// its kubeconfig-backed implementation. A Debugger separates the two ways
// this tool talks to the cluster: plain reads use a direct client built
// from the local kubeconfig, while the mutation-and-poll phase goes
// through a gateway session owned by the debugger's caller.

package sidekick

import (
	"context"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Debugger gives access to a cluster for attaching ephemeral debug
// containers to its pods.
type Debugger interface {
	// Reader returns a cluster API client for read-only pod state access,
	// built from the local cluster configuration.
	Reader() (kubernetes.Interface, error)
	// OpenGateway establishes the local API gateway session used for
	// applying the ephemeral container patch and polling its readiness.
	// The caller owns the returned session and must close it on every
	// exit path.
	OpenGateway(ctx context.Context) (*Gateway, error)
	// Namespace returns the namespace to default to when the user didn't
	// specify any: the local context's namespace, or "default".
	Namespace() string
}

// DebuggerOptions controls how a kubeconfig-backed Debugger reaches its
// cluster.
type DebuggerOptions struct {
	// Kubeconfig optionally names an explicit kubeconfig file; defaults
	// to the usual lookup (KUBECONFIG, ~/.kube/config).
	Kubeconfig string
	// Gateway options for the mutation-phase gateway session.
	Gateway GatewayOptions
}

// NewDebugger returns a Debugger backed by the local kubeconfig for reads
// and by a kubectl proxy gateway for the mutation phase.
func NewDebugger(opts *DebuggerOptions) (Debugger, error) {
	if opts == nil {
		opts = &DebuggerOptions{}
	}
	loading := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		loading.ExplicitPath = opts.Kubeconfig
	}
	clientcfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loading, &clientcmd.ConfigOverrides{})
	ns, _, err := clientcfg.Namespace()
	if err != nil || ns == "" {
		ns = "default"
	}
	d := &kubeconfigDebugger{
		clientcfg: clientcfg,
		namespace: ns,
		gwopts:    opts.Gateway,
	}
	d.gwopts.Kubeconfig = opts.Kubeconfig
	return d, nil
}

// kubeconfigDebugger implements the Debugger interface on top of the local
// kubeconfig.
type kubeconfigDebugger struct {
	clientcfg clientcmd.ClientConfig
	namespace string
	gwopts    GatewayOptions
}

func (d *kubeconfigDebugger) Reader() (kubernetes.Interface, error) {
	restcfg, err := d.clientcfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(restcfg)
}

func (d *kubeconfigDebugger) OpenGateway(ctx context.Context) (*Gateway, error) {
	return OpenGateway(ctx, &d.gwopts)
}

func (d *kubeconfigDebugger) Namespace() string {
	return d.namespace
}
