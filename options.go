// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Defines the option sets controlling debug container creation and the
// local API gateway -- passed explicitly between the session steps, so
// there is no process-wide mutable configuration state.

package sidekick

import "time"

// DebugOptions gives more detailed control over the debug container to be
// attached to a pod. The zero value is usable: it yields a default-image
// shell container inheriting the target's security context.
type DebugOptions struct {
	// Image is the container image to run; defaults to DefaultDebugImage
	// if left empty.
	Image string
	// Command is run inside the debug container; defaults to
	// DefaultDebugCommand if left empty.
	Command []string
	// Root forces the debug container to run as UID 0 with runAsNonRoot
	// unset, regardless of the target container's security context.
	// Otherwise the target's security context is copied verbatim, so that
	// shared-namespace tooling (ptrace and friends) isn't denied by a
	// stricter default than the target's own.
	Root bool
	// PollPolicy bounds the wait for the new container to report running;
	// defaults to DefaultPollPolicy if left zero.
	PollPolicy PollPolicy
}

// GatewayOptions controls how the local API gateway child process is
// started and probed for readiness.
type GatewayOptions struct {
	// Port is the local TCP port for the gateway; defaults to
	// DefaultProxyPort if zero.
	Port int
	// Kubeconfig optionally names an explicit kubeconfig file to pass on
	// to the gateway process; defaults to the usual kubectl lookup.
	Kubeconfig string
	// Warmup limits waiting for the gateway to become ready; defaults to
	// DefaultGatewayWarmup if zero.
	Warmup time.Duration
}
