// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// The error taxonomy of a debug session: validation, lookup, gateway, and
// patch-rejection errors are all fatal and map to a non-zero process exit,
// but need to stay distinguishable for sensible user reporting. An
// exhausted readiness poll deliberately is a state, not an error (see
// poll.go).

package sidekick

import "fmt"

// ValidationError indicates missing or contradictory user input; no
// cluster mutation has been attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// LookupError indicates that the pod, namespace, or target container could
// not be found; no mutation has been attempted.
type LookupError struct {
	What string // "pod", "namespace", "container", ...
	Name string
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot find %s %q: %s", e.What, e.Name, e.Err.Error())
	}
	return fmt.Sprintf("cannot find %s %q", e.What, e.Name)
}

func (e *LookupError) Unwrap() error { return e.Err }

// AuthError indicates that the cluster refused our credentials, either
// because they expired (401) or because they lack the necessary
// permissions (403); no mutation has been attempted.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("cluster refused credentials: %s", e.Err.Error())
}

func (e *AuthError) Unwrap() error { return e.Err }

// GatewayError indicates that the local API gateway could not be started
// or died prematurely, for instance because the local port is already
// taken or the cluster credentials are invalid.
type GatewayError struct {
	Port int
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("API gateway on port %d failed: %s", e.Port, e.Err.Error())
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PatchRejectedError indicates that the cluster refused the ephemeral
// container patch. As ephemeral container patches are strictly one-shot --
// the same patch cannot be safely resent once the container name has been
// reserved -- the rejected patch document is carried along for diagnosis
// instead of being silently swallowed.
type PatchRejectedError struct {
	Patch []byte
	Err   error
}

func (e *PatchRejectedError) Error() string {
	return fmt.Sprintf("cluster rejected ephemeral container patch: %s\npatch document was: %s",
		e.Err.Error(), string(e.Patch))
}

func (e *PatchRejectedError) Unwrap() error { return e.Err }
