// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Bounded polling for the freshly attached debug container to report
// running. The pod's ephemeral container status is eventually consistent:
// right after a successful patch the status entry typically doesn't even
// exist yet, then shows up waiting, and only after image pull and start
// flips to running. We deliberately poll a fixed, small number of times
// instead of watching: this is a quick smoke check, and a container that
// is merely slow is a state to report, not an error.

package sidekick

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
)

// PollState is the terminal state of a readiness poll.
type PollState int

const (
	// Waiting is the initial, non-terminal poll state.
	Waiting PollState = iota
	// Running means the debug container reported running within the
	// attempt budget.
	Running
	// TimedOut means the attempt budget was exhausted without the debug
	// container reporting running. This is informational, not fatal: the
	// container may simply need more time and can still be attached to
	// manually later.
	TimedOut
)

// String returns a human-readable poll state name.
func (s PollState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Running:
		return "running"
	case TimedOut:
		return "timed out"
	}
	return "invalid"
}

// PollPolicy names the bounds of a readiness poll: how many attempts, and
// how long to pause between them.
type PollPolicy struct {
	Attempts int
	Interval time.Duration
}

// WaitRunning polls the pod status until the named ephemeral container
// reports running, the policy's attempt budget is exhausted, or the
// context is cancelled. It returns Running or TimedOut; fetch errors abort
// the poll with state Waiting, as no terminal verdict could be reached.
func WaitRunning(ctx context.Context, clientset kubernetes.Interface, ref PodRef, name string, policy PollPolicy) (PollState, error) {
	if policy.Attempts <= 0 {
		policy = DefaultPollPolicy
	}
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		pod, err := FetchPod(ctx, clientset, ref)
		if err != nil {
			return Waiting, err
		}
		for _, status := range EphemeralStatuses(pod) {
			if status.Name != name {
				continue
			}
			if status.State.Running != nil {
				log.Debugf("debug container %q running after %d poll attempt(s)", name, attempt)
				return Running, nil
			}
		}
		log.Debugf("debug container %q not yet running (attempt %d of %d)",
			name, attempt, policy.Attempts)
		if attempt == policy.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return Waiting, ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
	return TimedOut, nil
}
