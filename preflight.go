// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Checks for debug containers already running on the target pod before any
// mutation happens: since ephemeral containers can never be removed again,
// piling up further ones on a pod that already has a live debug session is
// usually a mistake and thus needs explicit user confirmation.

package sidekick

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
	corev1 "k8s.io/api/core/v1"
)

// RunningEphemeralNames returns the names of those ephemeral containers
// that currently are in running state.
func RunningEphemeralNames(statuses []corev1.ContainerStatus) []string {
	names := []string{}
	for _, status := range statuses {
		if status.State.Running != nil {
			names = append(names, status.Name)
		}
	}
	return names
}

// affirmative answers to the continuation prompt; anything else aborts.
var affirmatives = []string{"y", "yes"}

// ConfirmDespiteRunning tells the user about the debug containers already
// running on the target pod, including how to reconnect to each of them,
// and then asks whether to proceed with attaching yet another one. It
// returns true only on an explicit affirmative answer; an empty answer, a
// read error, and anything non-affirmative all abort.
func ConfirmDespiteRunning(in io.Reader, out io.Writer, ref PodRef, running []string) bool {
	for _, name := range running {
		fmt.Fprintf(out, "debug container %q is already running; reconnect with:\n", name)
		fmt.Fprintf(out, "    kubectl attach -it -n %s %s -c %s\n", ref.Namespace, ref.Name, name)
	}
	fmt.Fprintf(out, "attach another debug container anyway? [y/N]: ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return slices.Contains(affirmatives, answer)
}
