// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"math/rand"
	"strings"

	"golang.org/x/exp/slices"
	corev1 "k8s.io/api/core/v1"
)

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz"

// DebugContainerName generates a fresh debug container name consisting of
// the fixed NamePrefix and a short random lowercase-alpha suffix. The
// generated name is guaranteed not to collide with any of the taken names
// passed in; collisions with containers added concurrently by other
// invocations remain theoretically possible, but the suffix space makes
// them negligible in practice.
func DebugContainerName(taken []string) string {
	for {
		var suffix strings.Builder
		for i := 0; i < NameSuffixLen; i++ {
			suffix.WriteByte(nameAlphabet[rand.Intn(len(nameAlphabet))])
		}
		name := NamePrefix + suffix.String()
		if !slices.Contains(taken, name) {
			return name
		}
	}
}

// ContainerNames returns the names of all containers of a pod, regardless
// of whether they are regular, init, or ephemeral containers.
func ContainerNames(pod *corev1.Pod) []string {
	names := make([]string, 0,
		len(pod.Spec.Containers)+len(pod.Spec.InitContainers)+len(pod.Spec.EphemeralContainers))
	for _, c := range pod.Spec.Containers {
		names = append(names, c.Name)
	}
	for _, c := range pod.Spec.InitContainers {
		names = append(names, c.Name)
	}
	for _, c := range pod.Spec.EphemeralContainers {
		names = append(names, c.Name)
	}
	return names
}
