// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"bytes"
	"strings"

	corev1 "k8s.io/api/core/v1"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("preflighting debug sessions", func() {

	ref := PodRef{Namespace: "default", Name: "web-1"}

	It("names only the running ephemeral containers", func() {
		statuses := []corev1.ContainerStatus{
			{Name: "sidekick-aaaaa", State: corev1.ContainerState{
				Running: &corev1.ContainerStateRunning{}}},
			{Name: "sidekick-bbbbb", State: corev1.ContainerState{
				Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"}}},
			{Name: "sidekick-ccccc", State: corev1.ContainerState{
				Terminated: &corev1.ContainerStateTerminated{}}},
		}
		Expect(RunningEphemeralNames(statuses)).Should(ConsistOf("sidekick-aaaaa"))
	})

	It("finds nothing running on untouched pods", func() {
		Expect(RunningEphemeralNames(nil)).Should(BeEmpty())
	})

	It("tells how to reconnect and accepts only affirmative answers", func() {
		for answer, proceed := range map[string]bool{
			"y\n":      true,
			"Y\n":      true,
			"yes\n":    true,
			" YES \n":  true,
			"n\n":      false,
			"no\n":     false,
			"\n":       false,
			"yeah\n":   false,
			"please\n": false,
		} {
			var out bytes.Buffer
			ok := ConfirmDespiteRunning(strings.NewReader(answer), &out,
				ref, []string{"sidekick-aaaaa"})
			Expect(ok).Should(Equal(proceed), "answer %q", answer)
			Expect(out.String()).Should(ContainSubstring(
				"kubectl attach -it -n default web-1 -c sidekick-aaaaa"))
		}
	})

	It("aborts when the answer input breaks away", func() {
		var out bytes.Buffer
		Expect(ConfirmDespiteRunning(strings.NewReader(""), &out,
			ref, []string{"sidekick-aaaaa"})).Should(BeFalse())
	})

})
