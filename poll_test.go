// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"context"
	"errors"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// quickPolls is a test-friendly poll policy: same attempt budget as the
// real one, but without dozing off between attempts for seconds.
var quickPolls = PollPolicy{Attempts: 10, Interval: time.Millisecond}

// pollingClientset returns a fake clientset whose pod "web-1" reports its
// ephemeral container "sidekick-abcde" as running from the runningAt-th
// status fetch onwards (never, if 0), plus a pointer to the fetch counter.
func pollingClientset(runningAt int) (*fake.Clientset, *int) {
	fetches := 0
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("get", "pods",
		func(action k8stesting.Action) (bool, runtime.Object, error) {
			fetches++
			pod := testPod(nil, nil)
			status := corev1.ContainerStatus{Name: "sidekick-abcde"}
			if runningAt > 0 && fetches >= runningAt {
				status.State.Running = &corev1.ContainerStateRunning{}
			}
			pod.Status.EphemeralContainerStatuses = []corev1.ContainerStatus{status}
			return true, pod, nil
		})
	return clientset, &fetches
}

var _ = Describe("polling debug container readiness", func() {

	ref := PodRef{Namespace: "default", Name: "web-1"}

	It("reports running as soon as the container comes up", func() {
		clientset, fetches := pollingClientset(4)
		state, err := WaitRunning(context.Background(), clientset, ref,
			"sidekick-abcde", quickPolls)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(state).Should(Equal(Running))
		Expect(*fetches).Should(Equal(4))
	})

	It("gives up after the attempt budget, without failing", func() {
		clientset, fetches := pollingClientset(0)
		state, err := WaitRunning(context.Background(), clientset, ref,
			"sidekick-abcde", quickPolls)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(state).Should(Equal(TimedOut))
		Expect(*fetches).Should(Equal(10))
	})

	It("treats an absent status entry as still waiting", func() {
		clientset := fake.NewSimpleClientset(testPod(nil, nil))
		state, err := WaitRunning(context.Background(), clientset, ref,
			"sidekick-abcde", PollPolicy{Attempts: 2, Interval: time.Millisecond})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(state).Should(Equal(TimedOut))
	})

	It("aborts polling when pod fetching breaks", func() {
		clientset := fake.NewSimpleClientset()
		clientset.PrependReactor("get", "pods",
			func(action k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, errors.New("cluster went away")
			})
		state, err := WaitRunning(context.Background(), clientset, ref,
			"sidekick-abcde", quickPolls)
		Expect(err).Should(HaveOccurred())
		Expect(state).Should(Equal(Waiting))
	})

	It("falls back to the default policy for zero attempts", func() {
		clientset, fetches := pollingClientset(1)
		state, err := WaitRunning(context.Background(), clientset, ref,
			"sidekick-abcde", PollPolicy{})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(state).Should(Equal(Running))
		Expect(*fetches).Should(Equal(1))
	})

})
