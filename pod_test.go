// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"context"
	"errors"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("reading pod state", func() {

	It("fetches pods and reads idempotently", func() {
		pod := testPod([]corev1.VolumeMount{{Name: "cfg", MountPath: "/etc/cfg"}}, nil)
		clientset := fake.NewSimpleClientset(pod)
		ref := PodRef{Namespace: "default", Name: "web-1"}
		first, err := FetchPod(context.Background(), clientset, ref)
		Expect(err).ShouldNot(HaveOccurred())
		second, err := FetchPod(context.Background(), clientset, ref)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(second.Spec).Should(Equal(first.Spec))
	})

	It("reports missing pods as lookup failures", func() {
		clientset := fake.NewSimpleClientset()
		_, err := FetchPod(context.Background(), clientset,
			PodRef{Namespace: "default", Name: "nonesuch"})
		Expect(err).Should(HaveOccurred())
		var lookuperr *LookupError
		Expect(errors.As(err, &lookuperr)).Should(BeTrue())
		Expect(lookuperr.What).Should(Equal("pod"))
		Expect(lookuperr.Name).Should(Equal("default/nonesuch"))
	})

	It("reports refused credentials as auth failures", func() {
		pod := testPod(nil, nil)
		clientset := fake.NewSimpleClientset(pod)
		clientset.PrependReactor("get", "pods",
			func(action k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, apierrors.NewUnauthorized("credentials expired")
			})
		_, err := FetchPod(context.Background(), clientset,
			PodRef{Namespace: "default", Name: "web-1"})
		Expect(err).Should(HaveOccurred())
		var autherr *AuthError
		Expect(errors.As(err, &autherr)).Should(BeTrue())
		Expect(autherr.Error()).Should(ContainSubstring("credentials"))

		clientset = fake.NewSimpleClientset(pod)
		clientset.PrependReactor("get", "pods",
			func(action k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, apierrors.NewForbidden(
					corev1.Resource("pods"), "web-1", errors.New("no patching for you"))
			})
		_, err = FetchPod(context.Background(), clientset,
			PodRef{Namespace: "default", Name: "web-1"})
		Expect(errors.As(err, &autherr)).Should(BeTrue())
	})

	It("returns an empty mount list for mount-less containers", func() {
		pod := testPod(nil, nil)
		mounts, err := ContainerMounts(pod, "app")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(mounts).ShouldNot(BeNil())
		Expect(mounts).Should(BeEmpty())
	})

	It("fails mount lookup for unknown containers", func() {
		pod := testPod(nil, nil)
		_, err := ContainerMounts(pod, "nonesuch")
		var lookuperr *LookupError
		Expect(errors.As(err, &lookuperr)).Should(BeTrue())
	})

	It("returns nil for absent security contexts", func() {
		pod := testPod(nil, nil)
		Expect(ContainerSecurityContext(pod, "app")).Should(BeNil())
	})

	It("treats absent and empty ephemeral statuses alike", func() {
		pod := testPod(nil, nil)
		Expect(EphemeralStatuses(pod)).ShouldNot(BeNil())
		Expect(EphemeralStatuses(pod)).Should(BeEmpty())
		pod.Status.EphemeralContainerStatuses = []corev1.ContainerStatus{}
		Expect(EphemeralStatuses(pod)).Should(BeEmpty())
	})

	It("passes ephemeral statuses through", func() {
		pod := testPod(nil, nil)
		pod.Status.EphemeralContainerStatuses = []corev1.ContainerStatus{
			{Name: "sidekick-abcde", State: corev1.ContainerState{
				Running: &corev1.ContainerStateRunning{},
			}},
		}
		Expect(EphemeralStatuses(pod)).Should(HaveLen(1))
	})

})
