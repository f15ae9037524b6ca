// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Reads and dissects the current state of the target pod: its container
// list with volume mounts and security contexts, as well as the statuses
// of any ephemeral containers already attached to it. All functions here
// are strictly read-only; the returned views become stale the moment they
// are taken, as the pod resource is owned by the cluster, not by us.

package sidekick

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// PodRef identifies the target pod by namespace and name. A PodRef is
// immutable once the namespace has been resolved.
type PodRef struct {
	Namespace string
	Name      string
}

// String returns the usual "namespace/name" rendering of a pod reference.
func (r PodRef) String() string { return r.Namespace + "/" + r.Name }

// FetchPod retrieves the current pod document from the cluster. Missing
// pods (or wrong namespaces) surface as a LookupError, refused credentials
// as an AuthError; anything else is passed through with the cluster's own
// diagnosis, as there is nothing we could sensibly add.
func FetchPod(ctx context.Context, clientset kubernetes.Interface, ref PodRef) (*corev1.Pod, error) {
	pod, err := clientset.CoreV1().Pods(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, &LookupError{What: "pod", Name: ref.String(), Err: err}
		}
		if apierrors.IsUnauthorized(err) || apierrors.IsForbidden(err) {
			return nil, &AuthError{Err: err}
		}
		return nil, fmt.Errorf("cannot fetch pod %s: %w", ref, err)
	}
	return pod, nil
}

// ContainerMounts returns the volume mounts of the named (regular)
// container of a pod, with all subPath-scoped mounts filtered out:
// ephemeral containers sharing subPath mounts race with the target
// container's own mount setup in the container runtime, so we never copy
// them. A container without (remaining) mounts yields an empty slice; a
// container name not present in the pod yields a LookupError.
func ContainerMounts(pod *corev1.Pod, targetName string) ([]corev1.VolumeMount, error) {
	target, err := podContainer(pod, targetName)
	if err != nil {
		return nil, err
	}
	mounts := []corev1.VolumeMount{}
	for _, mount := range target.VolumeMounts {
		if mount.SubPath != "" || mount.SubPathExpr != "" {
			continue
		}
		mounts = append(mounts, mount)
	}
	return mounts, nil
}

// ContainerSecurityContext returns the security context of the named
// container, or nil if the container doesn't carry one (or doesn't
// exist).
func ContainerSecurityContext(pod *corev1.Pod, targetName string) *corev1.SecurityContext {
	target, err := podContainer(pod, targetName)
	if err != nil {
		return nil
	}
	return target.SecurityContext
}

// EphemeralStatuses returns the statuses of all ephemeral containers of a
// pod. Pods without any ephemeral containers yield an empty slice, no
// matter whether the status field is absent or an empty list.
func EphemeralStatuses(pod *corev1.Pod) []corev1.ContainerStatus {
	if pod.Status.EphemeralContainerStatuses == nil {
		return []corev1.ContainerStatus{}
	}
	return pod.Status.EphemeralContainerStatuses
}

// podContainer looks up a (regular) container of a pod by name.
func podContainer(pod *corev1.Pod, name string) (*corev1.Container, error) {
	for idx := range pod.Spec.Containers {
		if pod.Spec.Containers[idx].Name == name {
			return &pod.Spec.Containers[idx], nil
		}
	}
	return nil, &LookupError{What: "container", Name: name,
		Err: fmt.Errorf("pod %s/%s has no such container", pod.Namespace, pod.Name)}
}
