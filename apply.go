// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
)

// Apply attaches the ephemeral debug container to the target pod by
// patching the pod's ephemeralcontainers subresource and returns the name
// of the newly attached container. Apply is strictly single-shot: once the
// cluster has seen the patch, the container name is reserved for the
// lifetime of the pod and resending the identical patch would only mask
// the real cause behind an "already exists" class of error. A rejection
// therefore surfaces as a PatchRejectedError carrying the full patch
// document for diagnosis.
func Apply(ctx context.Context, clientset kubernetes.Interface, ref PodRef, ec corev1.EphemeralContainer) (string, error) {
	patch, err := EphemeralContainersPatch(ec)
	if err != nil {
		return "", err
	}
	log.Debugf("patching pod %s with: %s", ref, string(patch))
	_, err = clientset.CoreV1().Pods(ref.Namespace).Patch(ctx,
		ref.Name, types.StrategicMergePatchType, patch,
		metav1.PatchOptions{}, "ephemeralcontainers")
	if err != nil {
		return "", &PatchRejectedError{Patch: patch, Err: err}
	}
	log.Debugf("debug container %q accepted by cluster", ec.Name)
	return ec.Name, nil
}
