// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Derives the ephemeral debug container document from the target
// container's live state and renders it into a strategic merge patch. The
// patch only ever appends to the pod's ephemeral container list, so
// unrelated pod fields stay untouched by concurrent pod changes.

package sidekick

import (
	"encoding/json"

	corev1 "k8s.io/api/core/v1"
)

// NewDebugContainer derives the ephemeral debug container to be attached
// next to the named target container of the given pod. The debug container
// gets the target's non-subPath volume mounts copied verbatim, so it
// immediately sees the same files the target sees. Its security context
// either forces root (Root option) or is a verbatim copy of the target's
// context -- including no context at all, so the debug container never
// ends up with a stricter (or laxer) posture than the container it is
// debugging.
func NewDebugContainer(pod *corev1.Pod, targetName string, opts *DebugOptions) (corev1.EphemeralContainer, error) {
	if opts == nil {
		opts = &DebugOptions{}
	}
	if targetName == "" {
		return corev1.EphemeralContainer{}, &ValidationError{
			Reason: "no target container specified"}
	}
	mounts, err := ContainerMounts(pod, targetName)
	if err != nil {
		return corev1.EphemeralContainer{}, err
	}
	image := opts.Image
	if image == "" {
		image = DefaultDebugImage
	}
	command := opts.Command
	if len(command) == 0 {
		command = DefaultDebugCommand
	}
	var secctx *corev1.SecurityContext
	if opts.Root {
		runAsNonRoot := false
		runAsUser := int64(0)
		secctx = &corev1.SecurityContext{
			RunAsNonRoot: &runAsNonRoot,
			RunAsUser:    &runAsUser,
		}
	} else {
		secctx = ContainerSecurityContext(pod, targetName)
	}
	return corev1.EphemeralContainer{
		EphemeralContainerCommon: corev1.EphemeralContainerCommon{
			Name:            DebugContainerName(ContainerNames(pod)),
			Image:           image,
			Command:         command,
			Stdin:           true,
			TTY:             true,
			VolumeMounts:    mounts,
			SecurityContext: secctx,
		},
		TargetContainerName: targetName,
	}, nil
}

// EphemeralContainersPatch renders ephemeral containers into the strategic
// merge patch document accepted by the pod's ephemeralcontainers
// subresource. The document is built by marshalling the typed API objects,
// never by pasting strings together, so mount paths and names with funny
// characters cannot break or inject anything.
func EphemeralContainersPatch(ecs ...corev1.EphemeralContainer) ([]byte, error) {
	type patchSpec struct {
		EphemeralContainers []corev1.EphemeralContainer `json:"ephemeralContainers"`
	}
	type patchDocument struct {
		Spec patchSpec `json:"spec"`
	}
	return json.Marshal(&patchDocument{Spec: patchSpec{EphemeralContainers: ecs}})
}
