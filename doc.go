/*
Package sidekick attaches ephemeral “sidekick” debug containers to running
Kubernetes pods. A sidekick container is spawned next to an existing target
container inside the same pod, sharing the target's process namespace and
seeing the very same (non-subPath) volume mounts the target sees. This gets
you a fully tooled debug shell “inside” a distroless or otherwise locked-down
container without restarting the pod or rebuilding any image.

Attaching a sidekick is a one-way street: Kubernetes accepts new ephemeral
containers on a pod, but never allows removing or changing them afterwards.
sidekick therefore treats the mutation as strictly single-shot and checks for
already-running debug containers before adding yet another one.

The package is organized along the steps of a debug session: fetching and
dissecting the current pod state, deriving the ephemeral container document
from the target container, opening a local API gateway (a kubectl proxy child
process owned by this package), applying the strategic merge patch, and then
polling the pod status until the new container reports running. Interactive
attachment to the running sidekick is delegated to “kubectl attach” and is
not part of this package.
*/
package sidekick
