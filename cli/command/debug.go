// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Implements the "sidekick debug" command: the full orchestration sequence
// of a debug session. Preflight-check the pod for already running debug
// containers, capture the target container's state, derive the ephemeral
// debug container, open the API gateway (with teardown wired to every exit
// path), apply the patch, and poll until the new container is attachable.

package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
	"sigs.k8s.io/yaml"
)

// debugCmd defines the "sidekick debug" command.
var debugCmd = &cobra.Command{
	Use:   "debug [flags] POD",
	Short: "Attach an ephemeral debug container to a running pod",
	Args:  cobra.ExactArgs(1),
	RunE:  debugPod,
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(DebugSetupCLI, plugger.WithPlugin("debug"))
	plugger.Group[cli.CommandExamples]().Register(
		func() map[string]string {
			return map[string]string{
				"debug": `# Attach a busybox shell next to the "app" container of pod "web-1".
sidekick debug web-1 --target app

# Same, but with a fully tooled image, running as root, attaching right away.
sidekick debug web-1 -t app --image nicolaka/netshoot --root --attach`,
			}
		},
		plugger.WithPlugin("debug"))
}

// DebugSetupCLI adds the “debug” command.
func DebugSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(debugCmd)
	f := debugCmd.Flags()
	f.StringP("target", "t", "",
		"Name of the pod container to debug; the debug container shares its process namespace and volume mounts")
	debugCmd.MarkFlagRequired("target")
	f.StringP("namespace", "n", "",
		"Namespace of pod, unless explicitly specified in the pod name itself. Defaults to the local context's namespace.")
	f.String("image", sidekick.DefaultDebugImage, "Container image for the debug container")
	f.StringSlice("command", nil,
		"Command to run in the debug container (comma-separated or repeated); defaults to \"sh\"")
	f.Bool("root", false,
		"Force the debug container to run as root (UID 0), overriding the target's security context")
	f.Bool("attach", false, "Attach to the debug container once it is running")
	f.Bool("dry-run", false, "Only print the debug container document, don't change the pod")
	Annotate(f, "attach", MutualFlagGroupAnnotation, ModeGroup)
	Annotate(f, "dry-run", MutualFlagGroupAnnotation, ModeGroup)
}

// debugPod runs a complete debug session against the specified pod.
func debugPod(cmd *cobra.Command, args []string) error {
	targetName, _ := cmd.Flags().GetString("target")
	image, _ := cmd.Flags().GetString("image")
	cmdline, _ := cmd.Flags().GetStringSlice("command")
	root, _ := cmd.Flags().GetBool("root")
	attach, _ := cmd.Flags().GetBool("attach")
	dryrun, _ := cmd.Flags().GetBool("dry-run")

	dbg, err := NewDebugger()
	if err != nil {
		return err
	}
	ref := podRef(cmd, args[0], dbg)
	ctx, cancel := ReqContext()
	defer cancel()

	// Capture the current pod state: it feeds both the preflight check and
	// the debug container derivation, and it must be captured strictly
	// before building the patch, as an applied ephemeral container can
	// never be retracted or corrected afterwards.
	reader, err := dbg.Reader()
	if err != nil {
		return err
	}
	pod, err := sidekick.FetchPod(ctx, reader, ref)
	if err != nil {
		return err
	}
	if running := sidekick.RunningEphemeralNames(sidekick.EphemeralStatuses(pod)); len(running) > 0 {
		if !sidekick.ConfirmDespiteRunning(cmd.InOrStdin(), cmd.OutOrStdout(), ref, running) {
			return errors.New("aborted by user; pod left unchanged")
		}
	}
	opts := &sidekick.DebugOptions{
		Image:   image,
		Command: cmdline,
		Root:    root,
	}
	ec, err := sidekick.NewDebugContainer(pod, targetName, opts)
	if err != nil {
		return err
	}
	if dryrun {
		doc, err := yaml.Marshal(ec)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "would attach to pod %s:\n%s", ref, string(doc))
		return nil
	}

	// Mutation phase: everything from here on goes through the gateway
	// session, which must be torn down on every exit path, signals
	// included.
	gw, err := dbg.OpenGateway(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()
	gw.CloseOnSignals(1)
	clientset, err := gw.Clientset()
	if err != nil {
		return err
	}
	name, err := sidekick.Apply(ctx, clientset, ref, ec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "debug container %q added to pod %s, waiting for it to start...\n", name, ref)
	state, err := sidekick.WaitRunning(ctx, clientset, ref, name, opts.PollPolicy)
	if err != nil {
		return err
	}
	if state != sidekick.Running {
		// Not fatal: the container may simply need more time, for instance
		// for pulling a hefty debug image.
		fmt.Fprintf(cmd.OutOrStdout(),
			"debug container %q is still not ready; check its state with:\n    kubectl describe -n %s pod %s\nand attach later with:\n    %s\n",
			name, ref.Namespace, ref.Name, attachCommandline(ref, name))
		return nil
	}
	log.Debugf("debug container %q is running", name)
	if attach {
		// The interactive session is kubectl's business and doesn't go
		// through the gateway anymore, so release it right away.
		gw.Close()
		return runAttach(ref, name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "debug container %q is running; attach with:\n    %s\n",
		name, attachCommandline(ref, name))
	return nil
}

// podRef resolves a pod CLI arg of the form "name" or "namespace/name"
// into a pod reference, defaulting the namespace from the --namespace flag
// and then from the debugger client's local context.
func podRef(cmd *cobra.Command, podname string, dbg sidekick.Debugger) sidekick.PodRef {
	if ns, name, ok := strings.Cut(podname, "/"); ok {
		return sidekick.PodRef{Namespace: ns, Name: name}
	}
	ns, _ := cmd.Flags().GetString("namespace")
	if ns == "" {
		ns = dbg.Namespace()
	}
	return sidekick.PodRef{Namespace: ns, Name: podname}
}
