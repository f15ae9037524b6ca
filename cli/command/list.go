// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Provides the "sidekick list" command for listing the ephemeral debug
// containers already attached to a pod, together with their states. This is
// where users find the container names to reconnect to.

package command

import (
	"fmt"
	"os"

	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
	"github.com/thediveo/klo"
	corev1 "k8s.io/api/core/v1"
)

// Builtin custom-columns templates
const (
	// DebugListTemplate defines the custom columns when listing the debug
	// containers of a pod.
	DebugListTemplate = "CONTAINER:{.Name},TARGET:{.Target},STATE:{.State}"
	// DebugWideListTemplate is like DebugListTemplate, but additionally
	// tacks on a column listing the debug container images.
	DebugWideListTemplate = "CONTAINER:{.Name},TARGET:{.Target},STATE:{.State},IMAGE:{.Image}"

	// NameListTemplate for handling "-o name" and only showing a custom
	// "name" column; this template should be used with no headers shown, as
	// kubectl and others do.
	NameListTemplate = "NAME:{.Name}"
)

// DebugContainer describes one ephemeral debug container of a pod for
// listing purposes.
type DebugContainer struct {
	// Name of the ephemeral container.
	Name string
	// Target is the pod container this debug container was attached to.
	Target string
	// State is the current lifecycle state: pending (no status yet),
	// waiting, running, or terminated.
	State string
	// Image is the debug container's image.
	Image string
}

// listCmd defines the "sidekick list" command.
var listCmd = &cobra.Command{
	Use:     "list [flags] POD",
	Aliases: []string{"ps"},
	Short:   "List the ephemeral debug containers of a pod",
	Args:    cobra.ExactArgs(1),
	RunE:    list,
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(ListSetupCLI, plugger.WithPlugin("list"))
}

// ListSetupCLI adds the “list” command.
func ListSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(listCmd)
	listCmd.Flags().StringP("namespace", "n", "",
		"Namespace of pod, unless explicitly specified in the pod name itself. Defaults to the local context's namespace.")
	listCmd.Flags().StringP("output", "o", "",
		"Output format. One of: json|yaml|wide|custom-columns=...|custom-columns-file=...|jsonpath=...|jsonpath-file=...")
	listCmd.Flags().Bool("no-headers", false, "When using the default or custom-column output format, don't print headers (default print headers).")
	listCmd.Flags().String("sort-by", "{.Name}",
		"If non-empty, sort custom-columns using this field specification. The field specification is expressed as a JSONPath expression (e.g. '{.Name}').")
}

// list fetches the target pod and prints its ephemeral debug containers
// using a template.
func list(cmd *cobra.Command, args []string) error {
	prn, err := getPrinter(cmd)
	if err != nil {
		return err
	}
	// ...throwing in sorting, if not explicitly forbidden. It depends on the
	// object printer if it will honor the sorted data or will just impose
	// its own order anyway.
	if sortby, err := cmd.LocalFlags().GetString("sort-by"); err == nil && sortby != "" {
		var err error
		prn, err = klo.NewSortingPrinter(sortby, prn)
		if err != nil {
			return err
		}
	}
	dbg, err := NewDebugger()
	if err != nil {
		return err
	}
	ref := podRef(cmd, args[0], dbg)
	reader, err := dbg.Reader()
	if err != nil {
		return err
	}
	ctx, cancel := ReqContext()
	defer cancel()
	pod, err := sidekick.FetchPod(ctx, reader, ref)
	if err != nil {
		return err
	}
	dcs := debugContainers(pod)
	for _, dc := range dcs {
		log.Debugf("found debug container %q (%s) targetting %q", dc.Name, dc.State, dc.Target)
	}
	prn.Fprint(os.Stdout, dcs)
	return nil
}

// debugContainers joins a pod's ephemeral container specs with their
// statuses into listing rows. Containers without any status entry yet show
// up as pending.
func debugContainers(pod *corev1.Pod) []*DebugContainer {
	states := map[string]string{}
	for _, status := range sidekick.EphemeralStatuses(pod) {
		states[status.Name] = containerState(status.State)
	}
	dcs := make([]*DebugContainer, 0, len(pod.Spec.EphemeralContainers))
	for _, ec := range pod.Spec.EphemeralContainers {
		state, ok := states[ec.Name]
		if !ok {
			state = "pending"
		}
		dcs = append(dcs, &DebugContainer{
			Name:   ec.Name,
			Target: ec.TargetContainerName,
			State:  state,
			Image:  ec.Image,
		})
	}
	return dcs
}

// containerState renders a container state into its kubectl-ish one-word
// form, with waiting states additionally showing the reason, if any.
func containerState(state corev1.ContainerState) string {
	switch {
	case state.Running != nil:
		return "running"
	case state.Terminated != nil:
		return "terminated"
	case state.Waiting != nil:
		if state.Waiting.Reason != "" {
			return fmt.Sprintf("waiting (%s)", state.Waiting.Reason)
		}
		return "waiting"
	}
	return "pending"
}

// getPrinter returns a value printer configured according to the output
// format chosen by the user, and some more optional output configuration
// flags.
func getPrinter(cmd *cobra.Command) (prn klo.ValuePrinter, err error) {
	outfmt, err := cmd.LocalFlags().GetString("output")
	if err != nil {
		return
	}
	if outfmt == "name" {
		// Support "-o name" output format which uses our builtin
		// custom-columns template to only show debug container names, and
		// hide the column header.
		prn, err = klo.PrinterFromFlag("custom-columns="+NameListTemplate, nil)
		if err != nil {
			panic(err)
		}
		prn.(*klo.CustomColumnsPrinter).HideHeaders = true
	} else {
		// For the other output format option, let the kubectl-like output
		// package handle the details and give us just the printer suitable
		// for dumping the debug container list onto our users.
		prn, err = klo.PrinterFromFlag(outfmt, &klo.Specs{
			DefaultColumnSpec: DebugListTemplate,
			WideColumnSpec:    DebugWideListTemplate,
		})
		if err != nil {
			return
		}
		if ccprn, ok := prn.(*klo.CustomColumnsPrinter); ok {
			ccprn.Padding = 3
			if noheaders, err := cmd.LocalFlags().GetBool("no-headers"); err == nil {
				ccprn.HideHeaders = noheaders
			}
		}
	}
	return
}
