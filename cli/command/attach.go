// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Implements the "sidekick attach" command for (re)connecting the terminal
// to an already running debug container. The interactive session itself is
// kubectl's business: sidekick only spawns "kubectl attach" with the
// terminal wired through, it doesn't speak the streaming protocol itself.

package command

import (
	"os"
	"os/exec"
	"strings"

	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// attachCmd defines the "sidekick attach" command.
var attachCmd = &cobra.Command{
	Use:   "attach [flags] POD CONTAINER",
	Short: "Attach the terminal to a running debug container",
	Example: `# Reconnect to the debug container "sidekick-abcde" of pod "web-1".
sidekick attach web-1 sidekick-abcde`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbg, err := NewDebugger()
		if err != nil {
			return err
		}
		return runAttach(podRef(cmd, args[0], dbg), args[1])
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(AttachSetupCLI, plugger.WithPlugin("attach"))
}

// AttachSetupCLI adds the “attach” command.
func AttachSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(attachCmd)
	attachCmd.Flags().StringP("namespace", "n", "",
		"Namespace of pod, unless explicitly specified in the pod name itself. Defaults to the local context's namespace.")
}

// attachArgs returns the kubectl args for attaching interactively to the
// named container of a pod.
func attachArgs(ref sidekick.PodRef, container string) []string {
	args := []string{}
	if Kubeconfig != "" {
		args = append(args, "--kubeconfig", Kubeconfig)
	}
	return append(args, "attach", "-it", "-n", ref.Namespace, ref.Name, "-c", container)
}

// attachCommandline renders the kubectl command line a user can run to
// attach to the named container, for display in instructions.
func attachCommandline(ref sidekick.PodRef, container string) string {
	return "kubectl " + strings.Join(attachArgs(ref, container), " ")
}

// runAttach hands the terminal over to "kubectl attach" for the named
// container and blocks until the interactive session ends.
func runAttach(ref sidekick.PodRef, container string) error {
	kubectl := exec.Command("kubectl", attachArgs(ref, container)...)
	kubectl.Stdin = os.Stdin
	kubectl.Stdout = os.Stdout
	kubectl.Stderr = os.Stderr
	return kubectl.Run()
}
