// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Implements the sidekick "root" command with its global CLI flags.
// Additionally runs some checks on some of those global CLI flags, where
// necessary, so individual commands do not need to check them themselves.

package command

import (
	"context"
	"time"

	"github.com/siemens/sidekick/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/go-plugger/v3"
	"golang.org/x/exp/slices"
)

// Flag annotation for grouping mutually exclusive flags. Due to the
// open-ended plugin architecture of sidekick we cannot directly use cobra's
// MarkFlagsMutuallyExclusive in plugins, but instead plugins need to
// annotate their flags and we then gather the groups with their flag
// members in order to issue MarkFlagsMutuallyExclusive as necessary.
const MutualFlagGroupAnnotation = "mutually-exclusive-group"

// ModeGroup is the name of an annotation value for flags that should be
// mutually exclusive for controlling what happens after the debug container
// has been created (or whether it gets created at all).
const ModeGroup = "mode"

// Kubeconfig optionally specifies an explicit kubeconfig file to use,
// instead of the usual kubectl lookup rules.
var Kubeconfig string

// ReqTimeout specifies the length of time to wait before giving up on a
// single server request.
var ReqTimeout time.Duration

// rootCmd represents the Cobra "root" command thus the sidekick CLI itself.
var rootCmd = &cobra.Command{
	Use:   "sidekick",
	Short: "Attach ephemeral debug containers to running Kubernetes pods",
	Long: `sidekick is a CLI tool for attaching ephemeral debug containers to running
Kubernetes pods. The debug container is spawned next to an existing target
container, sees the target's (non-subPath) volume mounts, and optionally runs
with the target's security context or as root -- without restarting the pod or
rebuilding any image.`,
	// See: https://github.com/spf13/cobra/issues/340
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Run the registered before-the-command plugins
		for _, beforeCmd := range plugger.Group[cli.BeforeCommand]().Symbols() {
			if err := beforeCmd(cmd); err != nil {
				return err
			}
		}
		return nil
	},
}

// SetupCLI registers the global ("persistent") CLI flags, as well as the
// (sub)commands. The individual commands are registered via a
// plugin-mechanism.
func SetupCLI() *cobra.Command {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&Kubeconfig, "kubeconfig", "",
		"Path to the kubeconfig file to use for cluster access and for the API gateway")
	pf.DurationVar(&ReqTimeout, "request-timeout", 0,
		`The length of time to wait before giving up on a single server request.
Non-zero values should contain a corresponding time unit (e.g. 1s, 2m, 3h).
A value of zero means don't timeout requests.`)

	// Call registered plugins in order to add further CLI args as well as
	// commands to the root command (or below).
	for _, setupCLI := range plugger.Group[cli.SetupCLI]().Symbols() {
		setupCLI(rootCmd)
	}
	// Set groups of mutually exclusive flags as annotated.
	mutuallyExclusives(rootCmd)
	// Fill in/expand command example sections, where additional command
	// examples are available.
	for _, cmd := range rootCmd.Commands() {
		examples := cli.Examples(cmd.Name())
		if examples == "" {
			continue
		}
		cmd.Example = examples
	}

	return rootCmd
}

// ReqContext returns a request context honoring the global --request-timeout
// flag, together with its cancel function.
func ReqContext() (context.Context, context.CancelFunc) {
	if ReqTimeout > 0 {
		return context.WithTimeout(context.Background(), ReqTimeout)
	}
	return context.WithCancel(context.Background())
}

// Annotate annotates the flag identified by name with the key=ann.
func Annotate(fs *pflag.FlagSet, flagname, key, ann string) {
	fs.SetAnnotation(flagname, key, []string{ann})
}

// exclusivesMap maps an "exclusive" group (name) to its mutually exclusive
// flags (names).
type exclusivesMap map[string][]string

// mutuallyExclusives starts with the specified command and collects
// mutually exclusive flags as identified by their annotations. It then
// configures them into their groups. This process then recursively repeats
// with each child command.
func mutuallyExclusives(cmd *cobra.Command) {
	exclusives := exclusivesMap{}
	cmd.MarkFlagsMutuallyExclusive() // hack: trigger merging if not already happened
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		group := flag.Annotations[MutualFlagGroupAnnotation]
		if len(group) != 1 {
			return
		}
		name := flag.Name
		members := exclusives[group[0]]
		if slices.Contains(members, name) {
			return
		}
		exclusives[group[0]] = append(exclusives[group[0]], name)
	})
	for _, members := range exclusives {
		cmd.MarkFlagsMutuallyExclusive(members...)
	}
	for _, subcmd := range cmd.Commands() {
		mutuallyExclusives(subcmd)
	}
}
