// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package gateway

import (
	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	"github.com/siemens/sidekick/cli/command"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// ProxyPort specifies the local TCP port the API gateway (a kubectl proxy
// child process) binds to during the mutation phase of a debug session.
var ProxyPort int

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		GatewaySetupCLI, plugger.WithPlugin("gateway"))
	plugger.Group[cli.NewClient]().Register(
		NewGatewayDebugger, plugger.WithPlugin("gateway"))
	plugger.Group[cli.CommandExamples]().Register(
		func() map[string]string {
			return map[string]string{
				"debug": `# Use a different local port for the API gateway.
sidekick debug web-1 --target app --port 8801`,
				"list": `# List the debug containers of pod "web-1" in namespace "prod".
sidekick list -n prod web-1

# Only show the debug container names.
sidekick list web-1 -o name`,
			}
		},
		plugger.WithPlugin("gateway"), plugger.WithPlacement("<"))
}

// GatewaySetupCLI registers the gateway-related CLI flags.
func GatewaySetupCLI(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.IntVarP(&ProxyPort, "port", "p", sidekick.DefaultProxyPort,
		"Local port for the API gateway (kubectl proxy) used when patching the pod")
}

// NewGatewayDebugger returns a debugger client reading through the local
// kubeconfig and mutating through a kubectl proxy gateway session.
func NewGatewayDebugger() (sidekick.Debugger, error) {
	return sidekick.NewDebugger(&sidekick.DebuggerOptions{
		Kubeconfig: command.Kubeconfig,
		Gateway: sidekick.GatewayOptions{
			Port: ProxyPort,
		},
	})
}
