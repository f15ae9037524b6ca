// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"
)

// enable verbose (debug-level) log output.
var enable bool

func init() {
	plugger.Group[cli.SetupCLI]().Register(VerboseSetupCLI, plugger.WithPlugin("verbose"))
	plugger.Group[cli.BeforeCommand]().Register(VerboseBeforeCommand, plugger.WithPlugin("verbose"))
}

// VerboseSetupCLI registers the “--verbose” CLI flag.
func VerboseSetupCLI(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&enable, "verbose", "v", false, "Enable verbose debug output")
}

// VerboseBeforeCommand enables debug logging when requested via the
// “--verbose” flag.
func VerboseBeforeCommand(*cobra.Command) error {
	// When asked for, enable debug logging.
	if enable {
		log.SetLevel(log.DebugLevel)
		log.Debugf("sidekick version %s", sidekick.SemVersion)
	}
	return nil
}
