// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"strings"

	"github.com/siemens/sidekick"
	"github.com/siemens/sidekick/cli"
	"github.com/thediveo/go-plugger/v3"
)

// NewDebugger returns a suitable debugger client by asking the registered
// client factories one after another until the first one returns a client
// or an error.
func NewDebugger() (sidekick.Debugger, error) {
	for _, newClient := range plugger.Group[cli.NewClient]().Symbols() {
		dbg, err := newClient()
		if err != nil {
			return nil, err
		}
		if dbg != nil {
			return dbg, nil
		}
	}
	plugins := strings.Join(plugger.Group[cli.NewClient]().Plugins(), ", ")
	if plugins == "" {
		plugins = "(none)"
	}
	return nil, errors.New("no suitable debugger client; available clients: " + plugins)
}
