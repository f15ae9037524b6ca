// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import "time"

const (
	// DefaultProxyPort is the local TCP port the API gateway (a kubectl
	// proxy child process) binds to, unless overridden.
	DefaultProxyPort = 8001

	// DefaultGatewayWarmup limits how long to wait for a freshly started
	// API gateway to accept requests before giving up on it.
	DefaultGatewayWarmup = 5 * time.Second

	// DefaultGatewayProbeInterval is the pause between readiness probes of
	// a freshly started API gateway.
	DefaultGatewayProbeInterval = 250 * time.Millisecond

	// DefaultDebugImage is the container image used for sidekick debug
	// containers unless the user picks a different one.
	DefaultDebugImage = "busybox"

	// NamePrefix prefixes the names of all generated sidekick debug
	// containers, followed by a short random suffix.
	NamePrefix = "sidekick-"

	// NameSuffixLen is the length of the random lowercase-alpha suffix of
	// generated debug container names.
	NameSuffixLen = 5
)

// DefaultDebugCommand is the command run in sidekick debug containers
// unless the user specifies a different one.
var DefaultDebugCommand = []string{"sh"}

// DefaultPollPolicy bounds the wait for a freshly added debug container to
// report running: a quick smoke check, not a general wait primitive. Pods
// pulling large debug images may well need longer; the poller then reports
// the still-pending state instead of failing.
var DefaultPollPolicy = PollPolicy{
	Attempts: 10,
	Interval: time.Second,
}
