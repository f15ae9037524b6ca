// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Owns the local API gateway: a kubectl proxy child process giving us a
// locally reachable, already authenticated HTTP endpoint onto the cluster
// API server for the duration of a debug session. The gateway is the
// dominant resource-safety concern of the whole tool: whatever else goes
// wrong, the child process must be torn down exactly once on every exit
// path, including interruption by signals.

package sidekick

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// GatewayCommand builds the gateway child process command. It is a
// package-level variable so tests can substitute a harmless stand-in
// process for the real kubectl proxy.
var GatewayCommand = func(opts *GatewayOptions) *exec.Cmd {
	args := []string{"proxy", fmt.Sprintf("--port=%d", opts.Port)}
	if opts.Kubeconfig != "" {
		args = append(args, "--kubeconfig", opts.Kubeconfig)
	}
	return exec.Command("kubectl", args...)
}

// Gateway is an open API gateway session, owning the background proxy
// child process for its lifetime.
type Gateway struct {
	port      int
	cmd       *exec.Cmd
	done      chan struct{} // closed once the child process has exited
	closeOnce sync.Once
}

// OpenGateway starts the local API gateway and waits for it to accept
// requests. Instead of sleeping a fixed time and hoping for the best, the
// fresh gateway is probed until it answers or the warm-up budget runs out;
// a gateway child process that dies during warm-up (port already taken,
// invalid credentials) is reported right away. On any error no child
// process is left behind.
func OpenGateway(ctx context.Context, opts *GatewayOptions) (*Gateway, error) {
	if opts == nil {
		opts = &GatewayOptions{}
	}
	o := *opts
	if o.Port == 0 {
		o.Port = DefaultProxyPort
	}
	if o.Warmup == 0 {
		o.Warmup = DefaultGatewayWarmup
	}
	cmd := GatewayCommand(&o)
	if err := cmd.Start(); err != nil {
		return nil, &GatewayError{Port: o.Port, Err: err}
	}
	gw := &Gateway{
		port: o.Port,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go func() {
		defer close(gw.done)
		if err := cmd.Wait(); err != nil {
			log.Debugf("API gateway process ended: %s", err.Error())
		}
	}()
	log.Debugf("API gateway starting on port %d (pid %d)", o.Port, cmd.Process.Pid)
	if err := gw.warmup(ctx, o.Warmup); err != nil {
		gw.Close()
		return nil, &GatewayError{Port: o.Port, Err: err}
	}
	return gw, nil
}

// warmup probes the gateway endpoint until it answers with success, the
// budget is exhausted, or the gateway child process dies. An answering
// endpoint alone doesn't prove our gateway: the port may be owned by a
// foreign listener -- say, another kubectl proxy pointed at a different
// cluster -- with our own child losing the bind race and exiting in
// consequence. A successful probe therefore only counts if the child also
// outlives it by a grace period; patching a pod through somebody else's
// proxy must never happen, as the ephemeral container patch cannot be
// taken back.
func (gw *Gateway) warmup(ctx context.Context, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	client := &http.Client{Timeout: DefaultGatewayProbeInterval}
	for {
		select {
		case <-gw.done:
			return fmt.Errorf("gateway process died during warm-up; is port %d already in use?", gw.port)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		probeErr := gw.probe(client)
		if probeErr == nil {
			select {
			case <-gw.done:
				return fmt.Errorf("gateway process died during warm-up; is port %d already in use?", gw.port)
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(DefaultGatewayProbeInterval):
			}
			log.Debugf("API gateway on port %d is ready", gw.port)
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("gateway did not become ready within %s: %w", budget, probeErr)
		}
		time.Sleep(DefaultGatewayProbeInterval)
	}
}

// probe issues a single readiness probe against the gateway endpoint,
// accepting only success-class answers.
func (gw *Gateway) probe(client *http.Client) error {
	resp, err := client.Get(gw.BaseURL() + "/version")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("gateway endpoint answered %s", resp.Status)
	}
	return nil
}

// BaseURL returns the local HTTP endpoint of this gateway session.
func (gw *Gateway) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d", gw.port)
}

// Clientset returns a cluster API client talking through this gateway
// session. The gateway already carries the authentication, so the client
// configuration is just the local endpoint.
func (gw *Gateway) Clientset() (kubernetes.Interface, error) {
	return kubernetes.NewForConfig(&rest.Config{Host: gw.BaseURL()})
}

// Close terminates the gateway child process and waits for it to be gone.
// Close is idempotent, so it can (and should) be routed in from every exit
// path: deferred returns, error bail-outs, and signal handlers alike.
func (gw *Gateway) Close() {
	gw.closeOnce.Do(func() {
		log.Debugf("closing API gateway on port %d", gw.port)
		select {
		case <-gw.done:
			return // child already gone
		default:
		}
		if err := gw.cmd.Process.Kill(); err != nil {
			// Never mask whatever error routed us here; just log.
			log.Errorf("cannot terminate API gateway process: %s", err.Error())
			return
		}
		<-gw.done
	})
}

// CloseOnSignals arranges for the gateway to be torn down when the process
// receives an interrupt or termination signal, exiting with the given
// code. Register it immediately after opening the gateway.
func (gw *Gateway) CloseOnSignals(exitcode int) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-sigs
		if !ok {
			return
		}
		log.Debugf("received %s, tearing down API gateway", sig)
		gw.Close()
		os.Exit(exitcode)
	}()
}
