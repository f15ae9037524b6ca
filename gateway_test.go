// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package sidekick

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// standin replaces the gateway child process with a harmless stand-in
// process, returning the substituted command for later inspection.
func standin(name string, args ...string) func() *exec.Cmd {
	var cmd *exec.Cmd
	GatewayCommand = func(opts *GatewayOptions) *exec.Cmd {
		cmd = exec.Command(name, args...)
		return cmd
	}
	return func() *exec.Cmd { return cmd }
}

// servePort starts a stand-in gateway endpoint answering all requests with
// the given status and returns its (ephemeral) port.
func servePort(status int) int {
	ln, err := net.Listen("tcp", "localhost:0")
	Expect(err).ShouldNot(HaveOccurred())
	DeferCleanup(func() { ln.Close() })
	go http.Serve(ln, http.HandlerFunc( //nolint:errcheck
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
	return ln.Addr().(*net.TCPAddr).Port
}

// unusedPort returns a port nobody currently listens on.
func unusedPort() int {
	ln, err := net.Listen("tcp", "localhost:0")
	Expect(err).ShouldNot(HaveOccurred())
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

var _ = Describe("API gateway sessions", func() {

	BeforeEach(func() {
		orig := GatewayCommand
		DeferCleanup(func() { GatewayCommand = orig })
	})

	It("opens once the gateway endpoint answers", func() {
		port := servePort(http.StatusOK)
		standin("sleep", "60")
		gw, err := OpenGateway(context.Background(), &GatewayOptions{Port: port})
		Expect(err).ShouldNot(HaveOccurred())
		defer gw.Close()
		Expect(gw.BaseURL()).Should(Equal(fmt.Sprintf("http://localhost:%d", port)))
		clientset, err := gw.Clientset()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(clientset).ShouldNot(BeNil())
	})

	It("reports a gateway process dying during warm-up", func() {
		standin("false")
		_, err := OpenGateway(context.Background(),
			&GatewayOptions{Port: unusedPort(), Warmup: 2 * time.Second})
		Expect(err).Should(HaveOccurred())
		var gwerr *GatewayError
		Expect(errors.As(err, &gwerr)).Should(BeTrue())
	})

	It("refuses a port owned by a foreign listener", func() {
		// A live endpoint on the port while our own gateway child loses
		// the bind race and exits: patching through somebody else's proxy
		// must never be reported as success.
		port := servePort(http.StatusOK)
		standin("sleep", "0.1")
		_, err := OpenGateway(context.Background(),
			&GatewayOptions{Port: port, Warmup: 2 * time.Second})
		Expect(err).Should(HaveOccurred())
		var gwerr *GatewayError
		Expect(errors.As(err, &gwerr)).Should(BeTrue())
		Expect(err.Error()).Should(ContainSubstring("already in use"))
	})

	It("doesn't accept non-success answers as readiness", func() {
		port := servePort(http.StatusServiceUnavailable)
		standin("sleep", "60")
		_, err := OpenGateway(context.Background(),
			&GatewayOptions{Port: port, Warmup: 500 * time.Millisecond})
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).Should(ContainSubstring("answered"))
	})

	It("gives up on a gateway that never answers, leaving no process behind", func() {
		cmd := standin("sleep", "60")
		_, err := OpenGateway(context.Background(),
			&GatewayOptions{Port: unusedPort(), Warmup: 500 * time.Millisecond})
		Expect(err).Should(HaveOccurred())
		var gwerr *GatewayError
		Expect(errors.As(err, &gwerr)).Should(BeTrue())
		Eventually(func() error {
			return cmd().Process.Signal(syscall.Signal(0))
		}).Within(2 * time.Second).ShouldNot(Succeed())
	})

	It("tears down idempotently on every exit path", func() {
		port := servePort(http.StatusOK)
		cmd := standin("sleep", "60")
		gw, err := OpenGateway(context.Background(), &GatewayOptions{Port: port})
		Expect(err).ShouldNot(HaveOccurred())
		gw.Close()
		Eventually(func() error {
			return cmd().Process.Signal(syscall.Signal(0))
		}).Within(2 * time.Second).ShouldNot(Succeed())
		// Closing again must be a silent no-op; every exit path routes
		// here, so double and triple closes are the norm, not the
		// exception.
		gw.Close()
		gw.Close()
	})

})
