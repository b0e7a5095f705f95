package main

import (
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/imdesk/imclient/pkg/dispatch"
	"github.com/imdesk/imclient/pkg/session"
)

// Exit codes.
const (
	exitSuccess  = 0
	exitRejected = 1
	exitConnErr  = 2
	exitUsage    = 64
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failedColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// consoleNotifier prints attempt results.
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ session.Notifier = (*consoleNotifier)(nil)

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) ConnectionError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	errorColor.Fprintf(n.w, "Connection error: %s\n", message)
}

func (n *consoleNotifier) LoginFailed(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if message == "" {
		message = "login failed"
	}
	failedColor.Fprintf(n.w, "Login failed: %s\n", message)
}

func (n *consoleNotifier) Proceed() {
	n.mu.Lock()
	defer n.mu.Unlock()
	successColor.Fprintln(n.w, "Login successful")
}

// exitCode maps an outcome to the process exit status.
func exitCode(o dispatch.Outcome) int {
	switch o.Kind {
	case dispatch.KindSuccess:
		return exitSuccess
	case dispatch.KindRejected:
		return exitRejected
	default:
		return exitConnErr
	}
}
