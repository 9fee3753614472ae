// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package reload notifies the external process supervisor that the
// configuration changed and the host application should restart.
//
// The notification is strictly fire-and-forget: by the time it runs,
// the configuration write has already committed durably, so a failed
// or slow supervisor must never surface as a failed config update.
// Failures are logged and dropped.
package reload

import (
	"context"
	"log/slog"
	"os/exec"
	"time"
)

// Notifier is the "configuration changed" collaborator. The console
// calls ConfigChanged after every durable write that altered content.
type Notifier interface {
	ConfigChanged(ctx context.Context)
}

// defaultTimeout bounds the supervisor command. A restart command
// that takes longer than this is wedged, not slow.
const defaultTimeout = 60 * time.Second

// ExecNotifier runs a supervisor command (for example
// ["pm2", "restart", "all"] or ["systemctl", "restart", "app"]).
type ExecNotifier struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecNotifier creates a notifier for the given argv. A zero
// timeout selects the default. Panics if command is empty or logger
// is nil; deployments with no supervisor use Nop instead.
func NewExecNotifier(command []string, timeout time.Duration, logger *slog.Logger) *ExecNotifier {
	if len(command) == 0 {
		panic("reload.NewExecNotifier: command is required")
	}
	if logger == nil {
		panic("reload.NewExecNotifier: logger is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ExecNotifier{command: command, timeout: timeout, logger: logger}
}

// ConfigChanged runs the supervisor command, bounded by the
// notifier's timeout. The command's outcome is logged, never
// returned: the caller's write already succeeded.
func (n *ExecNotifier) ConfigChanged(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	command := exec.CommandContext(ctx, n.command[0], n.command[1:]...)
	output, err := command.CombinedOutput()
	if err != nil {
		n.logger.Error("reload command failed",
			"command", n.command,
			"error", err,
			"output", string(output),
		)
		return
	}
	n.logger.Info("reload signaled", "command", n.command)
}

// Nop is a Notifier that does nothing. Used in tests and on hosts
// with no supervisor wired up.
type Nop struct{}

func (Nop) ConfigChanged(context.Context) {}
