// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package reload

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger(buffer *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buffer, nil))
}

func TestExecNotifierRunsCommand(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "touched")
	notifier := NewExecNotifier([]string{"touch", marker}, time.Minute, testLogger(&bytes.Buffer{}))

	notifier.ConfigChanged(context.Background())

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("command did not run: %v", err)
	}
}

func TestExecNotifierFailureIsLoggedNotReturned(t *testing.T) {
	var buffer bytes.Buffer
	notifier := NewExecNotifier([]string{"false"}, time.Minute, testLogger(&buffer))

	// ConfigChanged has no error return; the only observable
	// outcome of a failure is the log line.
	notifier.ConfigChanged(context.Background())

	if !bytes.Contains(buffer.Bytes(), []byte("reload command failed")) {
		t.Errorf("failure not logged: %s", buffer.String())
	}
}

func TestExecNotifierMissingBinary(t *testing.T) {
	var buffer bytes.Buffer
	notifier := NewExecNotifier([]string{"/nonexistent/supervisor"}, time.Minute, testLogger(&buffer))

	notifier.ConfigChanged(context.Background())

	if !bytes.Contains(buffer.Bytes(), []byte("reload command failed")) {
		t.Errorf("missing binary not logged: %s", buffer.String())
	}
}

func TestNewExecNotifierPanicsWithoutCommand(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty command")
		}
	}()
	NewExecNotifier(nil, 0, testLogger(&bytes.Buffer{}))
}

func TestNop(t *testing.T) {
	// Must simply not blow up.
	Nop{}.ConfigChanged(context.Background())
}
