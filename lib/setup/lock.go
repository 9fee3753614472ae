// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package setup

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/foyer-systems/foyer/lib/atomicfile"
)

// ErrAlreadyCompleted is returned by Complete when the marker already
// exists. The PROVISIONED state is terminal.
var ErrAlreadyCompleted = errors.New("setup: provisioning has already completed")

// Lock is the durable provisioning marker. The marker file's
// existence is the fact; its content is the completion timestamp in
// RFC 3339 form, kept for the status surface.
//
// The check-then-write in Complete is guarded by a mutex so that
// concurrent callers sharing a Lock see the transition fire exactly
// once.
type Lock struct {
	path string
	mu   sync.Mutex
}

// NewLock returns a Lock backed by the marker file at path.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Completed reports whether provisioning has completed. Any error
// statting the marker other than absence is treated as completed:
// refusing to re-open the provisioning surface is the safe failure
// mode when the marker's state is unknowable.
func (l *Lock) Completed() bool {
	_, err := os.Stat(l.path)
	return err == nil || !os.IsNotExist(err)
}

// Complete writes the marker, moving the state machine to
// PROVISIONED. Fails with ErrAlreadyCompleted when the marker exists;
// the transition fires exactly once.
func (l *Lock) Complete(now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Completed() {
		return ErrAlreadyCompleted
	}
	content := now.UTC().Format(time.RFC3339) + "\n"
	if err := atomicfile.Write(l.path, []byte(content), 0600); err != nil {
		return fmt.Errorf("setup: writing marker %s: %w", l.path, err)
	}
	return nil
}

// CompletedAt returns the completion timestamp recorded in the
// marker. The second result is false when provisioning has not
// completed. A marker with unparseable content still counts as
// completed (existence is the fact) but reports a zero time.
func (l *Lock) CompletedAt() (time.Time, bool, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("setup: reading marker %s: %w", l.path, err)
	}

	completed, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, true, nil
	}
	return completed, true, nil
}
