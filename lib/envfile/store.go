// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package envfile

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/foyer-systems/foyer/lib/atomicfile"
)

// fileMode for the environment file. It holds credentials, so owner
// read/write only.
const fileMode = 0600

// Store is the durable environment file. All access goes through the
// Store: reads parse the file fresh (external restarts may have
// changed it), and the read-modify-write sequence of UpsertMany is
// serialized by a mutex so concurrent requests cannot lose updates.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store for the environment file at path. The file
// need not exist yet; UpsertMany creates it on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the environment file location.
func (s *Store) Path() string { return s.path }

// ReadAll parses the environment file into its effective key/value
// mapping. Comments, blanks, and malformed lines are skipped. Fails
// when the file cannot be read, including when it does not exist;
// a missing file at read time means the host application was never
// installed, which the caller should hear about.
func (s *Store) ReadAll() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file %s: %w", s.path, err)
	}
	return Parse(data).All(), nil
}

// UpsertMany applies every update to the file: existing keys are
// rewritten in place, absent keys are appended. The patched content
// is built entirely in memory and installed with one atomic write, so
// a failure part-way leaves the previous content intact. Updates are
// applied in sorted key order so appended lines land in a
// deterministic order.
//
// Returns whether the file content actually changed. Re-applying the
// same updates is a no-op: the content digest is compared before and
// after patching, and an unchanged document is not rewritten. Callers
// use the changed result to skip the supervisor reload when nothing
// moved.
//
// A missing file is treated as empty and created by the write; this
// keeps a half-provisioned host retryable.
func (s *Store) UpsertMany(updates map[string]string) (changed bool, err error) {
	if len(updates) == 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("reading environment file %s: %w", s.path, err)
	}

	document := Parse(data)

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := document.Upsert(key, updates[key]); err != nil {
			return false, fmt.Errorf("upserting %q: %w", key, err)
		}
	}

	patched := document.Serialize()
	if blake3.Sum256(patched) == blake3.Sum256(data) {
		return false, nil
	}

	if err := atomicfile.Write(s.path, patched, fileMode); err != nil {
		return false, fmt.Errorf("writing environment file %s: %w", s.path, err)
	}
	return true, nil
}

// Digest returns the blake3 digest of the current file content,
// hex-style short form for logging. A missing file digests as empty
// content.
func (s *Store) Digest() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading environment file %s: %w", s.path, err)
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:8]), nil
}
