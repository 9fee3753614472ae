// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile writes files atomically: write to a temporary
// file in the target directory, fsync, rename into place, then fsync
// the parent directory. Readers never observe a partial write, and a
// crash mid-write leaves either the old content or the new content,
// never a mixture.
//
// Every durable artifact foyer owns (the environment file, the admin
// identity record, the setup marker) goes through this package.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write atomically replaces the file at path with data. The file is
// created with the given mode when it does not exist; an existing
// file's mode is replaced as well, since the rename installs a fresh
// inode.
//
// The temporary file lives in the same directory as path so the
// rename never crosses a filesystem boundary. On any failure the
// temporary file is removed and the original file is untouched.
func Write(path string, data []byte, mode os.FileMode) error {
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	// Write, sync, close, in that order. If any step fails, remove
	// the temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss
	// between the rename and the OS flushing directory metadata.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}
