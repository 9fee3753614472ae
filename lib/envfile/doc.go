// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package envfile reads and updates a line-oriented KEY=VALUE
// environment file without disturbing anything it doesn't own.
//
// The file is modeled as an ordered sequence of line records
// (comments, blanks, and key/value pairs) rather than matched with
// per-key patterns against raw text. Updating a key rewrites the
// first record holding it, in place, so surrounding comments and the
// file's overall shape survive every edit. Keys containing characters
// that would be meaningful to a pattern matcher need no escaping:
// matching happens on the parsed key, never on the text.
//
// Writes are read-modify-write over the whole document: the patched
// content is built in memory and installed with a single atomic
// rename. A Store serializes concurrent writers with a mutex, so two
// racing upserts cannot lose updates.
package envfile
