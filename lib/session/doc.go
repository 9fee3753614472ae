// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package session issues and validates the opaque bearer tokens that
// guard the authenticated console.
//
// Sessions live only in process memory. A restart, including the
// supervisor restart that follows a configuration change, clears
// every session and operators log in again. That is a deliberate
// trade: the token never touches disk, and there is no stale-session
// state to reconcile after the host application reloads.
//
// Tokens carry a TTL and can be revoked explicitly (logout). Expired
// entries are dropped lazily on access and in bulk by Sweep, which
// the daemon runs periodically.
package session
