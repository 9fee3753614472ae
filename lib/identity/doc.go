// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity persists the single administrator record created
// during first-run provisioning and verifies login credentials
// against it.
//
// The record is written exactly once; the setup state machine in the
// caller is what makes Create unreachable afterwards, not this
// package. Passwords are hashed with argon2id using a per-record
// random salt; verification recomputes the hash with the stored
// parameters and compares in constant time.
package identity
