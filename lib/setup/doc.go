// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package setup tracks whether first-run provisioning has completed.
//
// The state machine has two states and one transition: UNPROVISIONED
// (marker file absent) moves to PROVISIONED (marker present) exactly
// once and never back. The marker is written last during
// provisioning, after the configuration and administrator record, so
// a crash at any earlier step leaves the marker absent and the whole
// sequence retryable.
package setup
