// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package console is the HTTP boundary of foyer: the thin coordinator
// that routes requests to the config store, identity store, setup
// state machine, and session manager, and signals the supervisor
// after successful mutations.
//
// Which surface a request may reach is decided by the setup state
// machine: before provisioning only the setup form and POST /setup
// are live; afterwards the setup surface answers 403 forever and the
// login and dashboard surfaces open up. Authenticated routes take the
// session token from the X-Session-Id header or the session query
// parameter.
//
// The coordinator holds no state of its own, every decision is a
// delegation, and it is deliberately the least interesting package in
// the module.
package console
