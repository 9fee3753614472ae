// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Foyer-admin manages foyer state files from the command line. It
// reads and writes the environment file, inspects provisioning state,
// and can create the admin account without going through the web
// setup flow (for headless or scripted installs).
// Subcommands: status, get, set, provision, version.
package main
