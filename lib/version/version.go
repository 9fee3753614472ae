// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the foyer
// binaries.
package version

import "runtime/debug"

// version is stamped at build time via
// -ldflags "-X github.com/foyer-systems/foyer/lib/version.version=v1.2.3".
var version = "dev"

// Info returns the stamped version, falling back to the VCS revision
// recorded in build info for plain "go build" binaries.
func Info() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
				return "dev-" + setting.Value[:12]
			}
		}
	}
	return version
}
