// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly.
//
// Session expiry and the periodic expiry sweep are the only
// time-dependent behaviors in foyer, so the interface is deliberately
// small: Now for deadline checks, NewTicker for the sweep loop.
package clock
