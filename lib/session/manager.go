// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/foyer-systems/foyer/lib/clock"
)

// tokenBytes is the entropy of a session token: 32 random bytes,
// hex-encoded to 64 characters. 256 bits is far beyond guessable.
const tokenBytes = 32

// DefaultTTL applies when NewManager is given a non-positive TTL.
// Long enough that an operator working through a slow setup never
// gets logged out mid-task, short enough that an abandoned token
// dies within a day.
const DefaultTTL = 24 * time.Hour

// Session is one authenticated login.
type Session struct {
	Username  string
	LoginTime time.Time
}

// Manager owns the in-memory token-to-session mapping. Safe for
// concurrent use.
type Manager struct {
	ttl   time.Duration
	clock clock.Clock

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	session   Session
	expiresAt time.Time
}

// NewManager creates a Manager with the given TTL. A non-positive ttl
// selects DefaultTTL. Panics if clk is nil.
func NewManager(ttl time.Duration, clk clock.Clock) *Manager {
	if clk == nil {
		panic("session.NewManager: clock is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		ttl:      ttl,
		clock:    clk,
		sessions: make(map[string]sessionEntry),
	}
}

// Create registers a session for username and returns its token.
// Called only after credential verification succeeds.
func (m *Manager) Create(username string) (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("session: generating token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := m.clock.Now()
	m.mu.Lock()
	m.sessions[token] = sessionEntry{
		session:   Session{Username: username, LoginTime: now},
		expiresAt: now.Add(m.ttl),
	}
	m.mu.Unlock()

	return token, nil
}

// Validate reports whether token identifies a live session. An
// expired entry is removed on the spot.
func (m *Manager) Validate(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, found := m.sessions[token]
	if !found {
		return false
	}
	if !m.clock.Now().Before(entry.expiresAt) {
		delete(m.sessions, token)
		return false
	}
	return true
}

// Revoke removes the session for token. Revoking an unknown token is
// a no-op; logout must be idempotent.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Sweep removes every expired session and returns how many were
// dropped. Validate already removes expired entries lazily; Sweep
// exists so abandoned sessions don't sit in memory until someone
// happens to present their token.
func (m *Manager) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// Count returns the number of live or not-yet-swept sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
