// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/foyer-systems/foyer/lib/clock"
	"github.com/foyer-systems/foyer/lib/envfile"
	"github.com/foyer-systems/foyer/lib/identity"
	"github.com/foyer-systems/foyer/lib/reload"
	"github.com/foyer-systems/foyer/lib/session"
	"github.com/foyer-systems/foyer/lib/setup"
)

// maxBodySize caps request bodies. Setup and config payloads are a
// handful of short strings; 1 MiB is generous.
const maxBodySize = 1 << 20

// sessionHeader and sessionQueryParameter are where authenticated
// requests carry their token. The header is canonical; the query
// parameter exists for the dashboard page load, which cannot set
// headers on navigation.
const (
	sessionHeader         = "X-Session-Id"
	sessionQueryParameter = "session"
)

// Reserved keys in the setup payload. Everything else in the payload
// is general configuration destined for the environment file.
const (
	fieldAdminUsername = "adminUsername"
	fieldAdminPassword = "adminPassword"
)

// minPasswordLength is enforced server-side. The setup form says the
// same thing, but the form is advisory.
const minPasswordLength = 8

// Handler is the console's http.Handler.
type Handler struct {
	env      *envfile.Store
	admins   *identity.Store
	lock     *setup.Lock
	sessions *session.Manager
	notifier reload.Notifier
	clock    clock.Clock
	logger   *slog.Logger
	mux      *http.ServeMux

	// setupMu serializes handleSetup. Provisioning spans three
	// writes (configuration, administrator, marker); racing
	// submissions must not interleave them, and exactly one may
	// win the terminal transition.
	setupMu sync.Mutex
}

// HandlerConfig configures a Handler. All fields are required except
// Notifier, which defaults to reload.Nop.
type HandlerConfig struct {
	Env      *envfile.Store
	Admins   *identity.Store
	Lock     *setup.Lock
	Sessions *session.Manager
	Notifier reload.Notifier
	Clock    clock.Clock
	Logger   *slog.Logger
}

// NewHandler wires the console routes. Panics on a missing required
// dependency.
func NewHandler(config HandlerConfig) *Handler {
	if config.Env == nil {
		panic("console.NewHandler: Env is required")
	}
	if config.Admins == nil {
		panic("console.NewHandler: Admins is required")
	}
	if config.Lock == nil {
		panic("console.NewHandler: Lock is required")
	}
	if config.Sessions == nil {
		panic("console.NewHandler: Sessions is required")
	}
	if config.Clock == nil {
		panic("console.NewHandler: Clock is required")
	}
	if config.Logger == nil {
		panic("console.NewHandler: Logger is required")
	}
	notifier := config.Notifier
	if notifier == nil {
		notifier = reload.Nop{}
	}

	h := &Handler{
		env:      config.Env,
		admins:   config.Admins,
		lock:     config.Lock,
		sessions: config.Sessions,
		notifier: notifier,
		clock:    config.Clock,
		logger:   config.Logger,
		mux:      http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST /setup", h.handleSetup)
	h.mux.HandleFunc("POST /login", h.handleLogin)
	h.mux.HandleFunc("POST /logout", h.handleLogout)
	h.mux.HandleFunc("GET /dashboard", h.handleDashboard)
	h.mux.HandleFunc("GET /api/config", h.handleConfigGet)
	h.mux.HandleFunc("POST /api/config", h.handleConfigPost)
	h.mux.HandleFunc("GET /healthz", h.handleHealthz)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	h.mux.ServeHTTP(writer, request)
}

// handleIndex serves the surface the state machine allows: the setup
// form before provisioning, the login form after.
func (h *Handler) handleIndex(writer http.ResponseWriter, request *http.Request) {
	if h.lock.Completed() {
		servePage(writer, loginPage)
		return
	}
	servePage(writer, setupPage)
}

// handleSetup performs first-run provisioning: write the general
// configuration, create the administrator, then set the durable
// marker, in that order, so a crash at any step leaves the marker
// absent and the whole submission retryable.
func (h *Handler) handleSetup(writer http.ResponseWriter, request *http.Request) {
	h.setupMu.Lock()
	defer h.setupMu.Unlock()

	if h.lock.Completed() {
		writeError(writer, http.StatusForbidden, "setup already completed")
		return
	}

	payload, ok := decodeStringMap(writer, request)
	if !ok {
		return
	}

	username := payload[fieldAdminUsername]
	password := payload[fieldAdminPassword]
	delete(payload, fieldAdminUsername)
	delete(payload, fieldAdminPassword)

	if username == "" {
		writeError(writer, http.StatusBadRequest, "adminUsername is required")
		return
	}
	if len(password) < minPasswordLength {
		writeError(writer, http.StatusBadRequest, "adminPassword must be at least 8 characters")
		return
	}

	if _, err := h.env.UpsertMany(payload); err != nil {
		if errors.Is(err, envfile.ErrInvalidKey) || errors.Is(err, envfile.ErrInvalidValue) {
			writeError(writer, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("setup: writing configuration failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.admins.Create(username, password, h.clock.Now()); err != nil {
		h.logger.Error("setup: creating administrator failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.lock.Complete(h.clock.Now()); err != nil {
		h.logger.Error("setup: completing marker failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("provisioning completed", "admin", username, "config_keys", len(payload))
	h.notifyReload()
	writeJSON(writer, http.StatusOK, map[string]any{"success": true})
}

// handleLogin verifies credentials and issues a session token.
func (h *Handler) handleLogin(writer http.ResponseWriter, request *http.Request) {
	if !h.lock.Completed() {
		writeError(writer, http.StatusBadRequest, "setup not complete")
		return
	}

	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(writer, request, &credentials) {
		return
	}

	ok, err := h.admins.Verify(credentials.Username, credentials.Password)
	if err != nil {
		// The marker exists but the record is unreadable or
		// missing: corrupt state, not a credential problem.
		h.logger.Error("login: verifying credentials failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(writer, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.sessions.Create(credentials.Username)
	if err != nil {
		h.logger.Error("login: creating session failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("login", "username", credentials.Username)
	writeJSON(writer, http.StatusOK, map[string]any{"success": true, "sessionId": token})
}

// handleLogout revokes the presented token. Idempotent: logging out
// an already-dead session still succeeds.
func (h *Handler) handleLogout(writer http.ResponseWriter, request *http.Request) {
	token := sessionToken(request)
	if token == "" {
		writeError(writer, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.sessions.Revoke(token)
	writeJSON(writer, http.StatusOK, map[string]any{"success": true})
}

// handleDashboard serves the authenticated console page.
func (h *Handler) handleDashboard(writer http.ResponseWriter, request *http.Request) {
	if !h.authorized(request) {
		// HTML surface: plain text, not JSON.
		http.Error(writer, "Unauthorized", http.StatusUnauthorized)
		return
	}
	servePage(writer, dashboardPage)
}

// handleConfigGet returns the full effective configuration mapping.
func (h *Handler) handleConfigGet(writer http.ResponseWriter, request *http.Request) {
	if !h.authorized(request) {
		writeError(writer, http.StatusUnauthorized, "unauthorized")
		return
	}

	mapping, err := h.env.ReadAll()
	if err != nil {
		h.logger.Error("config read failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(writer, http.StatusOK, map[string]any{"config": mapping})
}

// handleConfigPost upserts the submitted keys and signals the
// supervisor when the file actually changed. The response reports
// success as soon as the write is durable; the reload outcome never
// affects it.
func (h *Handler) handleConfigPost(writer http.ResponseWriter, request *http.Request) {
	if !h.authorized(request) {
		writeError(writer, http.StatusUnauthorized, "unauthorized")
		return
	}

	updates, ok := decodeStringMap(writer, request)
	if !ok {
		return
	}

	changed, err := h.env.UpsertMany(updates)
	if err != nil {
		if errors.Is(err, envfile.ErrInvalidKey) || errors.Is(err, envfile.ErrInvalidValue) {
			writeError(writer, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("config update failed", "error", err)
		writeError(writer, http.StatusInternalServerError, err.Error())
		return
	}

	if changed {
		digest, digestErr := h.env.Digest()
		if digestErr != nil {
			digest = "unknown"
		}
		h.logger.Info("configuration updated", "keys", len(updates), "digest", digest)
		h.notifyReload()
	}
	writeJSON(writer, http.StatusOK, map[string]any{"success": true})
}

// handleHealthz reports liveness and the provisioning state. Not
// authenticated: supervisors probe it before any operator exists.
func (h *Handler) handleHealthz(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]any{
		"status":      "ok",
		"provisioned": h.lock.Completed(),
	})
}

// authorized reports whether the request carries a live session token.
func (h *Handler) authorized(request *http.Request) bool {
	return h.sessions.Validate(sessionToken(request))
}

// sessionToken extracts the bearer token from the header or, failing
// that, the query string.
func sessionToken(request *http.Request) string {
	if token := request.Header.Get(sessionHeader); token != "" {
		return token
	}
	return request.URL.Query().Get(sessionQueryParameter)
}

// notifyReload signals the supervisor in the background. The request
// context is about to die with the response, so the notification
// runs under its own context.
func (h *Handler) notifyReload() {
	go h.notifier.ConfigChanged(context.Background())
}

// decodeStringMap decodes a flat JSON object of string values,
// answering 400 itself when the body is malformed.
func decodeStringMap(writer http.ResponseWriter, request *http.Request) (map[string]string, bool) {
	var payload map[string]string
	if !decodeJSON(writer, request, &payload) {
		return nil, false
	}
	if payload == nil {
		payload = map[string]string{}
	}
	return payload, true
}

func decodeJSON(writer http.ResponseWriter, request *http.Request, target any) bool {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
	if err != nil {
		writeError(writer, http.StatusBadRequest, "reading request body failed")
		return false
	}
	if err := json.Unmarshal(body, target); err != nil {
		writeError(writer, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"error": message})
}
