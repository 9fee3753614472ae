// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerServesAndShutsDown(t *testing.T) {
	server := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNoContent)
		}),
		Logger: discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve(ctx) }()

	select {
	case <-server.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	response, err := http.Get("http://" + server.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", response.StatusCode)
	}

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Errorf("Serve returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancel")
	}
}

func TestServerListenFailure(t *testing.T) {
	server := NewServer(ServerConfig{
		Address: "256.0.0.1:0",
		Handler: http.NotFoundHandler(),
		Logger:  discardLogger(),
	})
	if err := server.Serve(context.Background()); err == nil {
		t.Fatal("Serve succeeded with an unroutable listen address")
	}
}

func TestNewServerPanicsOnMissingConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewServer accepted an empty address")
		}
	}()
	NewServer(ServerConfig{Handler: http.NotFoundHandler(), Logger: discardLogger()})
}
