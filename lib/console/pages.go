// Copyright 2026 The Foyer Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"embed"
	"net/http"
)

// The console's three pages. Presentation is deliberately thin: each
// page is a static form whose script talks to the JSON API; all state
// lives server-side.
//
//go:embed pages
var pagesFS embed.FS

var (
	setupPage     = mustPage("pages/setup.html")
	loginPage     = mustPage("pages/login.html")
	dashboardPage = mustPage("pages/dashboard.html")
)

func mustPage(name string) []byte {
	data, err := pagesFS.ReadFile(name)
	if err != nil {
		panic("console: missing embedded page " + name)
	}
	return data
}

func servePage(writer http.ResponseWriter, page []byte) {
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.Write(page)
}
