// Package site serves the embedded browser front-end. The page polls
// GET /session and posts taps to /taps.
package site

import (
	"context"
	"net/http"
)

// Register attaches the play page at / to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("/", http.FileServer(FS()))
}
