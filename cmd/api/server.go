package main

import (
	"context"
	"net"
	"net/http"
	"time"
)

// newHTTPServer builds the API server. Request contexts derive from a base
// context that Shutdown cancels, so open progress streams return at once
// instead of holding the drain until its deadline.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())

	// No write timeout: progress streams stay open for the whole fast.
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
