package app

import (
	"context"
	"net"
	"net/http"
)

// NewServer wraps handler in an http.Server whose request contexts are cancelled
// when Shutdown starts, so long-lived change streams end instead of holding it open.
func NewServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:        addr,
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return base },
	}
	server.RegisterOnShutdown(cancel)
	return server
}
