// Package httpserver exposes the assistant over HTTP: stateless chat and
// synthesis endpoints mirroring the orchestrator's pipeline stages, plus a
// text path into the running conversation.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server bundles the router and its HTTP listener.
type Server struct {
	echo   *echo.Echo
	server *http.Server
}

// New constructs the HTTP server with all routes registered.
func New(addr string, handlers Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	handlers.Register(e)

	return &Server{
		echo: e,
		server: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(e, "voxchat.http"),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start listens until Shutdown or a listener error. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
