package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/stepproxy/internal/ctxlog"
	"github.com/specialistvlad/stepproxy/internal/proxy"
	"github.com/specialistvlad/stepproxy/internal/security"
)

// PermissionsHeader carries the caller's comma separated permissions when
// Config.TrustPermissionsHeader is set.
const PermissionsHeader = "X-Permissions"

// Handler returns the HTTP API: `GET /health` and `GET /checkProjectName`.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /checkProjectName", a.checkProjectNameHandler)
	return mux
}

// healthHandler reports liveness.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// checkProjectNameHandler validates the `value` query parameter as a proxy
// target. Callers hold Config.APIPermissions. The X-Permissions header is
// client controlled and is only honoured when Config.TrustPermissionsHeader
// is set.
func (a *App) checkProjectNameHandler(w http.ResponseWriter, r *http.Request) {
	v := a.CheckProjectName(a.requestPrincipal(r), r.URL.Query().Get("value"))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.FromContext(a.ctx).Error("Failed to write validation response", "error", err)
	}
}

func (a *App) requestPrincipal(r *http.Request) *security.Principal {
	perms := a.config.APIPermissions
	if a.config.TrustPermissionsHeader {
		perms = r.Header.Get(PermissionsHeader)
	}
	return security.NewPrincipal(r.RemoteAddr, security.ParsePermissions(perms)...)
}

// CheckProjectName validates a candidate proxy target.
func (a *App) CheckProjectName(acl security.AccessControlled, value string) proxy.Validation {
	return a.resolver.CheckProjectName(acl, value)
}

// StartHealthCheckServer listens on the configured port and serves Handler
// in the background. It returns the bound address; a zero port picks a free
// one.
func (a *App) StartHealthCheckServer() (string, error) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring health check server.")

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.HealthcheckPort))
	if err != nil {
		return "", fmt.Errorf("failed to listen for health checks: %w", err)
	}

	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return ln.Addr().String(), nil
}

func (a *App) closeHealthCheckServer() error {
	logger := ctxlog.FromContext(a.ctx)

	if a.httpServer == nil {
		logger.Debug("Health check server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
