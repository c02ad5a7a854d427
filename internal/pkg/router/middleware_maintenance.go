package router

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gocount/dashboard/internal/pkg/config"
)

// middlewareMaintenance answers 503 while app.maintenance.enabled is set, or
// for the route patterns listed in app.maintenance.endpoints. Both are read
// per request so a config file reload takes effect without a restart. /health
// stays reachable.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := matchedRoutePath(r)
			if route != "/health" && underMaintenance(cfg, route) {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func underMaintenance(cfg config.Config, route string) bool {
	if cfg.GetBool("app.maintenance.enabled") {
		return true
	}
	return slices.ContainsFunc(cfg.GetArray("app.maintenance.endpoints"), func(e string) bool {
		return strings.TrimSpace(e) == route
	})
}
