package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/greencart/api/responses"
	"github.com/angelmondragon/greencart/internal/availability"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/logger"
)

const (
	envHeader        = "X-GreenCart-Env"
	readyPingTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

type readyResponse struct {
	Status string                `json:"status"`
	Online bool                  `json:"online"`
	Gate   availability.Snapshot `json:"gate"`
	Checks map[string]string     `json:"checks,omitempty"`
}

// HealthReady reports the storage checks and the engine's view of the cart
// service. An unreachable cart service does not make the bridge unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, engine CartEngine, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		resp := readyResponse{Status: "ready", Online: engine.Online(ctx), Gate: engine.Gate().Snapshot()}
		var failed []string
		for _, name := range names {
			if resp.Checks == nil {
				resp.Checks = map[string]string{}
			}
			if err := checks[name].Ping(ctx); err != nil {
				resp.Checks[name] = "error"
				failed = append(failed, name)
				continue
			}
			resp.Checks[name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "storage not ready").
				WithDetails(map[string]any{"failed": failed, "checks": resp.Checks}))
			return
		}
		responses.WriteSuccess(w, resp)
	}
}
