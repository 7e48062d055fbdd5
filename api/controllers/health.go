package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
)

const envHeader = "X-GearMarket-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only while redis answers; drafts and sessions live there.
func HealthReady(cfg *config.Config, redis pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if redis != nil {
			if err := redis.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
