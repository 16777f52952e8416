package controllers

import (
	"net/http"

	"github.com/angelmondragon/greencart/api/responses"
	"github.com/angelmondragon/greencart/api/validators"
	"github.com/angelmondragon/greencart/internal/availability"
	"github.com/angelmondragon/greencart/pkg/logger"
)

type connectivityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

type connectivityResponse struct {
	Online bool                  `json:"online"`
	Gate   availability.Snapshot `json:"gate"`
}

func ConnectivityGet(engine CartEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, connectivityResponse{Online: engine.Online(r.Context()), Gate: engine.Gate().Snapshot()})
	}
}

// ConnectivitySet flips the device's online signal, as a browser's
// online/offline events would.
func ConnectivitySet(engine CartEngine, sw ConnectivitySwitch, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload connectivityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sw.Set(*payload.Online)
		ctx := logg.WithField(r.Context(), "online", *payload.Online)
		logg.Info(ctx, "connectivity.changed")
		responses.WriteSuccess(w, connectivityResponse{Online: sw.Online(ctx), Gate: engine.Gate().Snapshot()})
	}
}
