package controllers

import (
	"net/http"

	"github.com/angelmondragon/greencart/api/responses"
	"github.com/angelmondragon/greencart/pkg/logger"
)

func Checkout(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := engine.Checkout(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
