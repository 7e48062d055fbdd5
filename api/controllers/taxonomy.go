package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
)

// Taxonomy serves the category tree and enum labels the listing forms are built from.
func Taxonomy(svc gears.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		responses.WriteSuccess(w, svc.Taxonomy())
	}
}
