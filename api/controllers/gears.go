package controllers

import (
	"net/http"

	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/api/validators"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/types"
)

// GearsList relays the filtered, page-numbered listing feed.
func GearsList(svc gears.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := gears.ParseListQuery(r.URL.Query())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.List(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessPage(w, view.Items, types.PageMeta{
			Page:       view.Page,
			PageSize:   view.PageSize,
			TotalCount: view.TotalCount,
			TotalPages: view.TotalPages,
		})
	}
}

// GearDetail forwards the session's token when there is one so the author and
// liked flags come back filled in.
func GearDetail(svc gears.Service, tokens TokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "gearId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := optionalToken(r.Context(), tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Detail(r.Context(), id, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func GearDelete(svc gears.Service, tokens TokenSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "gearId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := requiredToken(r.Context(), tokens)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), token, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}
