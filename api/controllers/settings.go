package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/farmcart/api/responses"
	"github.com/angelmondragon/farmcart/api/validators"
	"github.com/angelmondragon/farmcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
)

type languageStore interface {
	SetLanguage(ctx context.Context, lang enums.Language) error
	Language(ctx context.Context) enums.Language
}

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

type languageResponse struct {
	Language  enums.Language   `json:"language"`
	Available []enums.Language `json:"available"`
}

func LanguageGet(store languageStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings store unavailable"))
			return
		}
		responses.WriteSuccess(w, languageResponse{Language: store.Language(r.Context()), Available: enums.Languages()})
	}
}

func LanguageSet(store languageStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings store unavailable"))
			return
		}

		var body languageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lang, err := enums.ParseLanguage(body.Language)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported language").
				WithDetails(map[string]any{"available": enums.Languages()}))
			return
		}
		if err := store.SetLanguage(r.Context(), lang); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, languageResponse{Language: lang, Available: enums.Languages()})
	}
}
