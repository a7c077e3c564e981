package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chango-api/internal/common"
)

// Handler exposes quote endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create computes a quote for the posted cart snapshot.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req Request
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", fieldErrors(err))
			return
		}
	}
	q, err := h.Svc.Quote(r.Context(), req)
	if err != nil {
		appErr := common.NewAppError("INTERNAL", "failed to compute quote", http.StatusInternalServerError, err)
		h.Logger.Error().Err(appErr).Msg("compute quote")
		common.WriteAppError(w, appErr)
		return
	}
	if q.Cached {
		w.Header().Set("X-Quote-Cache", "hit")
	} else {
		w.Header().Set("X-Quote-Cache", "miss")
	}
	common.JSONData(w, http.StatusOK, q)
}

// Stores lists the configured roster in ranking order.
func (h *Handler) Stores(w http.ResponseWriter, _ *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	common.JSONData(w, http.StatusOK, h.Svc.Roster())
}

func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[strings.TrimPrefix(fe.Namespace(), "Request.")] = fe.Tag()
	}
	return out
}
