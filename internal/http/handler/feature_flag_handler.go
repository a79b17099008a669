package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nyctonit/feature-flags-service/internal/http/response"
	"github.com/Nyctonit/feature-flags-service/internal/repository"
	"github.com/Nyctonit/feature-flags-service/internal/service"
)

type FeatureFlagHandler struct {
	svc service.FeatureFlagService
}

func NewFeatureFlagHandler(svc service.FeatureFlagService) *FeatureFlagHandler {
	return &FeatureFlagHandler{svc: svc}
}

func (h *FeatureFlagHandler) CreateFlag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name              string   `json:"name"`
		Enabled           *bool    `json:"enabled"`
		RolloutPercentage *float64 `json:"rollout_percentage"`
		Description       string   `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	flag, err := h.svc.CreateFlag(r.Context(), service.CreateFlagInput{
		Name:              body.Name,
		Enabled:           body.Enabled,
		RolloutPercentage: body.RolloutPercentage,
		Description:       body.Description,
	})
	if err != nil {
		writeFlagError(w, r, err, "failed to create feature flag")
		return
	}
	response.JSON(w, r, http.StatusCreated, flag)
}

func (h *FeatureFlagHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.svc.ListFlags(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list feature flags", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"items": flags})
}

func (h *FeatureFlagHandler) GetFlag(w http.ResponseWriter, r *http.Request) {
	flag, err := h.svc.GetFlag(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeFlagError(w, r, err, "failed to load feature flag")
		return
	}
	response.JSON(w, r, http.StatusOK, flag)
}

func (h *FeatureFlagHandler) UpdateFlag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled           *bool    `json:"enabled"`
		RolloutPercentage *float64 `json:"rollout_percentage"`
		Description       *string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	flag, err := h.svc.UpdateFlag(r.Context(), chi.URLParam(r, "name"), service.UpdateFlagInput{
		Enabled:           body.Enabled,
		RolloutPercentage: body.RolloutPercentage,
		Description:       body.Description,
	})
	if err != nil {
		writeFlagError(w, r, err, "failed to update feature flag")
		return
	}
	response.JSON(w, r, http.StatusOK, flag)
}

func (h *FeatureFlagHandler) DeleteFlag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFlag(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeFlagError(w, r, err, "failed to delete feature flag")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

func (h *FeatureFlagHandler) EvaluateOne(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.EvaluateFlag(r.Context(), chi.URLParam(r, "flag_name"), chi.URLParam(r, "user_id"))
	if err != nil {
		writeFlagError(w, r, err, "failed to evaluate feature flag")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *FeatureFlagHandler) EvaluateAll(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	results, err := h.svc.EvaluateAll(r.Context(), userID)
	if err != nil {
		writeFlagError(w, r, err, "failed to evaluate feature flags")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"user_id": userID, "flags": results})
}

// writeFlagError maps the service error taxonomy onto HTTP codes. Every
// failure is scoped to the one request.
func writeFlagError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", verr.Error(), map[string]string{verr.Field: verr.Message})
	case errors.Is(err, repository.ErrFeatureFlagNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "feature flag not found", nil)
	case errors.Is(err, repository.ErrFeatureFlagExists):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "feature flag already exists", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
