package geo

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tahiry-mg/tahiry/internal/platform/httpx"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/provinces", h.ListProvinces)
	r.Get("/regions", h.ListRegions)
	r.Get("/communes", h.ListCommunes)
	r.Get("/communes/{id}", h.GetCommune)
}

func (h *Handler) ListProvinces(w http.ResponseWriter, r *http.Request) {
	provinces, err := h.repo.ListProvinces(r.Context())
	if err != nil {
		h.logger.Error("list provinces", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, provinces)
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	var provinceID *int64
	if raw := r.URL.Query().Get("province_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "province_id invalide")
			return
		}
		provinceID = &id
	}
	regions, err := h.repo.ListRegions(r.Context(), provinceID)
	if err != nil {
		h.logger.Error("list regions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, regions)
}

func (h *Handler) ListCommunes(w http.ResponseWriter, r *http.Request) {
	filter := CommuneFilter{Search: r.URL.Query().Get("search"), Limit: 100}
	if raw := r.URL.Query().Get("region_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "region_id invalide")
			return
		}
		filter.RegionID = &id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			filter.Limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	communes, err := h.repo.ListCommunes(r.Context(), filter)
	if err != nil {
		h.logger.Error("list communes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, communes)
}

func (h *Handler) GetCommune(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id invalide")
		return
	}
	commune, err := h.repo.GetCommune(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Commune non trouvée")
			return
		}
		h.logger.Error("get commune", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, commune)
}
