package tableau

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Complet)
	r.Get("/recettes", h.Recettes)
	r.Get("/depenses", h.Depenses)
	r.Get("/equilibre", h.Equilibre)
	r.Get("/resume", h.Resume)
	r.Get("/comparaison", h.Comparaison)
	r.Get("/statistiques/region/{regionID}", h.StatistiquesRegion)
	r.Get("/export.csv", h.ExportCSV)
}

func (h *Handler) Complet(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.BuildComplet(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Recettes(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.BuildRecettes(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Depenses(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.BuildDepenses(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Equilibre(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.BuildEquilibre(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Resume(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) Comparaison(w http.ResponseWriter, r *http.Request) {
	communeID, ok := h.queryInt64(w, r, "commune_id")
	if !ok {
		return
	}
	annee1, ok := h.queryInt(w, r, "annee1")
	if !ok {
		return
	}
	annee2, ok := h.queryInt(w, r, "annee2")
	if !ok {
		return
	}
	c, err := h.svc.Comparaison(r.Context(), communeID, annee1, annee2)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) StatistiquesRegion(w http.ResponseWriter, r *http.Request) {
	regionID, err := strconv.ParseInt(chi.URLParam(r, "regionID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Identifiant de région invalide")
		return
	}
	annee, ok := h.queryInt(w, r, "annee")
	if !ok {
		return
	}
	stats, err := h.svc.StatistiquesRegion(r.Context(), regionID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (communeID int64, annee int, ok bool) {
	communeID, ok = h.queryInt64(w, r, "commune_id")
	if !ok {
		return 0, 0, false
	}
	annee, ok = h.queryInt(w, r, "annee")
	if !ok {
		return 0, 0, false
	}
	return communeID, annee, true
}

func (h *Handler) queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || v <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Paramètre "+name+" requis et positif")
		return 0, false
	}
	return v, true
}

func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "Paramètre "+name+" requis et positif")
		return 0, false
	}
	return v, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Commune ou région non trouvée")
	case errors.Is(err, exercice.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Exercice non trouvé")
	default:
		httpx.RespondError(w, err)
	}
}
