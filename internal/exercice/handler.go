package exercice

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tahiry-mg/tahiry/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{annee}", h.Get)
	r.Post("/{annee}/cloture", h.Close)
	r.Post("/{annee}/reouverture", h.Reopen)
}

type createExerciceRequest struct {
	Annee     int        `json:"annee" validate:"required,gte=1990,lte=2100"`
	Libelle   *string    `json:"libelle,omitempty" validate:"omitempty,max=50"`
	DateDebut *time.Time `json:"date_debut,omitempty"`
	DateFin   *time.Time `json:"date_fin,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	exercices, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list exercices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, exercices)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	annee, err := strconv.Atoi(chi.URLParam(r, "annee"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "annee invalide")
		return
	}
	e, err := h.service.GetByAnnee(r.Context(), annee)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Exercice non trouvé")
			return
		}
		h.logger.Error("get exercice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createExerciceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	e, err := h.service.Create(r.Context(), req.Annee, req.Libelle, req.DateDebut, req.DateFin)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "Exercice déjà enregistré")
			return
		}
		h.logger.Error("create exercice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, cloture bool) {
	annee, err := strconv.Atoi(chi.URLParam(r, "annee"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "annee invalide")
		return
	}
	var e *Exercice
	if cloture {
		e, err = h.service.Close(r.Context(), annee)
	} else {
		e, err = h.service.Reopen(r.Context(), annee)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Exercice non trouvé")
			return
		}
		h.logger.Error("toggle exercice", slog.Any("error", err), slog.Int("annee", annee))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}
