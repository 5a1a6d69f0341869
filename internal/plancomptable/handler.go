package plancomptable

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

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
	r.Get("/{code}", h.Get)
	r.Put("/{code}", h.Update)
}

type createCompteRequest struct {
	Code           string  `json:"code" validate:"required,max=10,alphanum"`
	Intitule       string  `json:"intitule" validate:"required,max=255"`
	Niveau         int     `json:"niveau" validate:"required,gte=1,lte=3"`
	TypeMouvement  string  `json:"type_mouvement" validate:"required,oneof=recette depense"`
	Section        string  `json:"section" validate:"required,oneof=fonctionnement investissement"`
	ParentCode     *string `json:"parent_code,omitempty" validate:"omitempty,max=10"`
	EstSommable    *bool   `json:"est_sommable,omitempty"`
	OrdreAffichage *int    `json:"ordre_affichage,omitempty" validate:"omitempty,gte=0"`
}

type updateCompteRequest struct {
	Intitule       string `json:"intitule" validate:"omitempty,max=255"`
	EstSommable    *bool  `json:"est_sommable,omitempty"`
	OrdreAffichage *int   `json:"ordre_affichage,omitempty" validate:"omitempty,gte=0"`
	Actif          *bool  `json:"actif,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if raw := r.URL.Query().Get("type_mouvement"); raw != "" {
		m := TypeMouvement(raw)
		if !m.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type_mouvement invalide")
			return
		}
		filter.Mouvement = &m
	}
	if raw := r.URL.Query().Get("section"); raw != "" {
		s := SectionBudgetaire(raw)
		if !s.Valid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "section invalide")
			return
		}
		filter.Section = &s
	}
	if raw := r.URL.Query().Get("niveau"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 3 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "niveau invalide")
			return
		}
		filter.Niveau = &n
	}
	if raw := r.URL.Query().Get("actif"); raw != "" {
		actif := raw == "true"
		filter.Actif = &actif
	}
	comptes, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list plan comptable", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, comptes)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	compte, err := h.service.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Compte non trouvé")
			return
		}
		h.logger.Error("get compte", slog.Any("error", err), slog.String("code", code))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, compte)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sommable := true
	if req.EstSommable != nil {
		sommable = *req.EstSommable
	}
	compte, err := h.service.Create(r.Context(), Compte{
		Code:           req.Code,
		Intitule:       req.Intitule,
		Niveau:         req.Niveau,
		TypeMouvement:  TypeMouvement(req.TypeMouvement),
		Section:        SectionBudgetaire(req.Section),
		ParentCode:     req.ParentCode,
		EstSommable:    sommable,
		OrdreAffichage: req.OrdreAffichage,
		Actif:          true,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "Code déjà utilisé")
			return
		}
		if strings.HasPrefix(err.Error(), "plancomptable:") {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("create compte", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, compte)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req updateCompteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	existing, err := h.service.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Compte non trouvé")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	next := *existing
	if req.Intitule != "" {
		next.Intitule = req.Intitule
	}
	if req.EstSommable != nil {
		next.EstSommable = *req.EstSommable
	}
	if req.OrdreAffichage != nil {
		next.OrdreAffichage = req.OrdreAffichage
	}
	if req.Actif != nil {
		next.Actif = *req.Actif
	}
	compte, err := h.service.Update(r.Context(), code, next)
	if err != nil {
		h.logger.Error("update compte", slog.Any("error", err), slog.String("code", code))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, compte)
}
