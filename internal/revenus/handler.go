package revenus

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tahiry-mg/tahiry/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	repo     Repository
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{
		logger:   logger,
		repo:     repo,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/totaux", h.Totaux)
}

type createRevenuRequest struct {
	CommuneID    int64   `json:"commune_id" validate:"required,gt=0"`
	ExerciceID   int64   `json:"exercice_id" validate:"required,gt=0"`
	ProjetID     int64   `json:"projet_id" validate:"required,gt=0"`
	TypeRevenu   string  `json:"type_revenu" validate:"required,oneof=ristourne frais_administration redevance autre"`
	MontantPrevu float64 `json:"montant_prevu" validate:"gte=0"`
	MontantRecu  float64 `json:"montant_recu" validate:"gte=0"`
	CompteCode   *string `json:"compte_code,omitempty" validate:"omitempty,max=10"`
	Commentaire  *string `json:"commentaire,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	communeID, exerciceID, ok := h.scope(w, r)
	if !ok {
		return
	}
	revenus, err := h.repo.List(r.Context(), communeID, exerciceID)
	if err != nil {
		h.logger.Error("list revenus", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, revenus)
}

func (h *Handler) Totaux(w http.ResponseWriter, r *http.Request) {
	communeID, exerciceID, ok := h.scope(w, r)
	if !ok {
		return
	}
	totaux, err := h.repo.Totaux(r.Context(), communeID, exerciceID)
	if err != nil {
		h.logger.Error("totaux revenus", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totaux)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRevenuRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rev := RevenuMinier{
		CommuneID:    req.CommuneID,
		ExerciceID:   req.ExerciceID,
		ProjetID:     req.ProjetID,
		TypeRevenu:   TypeRevenu(req.TypeRevenu),
		MontantPrevu: req.MontantPrevu,
		MontantRecu:  req.MontantRecu,
		CompteCode:   req.CompteCode,
		Commentaire:  req.Commentaire,
	}
	id, err := h.repo.Create(r.Context(), rev)
	if err != nil {
		h.logger.Error("create revenu", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	rev.ID = id
	httpx.JSON(w, http.StatusCreated, rev)
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (communeID, exerciceID int64, ok bool) {
	communeID, err := strconv.ParseInt(r.URL.Query().Get("commune_id"), 10, 64)
	if err != nil || communeID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "commune_id requis")
		return 0, 0, false
	}
	exerciceID, err = strconv.ParseInt(r.URL.Query().Get("exercice_id"), 10, 64)
	if err != nil || exerciceID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "exercice_id requis")
		return 0, 0, false
	}
	return communeID, exerciceID, true
}
