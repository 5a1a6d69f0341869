package donnees

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
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
	r.Get("/recettes", h.ListRecettes)
	r.Put("/recettes", h.SaveRecette)
	r.Get("/depenses", h.ListDepenses)
	r.Put("/depenses", h.SaveDepense)
}

func (h *Handler) ListRecettes(w http.ResponseWriter, r *http.Request) {
	communeID, exerciceID, ok := h.scope(w, r)
	if !ok {
		return
	}
	recettes, err := h.service.ListRecettes(r.Context(), communeID, exerciceID)
	if err != nil {
		h.logger.Error("list recettes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, recettes)
}

func (h *Handler) ListDepenses(w http.ResponseWriter, r *http.Request) {
	communeID, exerciceID, ok := h.scope(w, r)
	if !ok {
		return
	}
	depenses, err := h.service.ListDepenses(r.Context(), communeID, exerciceID)
	if err != nil {
		h.logger.Error("list depenses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, depenses)
}

func (h *Handler) SaveRecette(w http.ResponseWriter, r *http.Request) {
	var req saveRecetteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.service.SaveRecette(r.Context(), Recette{
		CommuneID:             req.CommuneID,
		ExerciceID:            req.ExerciceID,
		CompteCode:            req.CompteCode,
		BudgetPrimitif:        req.BudgetPrimitif,
		BudgetAdditionnel:     req.BudgetAdditionnel,
		Modifications:         req.Modifications,
		PrevisionsDefinitives: req.PrevisionsDefinitives,
		OrAdmis:               req.OrAdmis,
		Recouvrement:          req.Recouvrement,
		ResteARecouvrer:       req.ResteARecouvrer,
		Commentaire:           req.Commentaire,
	})
	if err != nil {
		h.respondSaveError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) SaveDepense(w http.ResponseWriter, r *http.Request) {
	var req saveDepenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "corps JSON invalide")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.service.SaveDepense(r.Context(), Depense{
		CommuneID:             req.CommuneID,
		ExerciceID:            req.ExerciceID,
		CompteCode:            req.CompteCode,
		BudgetPrimitif:        req.BudgetPrimitif,
		BudgetAdditionnel:     req.BudgetAdditionnel,
		Modifications:         req.Modifications,
		PrevisionsDefinitives: req.PrevisionsDefinitives,
		Engagement:            req.Engagement,
		MandatAdmis:           req.MandatAdmis,
		Paiement:              req.Paiement,
		ResteAPayer:           req.ResteAPayer,
		Programme:             req.Programme,
		Commentaire:           req.Commentaire,
	})
	if err != nil {
		h.respondSaveError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) respondSaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExerciceCloture):
		httpx.Problem(w, http.StatusConflict, "Exercice Closed", "L'exercice est clôturé; rouvrez-le avant modification")
	case errors.Is(err, exercice.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Exercice non trouvé")
	case errors.Is(err, plancomptable.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Compte non trouvé")
	default:
		h.logger.Error("save donnee", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
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
