package donnees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

// ErrExerciceCloture rejects mutation of records owned by a closed exercice.
var ErrExerciceCloture = errors.New("donnees: exercice clôturé")

// Invalidator drops cached report artifacts for one (commune, exercice)
// after a financial-record mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, communeID, exerciceID int64) error
}

type Service struct {
	repo      Repository
	exercices exercice.Repository
	plan      plancomptable.Repository
	cache     Invalidator
	logger    *slog.Logger
}

func NewService(repo Repository, exercices exercice.Repository, plan plancomptable.Repository, cache Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		exercices: exercices,
		plan:      plan,
		cache:     cache,
		logger:    logger,
	}
}

func (s *Service) ListRecettes(ctx context.Context, communeID, exerciceID int64) ([]Recette, error) {
	return s.repo.ListRecettes(ctx, communeID, exerciceID)
}

func (s *Service) ListDepenses(ctx context.Context, communeID, exerciceID int64) ([]Depense, error) {
	return s.repo.ListDepenses(ctx, communeID, exerciceID)
}

// SaveRecette creates or replaces a receipt row. The owning exercice must be
// open and the compte must be a receipt account.
func (s *Service) SaveRecette(ctx context.Context, rec Recette) (*Recette, error) {
	if err := s.guard(ctx, rec.ExerciceID, rec.CompteCode, plancomptable.MouvementRecette); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpsertRecette(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, rec.CommuneID, rec.ExerciceID)
	return saved, nil
}

// SaveDepense creates or replaces an expense row. The owning exercice must be
// open and the compte must be an expense account.
func (s *Service) SaveDepense(ctx context.Context, dep Depense) (*Depense, error) {
	if err := s.guard(ctx, dep.ExerciceID, dep.CompteCode, plancomptable.MouvementDepense); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpsertDepense(ctx, dep)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, dep.CommuneID, dep.ExerciceID)
	return saved, nil
}

func (s *Service) guard(ctx context.Context, exerciceID int64, compteCode string, mouvement plancomptable.TypeMouvement) error {
	ex, err := s.exercices.Get(ctx, exerciceID)
	if err != nil {
		return fmt.Errorf("donnees: exercice %d: %w", exerciceID, err)
	}
	if ex.Cloture {
		return ErrExerciceCloture
	}
	compte, err := s.plan.FindByCode(ctx, compteCode)
	if err != nil {
		return fmt.Errorf("donnees: compte %q: %w", compteCode, err)
	}
	if compte.TypeMouvement != mouvement {
		return fmt.Errorf("donnees: compte %q n'est pas de type %s", compteCode, mouvement)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, communeID, exerciceID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, communeID, exerciceID); err != nil && s.logger != nil {
		s.logger.Warn("invalidate tableau cache",
			slog.Any("error", err),
			slog.Int64("commune_id", communeID),
			slog.Int64("exercice_id", exerciceID))
	}
}
