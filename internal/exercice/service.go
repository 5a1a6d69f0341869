package exercice

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CacheBumper invalidates derived report caches wholesale. Cached tables
// carry the cloture flag, so close and reopen must drop them everywhere.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo   Repository
	cache  CacheBumper
	logger *slog.Logger
}

func NewService(repo Repository, cache CacheBumper, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Exercice, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByAnnee(ctx context.Context, annee int) (*Exercice, error) {
	return s.repo.GetByAnnee(ctx, annee)
}

// Create registers a new fiscal year. Dates default to the calendar year.
func (s *Service) Create(ctx context.Context, annee int, libelle *string, debut, fin *time.Time) (*Exercice, error) {
	if annee < 1990 || annee > 2100 {
		return nil, fmt.Errorf("exercice: annee %d hors plage", annee)
	}
	e := Exercice{
		Annee:     annee,
		Libelle:   libelle,
		DateDebut: time.Date(annee, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateFin:   time.Date(annee, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	if debut != nil {
		e.DateDebut = *debut
	}
	if fin != nil {
		e.DateFin = *fin
	}
	if !e.DateFin.After(e.DateDebut) {
		return nil, fmt.Errorf("exercice: date_fin doit suivre date_debut")
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

// Close marks the exercice as closed; its financial records become immutable.
func (s *Service) Close(ctx context.Context, annee int) (*Exercice, error) {
	return s.setCloture(ctx, annee, true)
}

// Reopen lifts the immutability of a closed exercice.
func (s *Service) Reopen(ctx context.Context, annee int) (*Exercice, error) {
	return s.setCloture(ctx, annee, false)
}

func (s *Service) setCloture(ctx context.Context, annee int, cloture bool) (*Exercice, error) {
	e, err := s.repo.GetByAnnee(ctx, annee)
	if err != nil {
		return nil, err
	}
	if e.Cloture == cloture {
		return e, nil
	}
	if err := s.repo.SetCloture(ctx, e.ID, cloture); err != nil {
		return nil, err
	}
	e.Cloture = cloture
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("invalidation du cache des tableaux échouée", "error", err)
		}
	}
	return e, nil
}
