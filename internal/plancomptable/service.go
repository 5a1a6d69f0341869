package plancomptable

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// CacheBumper invalidates derived report caches wholesale. A chart change
// affects tables across every commune and exercice, so targeted deletes do
// not apply here.
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

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("invalidation du cache des tableaux échouée", "error", err)
	}
}

func (s *Service) ListActive(ctx context.Context, mouvement TypeMouvement, section SectionBudgetaire) ([]Compte, error) {
	return s.repo.ListActive(ctx, mouvement, section)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Compte, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) FindByCode(ctx context.Context, code string) (*Compte, error) {
	return s.repo.FindByCode(ctx, code)
}

// Create validates the hierarchical contract before inserting: a non-root
// account must reference a parent one level shallower in the same movement
// and section, and its code must extend the parent code by exactly one
// character. Aggregation silently skips lines that break this contract, so
// it is enforced here, at entry time.
func (s *Service) Create(ctx context.Context, c Compte) (*Compte, error) {
	c.Code = strings.TrimSpace(c.Code)
	c.Intitule = strings.TrimSpace(c.Intitule)
	if c.Code == "" || c.Intitule == "" {
		return nil, fmt.Errorf("plancomptable: code et intitulé obligatoires")
	}
	if c.Niveau < 1 || c.Niveau > 3 {
		return nil, fmt.Errorf("plancomptable: niveau %d hors plage 1-3", c.Niveau)
	}
	if !c.TypeMouvement.Valid() {
		return nil, fmt.Errorf("plancomptable: type_mouvement %q inconnu", c.TypeMouvement)
	}
	if !c.Section.Valid() {
		return nil, fmt.Errorf("plancomptable: section %q inconnue", c.Section)
	}
	if err := s.checkParent(ctx, c); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	s.bumpCache(ctx)
	return &c, nil
}

func (s *Service) checkParent(ctx context.Context, c Compte) error {
	if c.Niveau == 1 {
		if c.ParentCode != nil && *c.ParentCode != "" {
			return fmt.Errorf("plancomptable: un compte de niveau 1 n'a pas de parent")
		}
		return nil
	}
	if c.ParentCode == nil || *c.ParentCode == "" {
		return fmt.Errorf("plancomptable: parent_code obligatoire au niveau %d", c.Niveau)
	}
	parent, err := s.repo.FindByCode(ctx, *c.ParentCode)
	if err != nil {
		return fmt.Errorf("plancomptable: parent %q introuvable", *c.ParentCode)
	}
	if parent.Niveau != c.Niveau-1 {
		return fmt.Errorf("plancomptable: parent %q au niveau %d, attendu %d", parent.Code, parent.Niveau, c.Niveau-1)
	}
	if parent.TypeMouvement != c.TypeMouvement || parent.Section != c.Section {
		return fmt.Errorf("plancomptable: parent %q d'un autre type ou d'une autre section", parent.Code)
	}
	if !strings.HasPrefix(c.Code, parent.Code) || len(c.Code) != len(parent.Code)+1 {
		return fmt.Errorf("plancomptable: le code %q doit prolonger %q d'un caractère", c.Code, parent.Code)
	}
	return nil
}

// Update modifies the mutable fields of a compte (intitulé, sommable,
// display order, active flag). Code, level and hierarchy are immutable.
func (s *Service) Update(ctx context.Context, code string, c Compte) (*Compte, error) {
	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Intitule) == "" {
		c.Intitule = existing.Intitule
	}
	if err := s.repo.Update(ctx, code, c); err != nil {
		return nil, err
	}
	s.bumpCache(ctx)
	return s.repo.FindByCode(ctx, code)
}
