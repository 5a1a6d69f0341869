package tableau

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/observability"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

// Somme carries the raw sums of one movement over a set of communes:
// retained provisions, admitted realisations (ordres de recette or mandats)
// and settlements (recouvrements or paiements).
type Somme struct {
	Previsions   float64
	Realisations float64
	Reglements   float64
}

// Repository is the read surface the table builder needs.
type Repository interface {
	ListComptes(ctx context.Context, mouvement plancomptable.TypeMouvement, section plancomptable.SectionBudgetaire) ([]plancomptable.Compte, error)
	GetRecette(ctx context.Context, communeID, exerciceID int64, code string) (*donnees.Recette, error)
	GetDepense(ctx context.Context, communeID, exerciceID int64, code string) (*donnees.Depense, error)

	GetCommune(ctx context.Context, id int64) (*geo.CommuneDetail, error)
	GetRegion(ctx context.Context, id int64) (*geo.Region, error)
	ListCommuneIDsByRegion(ctx context.Context, regionID int64) ([]int64, error)
	GetExercice(ctx context.Context, annee int) (*exercice.Exercice, error)

	SommeRecettes(ctx context.Context, communeIDs []int64, exerciceID int64) (Somme, error)
	SommeDepenses(ctx context.Context, communeIDs []int64, exerciceID int64) (Somme, error)
}

// CacheTableaux caches complete tables per commune and exercice.
type CacheTableaux interface {
	GetComplet(ctx context.Context, communeID, exerciceID int64) (*TableauComplet, bool)
	SetComplet(ctx context.Context, t *TableauComplet)
}

// Service builds the administrative account tables.
type Service struct {
	repo    Repository
	cache   CacheTableaux
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewService(repo Repository, cache CacheTableaux, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

func (s *Service) contexte(ctx context.Context, communeID int64, annee int) (*geo.CommuneDetail, *exercice.Exercice, error) {
	commune, err := s.repo.GetCommune(ctx, communeID)
	if err != nil {
		return nil, nil, err
	}
	ex, err := s.repo.GetExercice(ctx, annee)
	if err != nil {
		return nil, nil, err
	}
	return commune, ex, nil
}

// BuildRecettes builds the receipts table for one commune and exercice,
// both sections, fully rolled up.
func (s *Service) BuildRecettes(ctx context.Context, communeID int64, annee int) (*TableauRecettes, error) {
	commune, ex, err := s.contexte(ctx, communeID, annee)
	if err != nil {
		return nil, err
	}
	return s.buildRecettes(ctx, commune, ex)
}

func (s *Service) buildRecettes(ctx context.Context, commune *geo.CommuneDetail, ex *exercice.Exercice) (*TableauRecettes, error) {
	res := newResolveurRecettes(s.repo, commune.ID, ex.ID)
	t := &TableauRecettes{
		CommuneID:     commune.ID,
		CommuneNom:    commune.Nom,
		ExerciceAnnee: ex.Annee,
	}
	for _, section := range []plancomptable.SectionBudgetaire{plancomptable.SectionFonctionnement, plancomptable.SectionInvestissement} {
		sec, err := s.buildSectionRecettes(ctx, res, section)
		if err != nil {
			return nil, err
		}
		t.Sections = append(t.Sections, sec)
		t.TotalGeneralPrevisions += sec.TotalPrevisionsDefinitives
		t.TotalGeneralOrAdmis += sec.TotalOrAdmis
		t.TotalGeneralRecouvrement += sec.TotalRecouvrement
	}
	t.TauxExecutionGlobal = tauxExecution(t.TotalGeneralOrAdmis, t.TotalGeneralPrevisions)
	return t, nil
}

func (s *Service) buildSectionRecettes(ctx context.Context, res *resolveurRecettes, section plancomptable.SectionBudgetaire) (SectionRecettes, error) {
	comptes, err := s.repo.ListComptes(ctx, plancomptable.MouvementRecette, section)
	if err != nil {
		return SectionRecettes{}, err
	}

	lignes := make([]LigneRecette, 0, len(comptes))
	for _, c := range comptes {
		l, err := res.ligne(ctx, c)
		if err != nil {
			return SectionRecettes{}, err
		}
		lignes = append(lignes, l)
	}

	ptrs := make([]*LigneRecette, len(lignes))
	for i := range lignes {
		ptrs[i] = &lignes[i]
	}
	cumulerParents(ptrs)

	sec := SectionRecettes{Section: section, Titre: titreSection(section), Lignes: lignes}
	for i := range lignes {
		l := &lignes[i]
		if l.Niveau != 1 || !l.EstSommable {
			continue
		}
		sec.TotalBudgetPrimitif += l.BudgetPrimitif
		sec.TotalBudgetAdditionnel += l.BudgetAdditionnel
		sec.TotalModifications += l.Modifications
		sec.TotalPrevisionsDefinitives += l.PrevisionsDefinitives
		sec.TotalOrAdmis += l.OrAdmis
		sec.TotalRecouvrement += l.Recouvrement
		sec.TotalResteARecouvrer += l.ResteARecouvrer
	}
	sec.TauxExecutionGlobal = tauxExecution(sec.TotalOrAdmis, sec.TotalPrevisionsDefinitives)
	return sec, nil
}

// BuildDepenses builds the expenses table for one commune and exercice.
func (s *Service) BuildDepenses(ctx context.Context, communeID int64, annee int) (*TableauDepenses, error) {
	commune, ex, err := s.contexte(ctx, communeID, annee)
	if err != nil {
		return nil, err
	}
	return s.buildDepenses(ctx, commune, ex)
}

func (s *Service) buildDepenses(ctx context.Context, commune *geo.CommuneDetail, ex *exercice.Exercice) (*TableauDepenses, error) {
	res := newResolveurDepenses(s.repo, commune.ID, ex.ID)
	t := &TableauDepenses{
		CommuneID:     commune.ID,
		CommuneNom:    commune.Nom,
		ExerciceAnnee: ex.Annee,
	}
	for _, section := range []plancomptable.SectionBudgetaire{plancomptable.SectionFonctionnement, plancomptable.SectionInvestissement} {
		sec, err := s.buildSectionDepenses(ctx, res, section)
		if err != nil {
			return nil, err
		}
		t.Sections = append(t.Sections, sec)
		t.TotalGeneralPrevisions += sec.TotalPrevisionsDefinitives
		t.TotalGeneralMandatAdmis += sec.TotalMandatAdmis
		t.TotalGeneralPaiement += sec.TotalPaiement
	}
	t.TauxExecutionGlobal = tauxExecution(t.TotalGeneralMandatAdmis, t.TotalGeneralPrevisions)
	return t, nil
}

func (s *Service) buildSectionDepenses(ctx context.Context, res *resolveurDepenses, section plancomptable.SectionBudgetaire) (SectionDepenses, error) {
	comptes, err := s.repo.ListComptes(ctx, plancomptable.MouvementDepense, section)
	if err != nil {
		return SectionDepenses{}, err
	}

	lignes := make([]LigneDepense, 0, len(comptes))
	for _, c := range comptes {
		l, err := res.ligne(ctx, c)
		if err != nil {
			return SectionDepenses{}, err
		}
		lignes = append(lignes, l)
	}

	ptrs := make([]*LigneDepense, len(lignes))
	for i := range lignes {
		ptrs[i] = &lignes[i]
	}
	cumulerParents(ptrs)

	sec := SectionDepenses{Section: section, Titre: titreSection(section), Lignes: lignes}
	for i := range lignes {
		l := &lignes[i]
		if l.Niveau != 1 || !l.EstSommable {
			continue
		}
		sec.TotalBudgetPrimitif += l.BudgetPrimitif
		sec.TotalBudgetAdditionnel += l.BudgetAdditionnel
		sec.TotalModifications += l.Modifications
		sec.TotalPrevisionsDefinitives += l.PrevisionsDefinitives
		sec.TotalEngagement += l.Engagement
		sec.TotalMandatAdmis += l.MandatAdmis
		sec.TotalPaiement += l.Paiement
		sec.TotalResteAPayer += l.ResteAPayer
	}
	sec.TauxExecutionGlobal = tauxExecution(sec.TotalMandatAdmis, sec.TotalPrevisionsDefinitives)
	return sec, nil
}

// BuildEquilibre builds the three-row equilibrium table: fonctionnement,
// investissement, then the grand total.
func (s *Service) BuildEquilibre(ctx context.Context, communeID int64, annee int) (*TableauEquilibre, error) {
	commune, ex, err := s.contexte(ctx, communeID, annee)
	if err != nil {
		return nil, err
	}
	recettes, depenses, err := s.buildTables(ctx, commune, ex)
	if err != nil {
		return nil, err
	}
	return composerEquilibre(commune, ex, recettes, depenses), nil
}

func composerEquilibre(commune *geo.CommuneDetail, ex *exercice.Exercice, recettes *TableauRecettes, depenses *TableauDepenses) *TableauEquilibre {
	eq := &TableauEquilibre{
		CommuneID:     commune.ID,
		CommuneNom:    commune.Nom,
		ExerciceAnnee: ex.Annee,
	}

	total := LigneEquilibre{Libelle: LibelleTotalGeneral}
	for _, section := range []plancomptable.SectionBudgetaire{plancomptable.SectionFonctionnement, plancomptable.SectionInvestissement} {
		l := LigneEquilibre{Libelle: titreSection(section)}
		sec := section
		l.Section = &sec
		for _, sr := range recettes.Sections {
			if sr.Section == section {
				l.RecettesPrevisions = sr.TotalPrevisionsDefinitives
				l.RecettesRealisations = sr.TotalOrAdmis
			}
		}
		for _, sd := range depenses.Sections {
			if sd.Section == section {
				l.DepensesPrevisions = sd.TotalPrevisionsDefinitives
				l.DepensesRealisations = sd.TotalMandatAdmis
			}
		}
		l.SoldePrevisions = l.RecettesPrevisions - l.DepensesPrevisions
		l.SoldeRealisations = l.RecettesRealisations - l.DepensesRealisations

		total.RecettesPrevisions += l.RecettesPrevisions
		total.RecettesRealisations += l.RecettesRealisations
		total.DepensesPrevisions += l.DepensesPrevisions
		total.DepensesRealisations += l.DepensesRealisations

		eq.Lignes = append(eq.Lignes, l)
	}
	total.SoldePrevisions = total.RecettesPrevisions - total.DepensesPrevisions
	total.SoldeRealisations = total.RecettesRealisations - total.DepensesRealisations
	eq.Lignes = append(eq.Lignes, total)
	return eq
}

func (s *Service) buildTables(ctx context.Context, commune *geo.CommuneDetail, ex *exercice.Exercice) (*TableauRecettes, *TableauDepenses, error) {
	var (
		recettes *TableauRecettes
		depenses *TableauDepenses
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recettes, err = s.buildRecettes(gctx, commune, ex)
		return err
	})
	g.Go(func() error {
		var err error
		depenses, err = s.buildDepenses(gctx, commune, ex)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return recettes, depenses, nil
}

// BuildComplet builds the complete administrative account. Results are
// served from the cache when a fresh copy exists for the commune and
// exercice; a rebuild stores its result back.
func (s *Service) BuildComplet(ctx context.Context, communeID int64, annee int) (*TableauComplet, error) {
	commune, ex, err := s.contexte(ctx, communeID, annee)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if t, ok := s.cache.GetComplet(ctx, commune.ID, ex.ID); ok {
			s.metrics.ObserveCacheLookup(true)
			return t, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	start := time.Now()
	recettes, depenses, err := s.buildTables(ctx, commune, ex)
	s.metrics.ObserveTableauBuild(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	t := &TableauComplet{
		CommuneID:       commune.ID,
		CommuneNom:      commune.Nom,
		CommuneCode:     commune.Code,
		RegionNom:       commune.RegionNom,
		ProvinceNom:     commune.ProvinceNom,
		ExerciceID:      ex.ID,
		ExerciceAnnee:   ex.Annee,
		ExerciceCloture: ex.Cloture,
		Recettes:        *recettes,
		Depenses:        *depenses,
		Equilibre:       *composerEquilibre(commune, ex, recettes, depenses),
		GenerationID:    uuid.NewString(),
		DateGeneration:  time.Now().UTC(),
	}
	if s.cache != nil {
		s.cache.SetComplet(ctx, t)
	}
	return t, nil
}
