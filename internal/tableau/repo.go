package tableau

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

// repository satisfies Repository by composing the domain repositories and
// running the aggregate sum queries directly against the pool.
type repository struct {
	pool      *pgxpool.Pool
	plan      plancomptable.Repository
	donnees   donnees.Repository
	geo       geo.Repository
	exercices exercice.Repository
}

func NewRepository(pool *pgxpool.Pool, plan plancomptable.Repository, don donnees.Repository, g geo.Repository, ex exercice.Repository) Repository {
	return &repository{pool: pool, plan: plan, donnees: don, geo: g, exercices: ex}
}

func (r *repository) ListComptes(ctx context.Context, mouvement plancomptable.TypeMouvement, section plancomptable.SectionBudgetaire) ([]plancomptable.Compte, error) {
	return r.plan.ListActive(ctx, mouvement, section)
}

func (r *repository) GetRecette(ctx context.Context, communeID, exerciceID int64, code string) (*donnees.Recette, error) {
	return r.donnees.GetRecette(ctx, communeID, exerciceID, code)
}

func (r *repository) GetDepense(ctx context.Context, communeID, exerciceID int64, code string) (*donnees.Depense, error) {
	return r.donnees.GetDepense(ctx, communeID, exerciceID, code)
}

func (r *repository) GetCommune(ctx context.Context, id int64) (*geo.CommuneDetail, error) {
	return r.geo.GetCommune(ctx, id)
}

func (r *repository) GetRegion(ctx context.Context, id int64) (*geo.Region, error) {
	return r.geo.GetRegion(ctx, id)
}

func (r *repository) ListCommuneIDsByRegion(ctx context.Context, regionID int64) ([]int64, error) {
	return r.geo.ListCommuneIDsByRegion(ctx, regionID)
}

func (r *repository) GetExercice(ctx context.Context, annee int) (*exercice.Exercice, error) {
	return r.exercices.GetByAnnee(ctx, annee)
}

// previsions retenues at SQL level: the stored definitive provision when
// positive, otherwise the sum of its components. Mirrors PrevisionsRetenues
// on the row models.
const sqlPrevisionsRetenues = `CASE WHEN previsions_definitives > 0
	THEN previsions_definitives
	ELSE budget_primitif + budget_additionnel + modifications END`

func (r *repository) SommeRecettes(ctx context.Context, communeIDs []int64, exerciceID int64) (Somme, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(%s), 0),
		       COALESCE(SUM(or_admis), 0),
		       COALESCE(SUM(recouvrement), 0)
		FROM donnees_recettes
		WHERE commune_id = ANY($1) AND exercice_id = $2`, sqlPrevisionsRetenues)

	var s Somme
	err := r.pool.QueryRow(ctx, query, communeIDs, exerciceID).
		Scan(&s.Previsions, &s.Realisations, &s.Reglements)
	if err != nil {
		return Somme{}, fmt.Errorf("tableau: somme recettes: %w", err)
	}
	return s, nil
}

func (r *repository) SommeDepenses(ctx context.Context, communeIDs []int64, exerciceID int64) (Somme, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(%s), 0),
		       COALESCE(SUM(mandat_admis), 0),
		       COALESCE(SUM(paiement), 0)
		FROM donnees_depenses
		WHERE commune_id = ANY($1) AND exercice_id = $2`, sqlPrevisionsRetenues)

	var s Somme
	err := r.pool.QueryRow(ctx, query, communeIDs, exerciceID).
		Scan(&s.Previsions, &s.Realisations, &s.Reglements)
	if err != nil {
		return Somme{}, fmt.Errorf("tableau: somme depenses: %w", err)
	}
	return s, nil
}
