package donnees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no financial row exists for the requested key.
// Callers building report lines treat this as "synthesize a zero line",
// never as a failure.
var ErrNotFound = errors.New("donnees: not found")

type Repository interface {
	GetRecette(ctx context.Context, communeID, exerciceID int64, compteCode string) (*Recette, error)
	ListRecettes(ctx context.Context, communeID, exerciceID int64) ([]Recette, error)
	UpsertRecette(ctx context.Context, rec Recette) (*Recette, error)
	GetDepense(ctx context.Context, communeID, exerciceID int64, compteCode string) (*Depense, error)
	ListDepenses(ctx context.Context, communeID, exerciceID int64) ([]Depense, error)
	UpsertDepense(ctx context.Context, dep Depense) (*Depense, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const recetteColumns = `id, commune_id, exercice_id, compte_code,
	budget_primitif, budget_additionnel, modifications, previsions_definitives,
	or_admis, recouvrement, reste_a_recouvrer, commentaire, created_at, updated_at`

const depenseColumns = `id, commune_id, exercice_id, compte_code,
	budget_primitif, budget_additionnel, modifications, previsions_definitives,
	engagement, mandat_admis, paiement, reste_a_payer, programme, commentaire, created_at, updated_at`

func (r *repository) GetRecette(ctx context.Context, communeID, exerciceID int64, compteCode string) (*Recette, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+recetteColumns+`
		FROM donnees_recettes
		WHERE commune_id = $1 AND exercice_id = $2 AND compte_code = $3`,
		communeID, exerciceID, compteCode)
	rec, err := scanRecette(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("donnees: get recette: %w", err)
	}
	return rec, nil
}

func (r *repository) ListRecettes(ctx context.Context, communeID, exerciceID int64) ([]Recette, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recetteColumns+`
		FROM donnees_recettes
		WHERE commune_id = $1 AND exercice_id = $2
		ORDER BY compte_code`, communeID, exerciceID)
	if err != nil {
		return nil, fmt.Errorf("donnees: list recettes: %w", err)
	}
	defer rows.Close()
	var recettes []Recette
	for rows.Next() {
		rec, err := scanRecette(rows)
		if err != nil {
			return nil, err
		}
		recettes = append(recettes, *rec)
	}
	return recettes, rows.Err()
}

func (r *repository) UpsertRecette(ctx context.Context, rec Recette) (*Recette, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO donnees_recettes
			(commune_id, exercice_id, compte_code, budget_primitif, budget_additionnel,
			 modifications, previsions_definitives, or_admis, recouvrement, reste_a_recouvrer, commentaire)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (commune_id, exercice_id, compte_code) DO UPDATE SET
			budget_primitif = EXCLUDED.budget_primitif,
			budget_additionnel = EXCLUDED.budget_additionnel,
			modifications = EXCLUDED.modifications,
			previsions_definitives = EXCLUDED.previsions_definitives,
			or_admis = EXCLUDED.or_admis,
			recouvrement = EXCLUDED.recouvrement,
			reste_a_recouvrer = EXCLUDED.reste_a_recouvrer,
			commentaire = EXCLUDED.commentaire,
			updated_at = now()
		RETURNING `+recetteColumns,
		rec.CommuneID, rec.ExerciceID, rec.CompteCode, rec.BudgetPrimitif, rec.BudgetAdditionnel,
		rec.Modifications, rec.PrevisionsDefinitives, rec.OrAdmis, rec.Recouvrement,
		rec.ResteARecouvrer, rec.Commentaire)
	saved, err := scanRecette(row)
	if err != nil {
		return nil, fmt.Errorf("donnees: upsert recette: %w", err)
	}
	return saved, nil
}

func (r *repository) GetDepense(ctx context.Context, communeID, exerciceID int64, compteCode string) (*Depense, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+depenseColumns+`
		FROM donnees_depenses
		WHERE commune_id = $1 AND exercice_id = $2 AND compte_code = $3`,
		communeID, exerciceID, compteCode)
	dep, err := scanDepense(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("donnees: get depense: %w", err)
	}
	return dep, nil
}

func (r *repository) ListDepenses(ctx context.Context, communeID, exerciceID int64) ([]Depense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+depenseColumns+`
		FROM donnees_depenses
		WHERE commune_id = $1 AND exercice_id = $2
		ORDER BY compte_code`, communeID, exerciceID)
	if err != nil {
		return nil, fmt.Errorf("donnees: list depenses: %w", err)
	}
	defer rows.Close()
	var depenses []Depense
	for rows.Next() {
		dep, err := scanDepense(rows)
		if err != nil {
			return nil, err
		}
		depenses = append(depenses, *dep)
	}
	return depenses, rows.Err()
}

func (r *repository) UpsertDepense(ctx context.Context, dep Depense) (*Depense, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO donnees_depenses
			(commune_id, exercice_id, compte_code, budget_primitif, budget_additionnel,
			 modifications, previsions_definitives, engagement, mandat_admis, paiement,
			 reste_a_payer, programme, commentaire)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (commune_id, exercice_id, compte_code) DO UPDATE SET
			budget_primitif = EXCLUDED.budget_primitif,
			budget_additionnel = EXCLUDED.budget_additionnel,
			modifications = EXCLUDED.modifications,
			previsions_definitives = EXCLUDED.previsions_definitives,
			engagement = EXCLUDED.engagement,
			mandat_admis = EXCLUDED.mandat_admis,
			paiement = EXCLUDED.paiement,
			reste_a_payer = EXCLUDED.reste_a_payer,
			programme = EXCLUDED.programme,
			commentaire = EXCLUDED.commentaire,
			updated_at = now()
		RETURNING `+depenseColumns,
		dep.CommuneID, dep.ExerciceID, dep.CompteCode, dep.BudgetPrimitif, dep.BudgetAdditionnel,
		dep.Modifications, dep.PrevisionsDefinitives, dep.Engagement, dep.MandatAdmis,
		dep.Paiement, dep.ResteAPayer, dep.Programme, dep.Commentaire)
	saved, err := scanDepense(row)
	if err != nil {
		return nil, fmt.Errorf("donnees: upsert depense: %w", err)
	}
	return saved, nil
}

func scanRecette(row pgx.Row) (*Recette, error) {
	var rec Recette
	err := row.Scan(&rec.ID, &rec.CommuneID, &rec.ExerciceID, &rec.CompteCode,
		&rec.BudgetPrimitif, &rec.BudgetAdditionnel, &rec.Modifications, &rec.PrevisionsDefinitives,
		&rec.OrAdmis, &rec.Recouvrement, &rec.ResteARecouvrer, &rec.Commentaire,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanDepense(row pgx.Row) (*Depense, error) {
	var dep Depense
	err := row.Scan(&dep.ID, &dep.CommuneID, &dep.ExerciceID, &dep.CompteCode,
		&dep.BudgetPrimitif, &dep.BudgetAdditionnel, &dep.Modifications, &dep.PrevisionsDefinitives,
		&dep.Engagement, &dep.MandatAdmis, &dep.Paiement, &dep.ResteAPayer,
		&dep.Programme, &dep.Commentaire, &dep.CreatedAt, &dep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &dep, nil
}
