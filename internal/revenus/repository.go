package revenus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("revenus: not found")

type Repository interface {
	List(ctx context.Context, communeID, exerciceID int64) ([]RevenuMinier, error)
	Create(ctx context.Context, rev RevenuMinier) (int64, error)
	Totaux(ctx context.Context, communeID, exerciceID int64) (*TotauxRevenus, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, communeID, exerciceID int64) ([]RevenuMinier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, commune_id, exercice_id, projet_id, type_revenu, montant_prevu,
			montant_recu, compte_code, commentaire, created_at, updated_at
		FROM revenus_miniers
		WHERE commune_id = $1 AND exercice_id = $2
		ORDER BY projet_id, type_revenu`, communeID, exerciceID)
	if err != nil {
		return nil, fmt.Errorf("revenus: list: %w", err)
	}
	defer rows.Close()
	var revenus []RevenuMinier
	for rows.Next() {
		var rev RevenuMinier
		err := rows.Scan(&rev.ID, &rev.CommuneID, &rev.ExerciceID, &rev.ProjetID, &rev.TypeRevenu,
			&rev.MontantPrevu, &rev.MontantRecu, &rev.CompteCode, &rev.Commentaire,
			&rev.CreatedAt, &rev.UpdatedAt)
		if err != nil {
			return nil, err
		}
		revenus = append(revenus, rev)
	}
	return revenus, rows.Err()
}

func (r *repository) Create(ctx context.Context, rev RevenuMinier) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO revenus_miniers
			(commune_id, exercice_id, projet_id, type_revenu, montant_prevu, montant_recu, compte_code, commentaire)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		rev.CommuneID, rev.ExerciceID, rev.ProjetID, rev.TypeRevenu,
		rev.MontantPrevu, rev.MontantRecu, rev.CompteCode, rev.Commentaire).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("revenus: create: %w", err)
	}
	return id, nil
}

func (r *repository) Totaux(ctx context.Context, communeID, exerciceID int64) (*TotauxRevenus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type_revenu, COALESCE(SUM(montant_prevu), 0), COALESCE(SUM(montant_recu), 0)
		FROM revenus_miniers
		WHERE commune_id = $1 AND exercice_id = $2
		GROUP BY type_revenu`, communeID, exerciceID)
	if err != nil {
		return nil, fmt.Errorf("revenus: totaux: %w", err)
	}
	defer rows.Close()

	totaux := &TotauxRevenus{
		CommuneID:  communeID,
		ExerciceID: exerciceID,
		ParType:    make(map[TypeRevenu]float64),
	}
	for rows.Next() {
		var t TypeRevenu
		var prevu, recu float64
		if err := rows.Scan(&t, &prevu, &recu); err != nil {
			return nil, err
		}
		totaux.TotalPrevu += prevu
		totaux.TotalRecu += recu
		totaux.ParType[t] = recu
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if totaux.TotalPrevu > 0 {
		taux := totaux.TotalRecu / totaux.TotalPrevu * 100
		totaux.TauxPerception = &taux
	}
	return totaux, nil
}
