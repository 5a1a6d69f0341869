package exercice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("exercice: not found")
	ErrAlreadyExists = errors.New("exercice: already exists")
)

const uniqueViolation = "23505"

type Repository interface {
	List(ctx context.Context) ([]Exercice, error)
	Get(ctx context.Context, id int64) (*Exercice, error)
	GetByAnnee(ctx context.Context, annee int) (*Exercice, error)
	Create(ctx context.Context, e Exercice) (int64, error)
	SetCloture(ctx context.Context, id int64, cloture bool) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, annee, libelle, date_debut, date_fin, cloture, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Exercice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM exercices ORDER BY annee DESC`)
	if err != nil {
		return nil, fmt.Errorf("exercice: list: %w", err)
	}
	defer rows.Close()
	var exercices []Exercice
	for rows.Next() {
		var e Exercice
		if err := rows.Scan(&e.ID, &e.Annee, &e.Libelle, &e.DateDebut, &e.DateFin, &e.Cloture, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exercices = append(exercices, e)
	}
	return exercices, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Exercice, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM exercices WHERE id = $1`, id))
}

func (r *repository) GetByAnnee(ctx context.Context, annee int) (*Exercice, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM exercices WHERE annee = $1`, annee))
}

func (r *repository) scanOne(row pgx.Row) (*Exercice, error) {
	var e Exercice
	err := row.Scan(&e.ID, &e.Annee, &e.Libelle, &e.DateDebut, &e.DateFin, &e.Cloture, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("exercice: get: %w", err)
	}
	return &e, nil
}

func (r *repository) Create(ctx context.Context, e Exercice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO exercices (annee, libelle, date_debut, date_fin, cloture)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id`,
		e.Annee, e.Libelle, e.DateDebut, e.DateFin).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("exercice: create: %w", err)
	}
	return id, nil
}

func (r *repository) SetCloture(ctx context.Context, id int64, cloture bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE exercices SET cloture = $2, updated_at = now() WHERE id = $1`, id, cloture)
	if err != nil {
		return fmt.Errorf("exercice: set cloture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
