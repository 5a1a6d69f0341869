package plancomptable

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("plancomptable: compte not found")
	ErrAlreadyExists = errors.New("plancomptable: code already exists")
)

const uniqueViolation = "23505"

type Repository interface {
	// ListActive returns the active accounts of one (mouvement, section),
	// ordered by ordre_affichage ascending with nulls last, then code.
	ListActive(ctx context.Context, mouvement TypeMouvement, section SectionBudgetaire) ([]Compte, error)
	List(ctx context.Context, filter Filter) ([]Compte, error)
	FindByCode(ctx context.Context, code string) (*Compte, error)
	Create(ctx context.Context, c Compte) (int64, error)
	Update(ctx context.Context, code string, c Compte) error
}

// Filter narrows full chart listings.
type Filter struct {
	Mouvement *TypeMouvement
	Section   *SectionBudgetaire
	Niveau    *int
	Actif     *bool
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const selectColumns = `id, code, intitule, niveau, type_mouvement, section, parent_code,
	est_sommable, ordre_affichage, actif, created_at, updated_at`

func (r *repository) ListActive(ctx context.Context, mouvement TypeMouvement, section SectionBudgetaire) ([]Compte, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM plan_comptable
		WHERE type_mouvement = $1 AND section = $2 AND actif
		ORDER BY ordre_affichage ASC NULLS LAST, code ASC`, mouvement, section)
	if err != nil {
		return nil, fmt.Errorf("plancomptable: list active: %w", err)
	}
	defer rows.Close()
	return scanComptes(rows)
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Compte, error) {
	query := `SELECT ` + selectColumns + ` FROM plan_comptable WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.Mouvement != nil {
		query += fmt.Sprintf(` AND type_mouvement = $%d`, idx)
		args = append(args, *filter.Mouvement)
		idx++
	}
	if filter.Section != nil {
		query += fmt.Sprintf(` AND section = $%d`, idx)
		args = append(args, *filter.Section)
		idx++
	}
	if filter.Niveau != nil {
		query += fmt.Sprintf(` AND niveau = $%d`, idx)
		args = append(args, *filter.Niveau)
		idx++
	}
	if filter.Actif != nil {
		query += fmt.Sprintf(` AND actif = $%d`, idx)
		args = append(args, *filter.Actif)
		idx++
	}
	query += ` ORDER BY type_mouvement, section, ordre_affichage ASC NULLS LAST, code ASC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("plancomptable: list: %w", err)
	}
	defer rows.Close()
	return scanComptes(rows)
}

func scanComptes(rows pgx.Rows) ([]Compte, error) {
	var comptes []Compte
	for rows.Next() {
		var c Compte
		err := rows.Scan(&c.ID, &c.Code, &c.Intitule, &c.Niveau, &c.TypeMouvement, &c.Section,
			&c.ParentCode, &c.EstSommable, &c.OrdreAffichage, &c.Actif, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		comptes = append(comptes, c)
	}
	return comptes, rows.Err()
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Compte, error) {
	row := r.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM plan_comptable WHERE code = $1`, code)
	var c Compte
	err := row.Scan(&c.ID, &c.Code, &c.Intitule, &c.Niveau, &c.TypeMouvement, &c.Section,
		&c.ParentCode, &c.EstSommable, &c.OrdreAffichage, &c.Actif, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("plancomptable: find by code: %w", err)
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c Compte) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO plan_comptable
			(code, intitule, niveau, type_mouvement, section, parent_code, est_sommable, ordre_affichage, actif)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		c.Code, c.Intitule, c.Niveau, c.TypeMouvement, c.Section, c.ParentCode,
		c.EstSommable, c.OrdreAffichage, c.Actif).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("plancomptable: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, code string, c Compte) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE plan_comptable
		SET intitule = $2, est_sommable = $3, ordre_affichage = $4, actif = $5, updated_at = now()
		WHERE code = $1`,
		code, c.Intitule, c.EstSommable, c.OrdreAffichage, c.Actif)
	if err != nil {
		return fmt.Errorf("plancomptable: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
