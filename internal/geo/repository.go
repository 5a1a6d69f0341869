package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested territorial entity does not exist.
var ErrNotFound = errors.New("geo: not found")

type Repository interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	ListRegions(ctx context.Context, provinceID *int64) ([]Region, error)
	ListCommunes(ctx context.Context, filter CommuneFilter) ([]Commune, error)
	ListCommuneIDsByRegion(ctx context.Context, regionID int64) ([]int64, error)
	GetCommune(ctx context.Context, id int64) (*CommuneDetail, error)
	GetRegion(ctx context.Context, id int64) (*Region, error)
}

// CommuneFilter narrows commune listings.
type CommuneFilter struct {
	RegionID *int64
	Search   string
	Limit    int
	Offset   int
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListProvinces(ctx context.Context) ([]Province, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, nom, created_at, updated_at FROM provinces ORDER BY nom`)
	if err != nil {
		return nil, fmt.Errorf("geo: list provinces: %w", err)
	}
	defer rows.Close()
	var provinces []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.ID, &p.Code, &p.Nom, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}

func (r *repository) ListRegions(ctx context.Context, provinceID *int64) ([]Region, error) {
	query := `SELECT id, code, nom, province_id, created_at, updated_at FROM regions`
	args := []any{}
	if provinceID != nil {
		query += ` WHERE province_id = $1`
		args = append(args, *provinceID)
	}
	query += ` ORDER BY nom`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("geo: list regions: %w", err)
	}
	defer rows.Close()
	var regions []Region
	for rows.Next() {
		var reg Region
		if err := rows.Scan(&reg.ID, &reg.Code, &reg.Nom, &reg.ProvinceID, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		regions = append(regions, reg)
	}
	return regions, rows.Err()
}

func (r *repository) ListCommunes(ctx context.Context, filter CommuneFilter) ([]Commune, error) {
	query := `SELECT id, code, nom, type_commune, region_id, population, superficie_km2, created_at, updated_at
		FROM communes WHERE 1=1`
	args := []any{}
	idx := 1
	if filter.RegionID != nil {
		query += fmt.Sprintf(` AND region_id = $%d`, idx)
		args = append(args, *filter.RegionID)
		idx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (nom ILIKE $%d OR code ILIKE $%d)`, idx, idx)
		args = append(args, "%"+filter.Search+"%")
		idx++
	}
	query += ` ORDER BY nom`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("geo: list communes: %w", err)
	}
	defer rows.Close()
	var communes []Commune
	for rows.Next() {
		var c Commune
		if err := rows.Scan(&c.ID, &c.Code, &c.Nom, &c.TypeCommune, &c.RegionID, &c.Population, &c.SuperficieKm2, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		communes = append(communes, c)
	}
	return communes, rows.Err()
}

func (r *repository) ListCommuneIDsByRegion(ctx context.Context, regionID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM communes WHERE region_id = $1 ORDER BY id`, regionID)
	if err != nil {
		return nil, fmt.Errorf("geo: list commune ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) GetCommune(ctx context.Context, id int64) (*CommuneDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT c.id, c.code, c.nom, c.type_commune, c.region_id, c.population, c.superficie_km2,
			c.created_at, c.updated_at, r.nom, p.nom
		FROM communes c
		JOIN regions r ON r.id = c.region_id
		JOIN provinces p ON p.id = r.province_id
		WHERE c.id = $1`, id)
	var d CommuneDetail
	err := row.Scan(&d.ID, &d.Code, &d.Nom, &d.TypeCommune, &d.RegionID, &d.Population, &d.SuperficieKm2,
		&d.CreatedAt, &d.UpdatedAt, &d.RegionNom, &d.ProvinceNom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("geo: get commune: %w", err)
	}
	return &d, nil
}

func (r *repository) GetRegion(ctx context.Context, id int64) (*Region, error) {
	row := r.db.QueryRow(ctx, `SELECT id, code, nom, province_id, created_at, updated_at FROM regions WHERE id = $1`, id)
	var reg Region
	err := row.Scan(&reg.ID, &reg.Code, &reg.Nom, &reg.ProvinceID, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("geo: get region: %w", err)
	}
	return &reg, nil
}
