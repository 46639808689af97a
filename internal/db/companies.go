package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/healthcare-bi/backend/internal/models"
)

const companyColumns = `id::text, name, acronym, is_active, updated_at`

func (s *Store) ListActiveCompanies(ctx context.Context) ([]models.Company, error) {
	return s.queryCompanies(ctx, `SELECT `+companyColumns+` FROM companies WHERE is_active ORDER BY name ASC`)
}

func (s *Store) ListCompanies(ctx context.Context) ([]models.Company, error) {
	return s.queryCompanies(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name ASC`)
}

// FindCompanyByAcronym matches case-insensitively, active or not. It returns
// nil without error when nothing matches.
func (s *Store) FindCompanyByAcronym(ctx context.Context, acronym string) (*models.Company, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE lower(acronym) = lower($1) LIMIT 1`, acronym)
	var c models.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Acronym, &c.IsActive, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) InsertCompany(ctx context.Context, name, acronym string) (models.Company, error) {
	var c models.Company
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO companies (name, acronym, is_active, updated_at)
		VALUES ($1, $2, true, NOW())
		RETURNING `+companyColumns, name, acronym).
		Scan(&c.ID, &c.Name, &c.Acronym, &c.IsActive, &c.UpdatedAt)
	return c, err
}

func (s *Store) UpdateCompanyName(ctx context.Context, id, name string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE companies SET name = $1, updated_at = NOW() WHERE id = $2::uuid`, name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) queryCompanies(ctx context.Context, query string, args ...any) ([]models.Company, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Acronym, &c.IsActive, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
