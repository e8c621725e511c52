package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-quiz/internal/model"
)

var (
	ErrReferenceNotFound = errors.New("reference not found")
	ErrUnknownReference  = errors.New("unknown reference kind")
)

// ReferenceRepository stores chapters, subjects and seasons. They share one
// table shape, so the kind selects the table.
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

func (r *ReferenceRepository) Create(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (name) VALUES ($1) RETURNING id, created_at, updated_at`,
		ref.Name).Scan(&ref.ID, &ref.CreatedAt, &ref.UpdatedAt)
}

func (r *ReferenceRepository) GetAll(ctx context.Context, kind model.ReferenceKind) ([]model.Reference, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM `+table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *ReferenceRepository) Update(ctx context.Context, kind model.ReferenceKind, ref *model.Reference) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE `+table+` SET name = $1, updated_at = NOW() WHERE id = $2`, ref.Name, ref.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// Delete removes a reference. Quizzes filed under it keep existing with the
// association cleared.
func (r *ReferenceRepository) Delete(ctx context.Context, kind model.ReferenceKind, id int64) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// referenceTable maps a kind onto a fixed table name. Only these names ever
// reach the SQL text.
func referenceTable(kind model.ReferenceKind) (string, error) {
	switch kind {
	case model.ReferenceChapters:
		return "chapters", nil
	case model.ReferenceSubjects:
		return "subjects", nil
	case model.ReferenceSeasons:
		return "seasons", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReference, kind)
}
