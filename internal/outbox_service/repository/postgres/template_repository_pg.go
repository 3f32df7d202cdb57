package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/outbox_service/domain"
)

// PgTemplateRepository is the PostgreSQL implementation of
// domain.TemplateRepository.
type PgTemplateRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgTemplateRepository creates a new PgTemplateRepository.
func NewPgTemplateRepository(db *pgxpool.Pool, logger *slog.Logger) *PgTemplateRepository {
	return &PgTemplateRepository{db: db, logger: logger}
}

const templateColumns = `id, user_id, name, content, created_at, updated_at`

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var t domain.Template
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgTemplateRepository) Create(ctx context.Context, t *domain.Template) error {
	query := `
		INSERT INTO templates (id, user_id, name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, t.ID, t.UserID, t.Name, t.Content, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert template", "error", err, "template_id", t.ID)
		return err
	}
	return nil
}

func (r *PgTemplateRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *PgTemplateRepository) ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE user_id = $1 ORDER BY name OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *PgTemplateRepository) Update(ctx context.Context, t *domain.Template) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE templates SET name = $2, content = $3, updated_at = $4 WHERE id = $1 AND user_id = $5`,
		t.ID, t.Name, t.Content, t.UpdatedAt, t.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgTemplateRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
