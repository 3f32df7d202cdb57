package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/phonebook_service/domain"
	"github.com/ozmsg/gateway/internal/phonenumber"
)

// PgContactRepository is the PostgreSQL implementation of
// domain.ContactRepository. phone_number_tail is kept in sync on writes for
// indexed number matching.
type PgContactRepository struct {
	db     *pgxpool.Pool
	norm   *phonenumber.Normalizer
	logger *slog.Logger
}

// NewPgContactRepository creates a new PgContactRepository.
func NewPgContactRepository(db *pgxpool.Pool, norm *phonenumber.Normalizer, logger *slog.Logger) *PgContactRepository {
	return &PgContactRepository{db: db, norm: norm, logger: logger}
}

const contactColumns = `id, user_id, name, phone_number, email, category, created_at, updated_at`

func scanContact(row pgx.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.Email, &c.Category, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, user_id, name, phone_number, phone_number_tail, email, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.UserID, c.Name, c.PhoneNumber, r.norm.TailKey(c.PhoneNumber),
		c.Email, c.Category, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert contact", "error", err, "user_id", c.UserID)
		return err
	}
	return nil
}

func (r *PgContactRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Contact, error) {
	c, err := scanContact(r.db.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PgContactRepository) ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Contact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_id = $1 ORDER BY name OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *PgContactRepository) FindByNumberTail(ctx context.Context, tail string) ([]*domain.Contact, error) {
	if tail == "" {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE phone_number_tail = $1 ORDER BY created_at`, tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

func collectContacts(rows pgx.Rows) ([]*domain.Contact, error) {
	var contacts []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *PgContactRepository) Update(ctx context.Context, c *domain.Contact) error {
	query := `
		UPDATE contacts
		SET name = $3, phone_number = $4, phone_number_tail = $5, email = $6, category = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		c.ID, c.UserID, c.Name, c.PhoneNumber, r.norm.TailKey(c.PhoneNumber),
		c.Email, c.Category, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgContactRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
