package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/outbox_service/domain"
)

// PgMessageRepository is the PostgreSQL implementation of
// domain.MessageRepository. Recipients are stored as a JSON array string and
// decoded back through domain.ParseRecipients on read.
type PgMessageRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgMessageRepository creates a new PgMessageRepository.
func NewPgMessageRepository(db *pgxpool.Pool, logger *slog.Logger) *PgMessageRepository {
	return &PgMessageRepository{db: db, logger: logger}
}

const messageColumns = `id, user_id, "to", "from", content, type, status, credits, provider_id, created_at, sent_at, delivered_at, scheduled_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	var to string
	err := row.Scan(&m.ID, &m.UserID, &to, &m.From, &m.Content, &m.Type, &m.Status,
		&m.Credits, &m.ProviderID, &m.CreatedAt, &m.SentAt, &m.DeliveredAt, &m.ScheduledAt)
	if err != nil {
		return nil, err
	}
	m.To = domain.ParseRecipients(to)
	return &m, nil
}

func (r *PgMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	encoded, err := m.To.Encode()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO messages (id, user_id, "to", "from", content, type, status, credits, provider_id, created_at, sent_at, delivered_at, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.Exec(ctx, query,
		m.ID, m.UserID, encoded, m.From, m.Content, m.Type, m.Status, m.Credits,
		m.ProviderID, m.CreatedAt, m.SentAt, m.DeliveredAt, m.ScheduledAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert message", "error", err, "message_id", m.ID)
		return err
	}
	return nil
}

func (r *PgMessageRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Message, error) {
	m, err := scanMessage(r.db.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *PgMessageRepository) ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE user_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MessageStatus, providerID string) error {
	var sentAt *time.Time
	if status == domain.StatusSent {
		now := time.Now().UTC()
		sentAt = &now
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE messages SET status = $2, provider_id = COALESCE(NULLIF($3, ''), provider_id), sent_at = COALESCE($4, sent_at) WHERE id = $1`,
		id, status, providerID, sentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
