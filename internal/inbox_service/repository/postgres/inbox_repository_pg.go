package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/inbox_service/domain"
)

const uniqueViolation = "23505"

// PgInboxRepository is the PostgreSQL implementation of domain.InboxRepository.
type PgInboxRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgInboxRepository creates a new PgInboxRepository.
func NewPgInboxRepository(db *pgxpool.Pool, logger *slog.Logger) *PgInboxRepository {
	return &PgInboxRepository{db: db, logger: logger}
}

const inboxColumns = `id, user_id, "from", "to", content, type, received_at, read, folder, created_at`

func scanInboxMessage(row pgx.Row) (*domain.InboxMessage, error) {
	var m domain.InboxMessage
	err := row.Scan(&m.ID, &m.UserID, &m.From, &m.To, &m.Content, &m.Type,
		&m.ReceivedAt, &m.Read, &m.Folder, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new inbound message. A primary-key collision maps to
// ErrDuplicateEntry so the merger can treat the race as "already persisted".
func (r *PgInboxRepository) Create(ctx context.Context, msg *domain.InboxMessage) error {
	query := `
		INSERT INTO inbox_messages (id, user_id, "from", "to", content, type, received_at, read, folder, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		msg.ID, msg.UserID, msg.From, msg.To, msg.Content, msg.Type,
		msg.ReceivedAt, msg.Read, msg.Folder, msg.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Failed to insert inbox message", "error", err, "message_id", msg.ID)
		return err
	}
	return nil
}

func (r *PgInboxRepository) GetByID(ctx context.Context, id string, userID uuid.UUID) (*domain.InboxMessage, error) {
	m, err := scanInboxMessage(r.db.QueryRow(ctx,
		`SELECT `+inboxColumns+` FROM inbox_messages WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *PgInboxRepository) ListByUserID(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*domain.InboxMessage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+inboxColumns+` FROM inbox_messages WHERE user_id = $1 ORDER BY received_at DESC OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.InboxMessage
	for rows.Next() {
		m, err := scanInboxMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgInboxRepository) ListIDsByUserID(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM inbox_messages WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (r *PgInboxRepository) SetRead(ctx context.Context, id string, userID uuid.UUID, read bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inbox_messages SET read = $3 WHERE id = $1 AND user_id = $2`, id, userID, read)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgInboxRepository) SetFolder(ctx context.Context, id string, userID uuid.UUID, folder string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inbox_messages SET folder = $3 WHERE id = $1 AND user_id = $2`, id, userID, folder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgInboxRepository) Delete(ctx context.Context, id string, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inbox_messages WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
