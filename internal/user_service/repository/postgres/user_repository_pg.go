package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/phonenumber"
	"github.com/ozmsg/gateway/internal/user_service/domain"
)

const uniqueViolation = "23505"

// PgUserRepository is the PostgreSQL implementation of domain.UserRepository.
// personal_mobile_tail is maintained on every write so owner resolution can
// match numbers via an indexed equality query instead of scanning.
type PgUserRepository struct {
	db     *pgxpool.Pool
	norm   *phonenumber.Normalizer
	logger *slog.Logger
}

// NewPgUserRepository creates a new PgUserRepository.
func NewPgUserRepository(db *pgxpool.Pool, norm *phonenumber.Normalizer, logger *slog.Logger) *PgUserRepository {
	return &PgUserRepository{db: db, norm: norm, logger: logger}
}

const userColumns = `id, username, hashed_password, personal_mobile, role, credits, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.HashedPassword, &u.PersonalMobile,
		&u.Role, &u.Credits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, hashed_password, personal_mobile, personal_mobile_tail,
		                   role, credits, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Username, u.HashedPassword, u.PersonalMobile, r.norm.TailKey(u.PersonalMobile),
		u.Role, u.Credits, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateEntry
		}
		r.logger.ErrorContext(ctx, "Failed to insert user", "error", err, "username", u.Username)
		return err
	}
	return nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *PgUserRepository) FindByMobileTail(ctx context.Context, tail string) ([]*domain.User, error) {
	if tail == "" {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE personal_mobile_tail = $1 AND is_active ORDER BY created_at`, tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, hashed_password = $3, personal_mobile = $4, personal_mobile_tail = $5,
		    role = $6, credits = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Username, u.HashedPassword, u.PersonalMobile, r.norm.TailKey(u.PersonalMobile),
		u.Role, u.Credits, u.IsActive, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateEntry
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgUserRepository) DebitCredits(ctx context.Context, id uuid.UUID, amount int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET credits = credits - $2, updated_at = now() WHERE id = $1 AND credits >= $2`, id, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the user does not exist or the balance is too low; check which.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return domain.ErrInsufficientCredits
	}
	return nil
}

func (r *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
