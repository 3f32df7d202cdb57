package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozmsg/gateway/internal/inbox_service/domain"
)

// PgRuleRepository is the PostgreSQL implementation of domain.RuleRepository.
type PgRuleRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPgRuleRepository creates a new PgRuleRepository.
func NewPgRuleRepository(db *pgxpool.Pool, logger *slog.Logger) *PgRuleRepository {
	return &PgRuleRepository{db: db, logger: logger}
}

const ruleColumns = `id, user_id, name, condition_type, condition_value, action_type, action_value, enabled, created_at, updated_at`

func scanRule(row pgx.Row) (*domain.Rule, error) {
	var rl domain.Rule
	err := row.Scan(&rl.ID, &rl.UserID, &rl.Name, &rl.ConditionType, &rl.ConditionValue,
		&rl.ActionType, &rl.ActionValue, &rl.Enabled, &rl.CreatedAt, &rl.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rl, nil
}

func (r *PgRuleRepository) Create(ctx context.Context, rl *domain.Rule) error {
	query := `
		INSERT INTO rules (id, user_id, name, condition_type, condition_value, action_type, action_value, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		rl.ID, rl.UserID, rl.Name, rl.ConditionType, rl.ConditionValue,
		rl.ActionType, rl.ActionValue, rl.Enabled, rl.CreatedAt, rl.UpdatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert rule", "error", err, "user_id", rl.UserID)
		return err
	}
	return nil
}

func (r *PgRuleRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Rule, error) {
	rl, err := scanRule(r.db.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM rules WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rl, nil
}

func (r *PgRuleRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM rules WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

// ListEnabledByUserID returns enabled rules in creation order; this ordering
// is the rule evaluation order and must be stable.
func (r *PgRuleRepository) ListEnabledByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Rule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM rules WHERE user_id = $1 AND enabled ORDER BY created_at, id`, userID)
}

func (r *PgRuleRepository) list(ctx context.Context, query string, userID uuid.UUID) ([]*domain.Rule, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		rl, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rl)
	}
	return rules, rows.Err()
}

func (r *PgRuleRepository) Update(ctx context.Context, rl *domain.Rule) error {
	query := `
		UPDATE rules
		SET name = $3, condition_type = $4, condition_value = $5, action_type = $6, action_value = $7, enabled = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.db.Exec(ctx, query,
		rl.ID, rl.UserID, rl.Name, rl.ConditionType, rl.ConditionValue,
		rl.ActionType, rl.ActionValue, rl.Enabled, rl.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgRuleRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rules WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
