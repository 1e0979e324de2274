package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/chatdigest/internal/domain"
	"github.com/shopspring/decimal"
)

// Queries bundles all database access for the bot.
type Queries struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Queries {
	return &Queries{db: db}
}

const userColumns = `id, telegram_id, first_name, username,
	time_window, detail_level, include_media, media_budget, selected_model,
	archive_path, archive_name, last_summary_at, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.Username,
		&u.TimeWindow, &u.DetailLevel, &u.IncludeMedia, &u.MediaBudget, &u.SelectedModel,
		&u.ArchivePath, &u.ArchiveName, &u.LastSummaryAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (q *Queries) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpsertUser creates the user on first contact and refreshes the
// display name on every later one.
func (q *Queries) UpsertUser(ctx context.Context, telegramID int64, firstName, username string) (*domain.User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, first_name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    username   = EXCLUDED.username,
		    updated_at = NOW()
		RETURNING `+userColumns,
		telegramID, firstName, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// UpdateUserSettings persists the preference fields of u.
func (q *Queries) UpdateUserSettings(ctx context.Context, u *domain.User) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users
		SET time_window = $2, detail_level = $3, include_media = $4,
		    media_budget = $5, selected_model = $6, updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.TimeWindow, u.DetailLevel, u.IncludeMedia, u.MediaBudget, u.SelectedModel)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	return nil
}

// SetUserArchive records the archive loaded for this chat.
func (q *Queries) SetUserArchive(ctx context.Context, userID int64, path, name string) error {
	_, err := q.db.Exec(ctx, `
		UPDATE users
		SET archive_path = $2, archive_name = $3, updated_at = NOW()
		WHERE id = $1`,
		userID, path, name)
	if err != nil {
		return fmt.Errorf("set user archive: %w", err)
	}
	return nil
}

// ClearUserArchive drops the archive reference after a fatal load failure.
func (q *Queries) ClearUserArchive(ctx context.Context, userID int64) error {
	return q.SetUserArchive(ctx, userID, "", "")
}

// TouchLastSummary starts the post-completion cooldown window.
func (q *Queries) TouchLastSummary(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx,
		`UPDATE users SET last_summary_at = NOW(), updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("touch last summary: %w", err)
	}
	return nil
}

// TrySetActiveRequest claims the single in-flight summarization slot
// for a chat. Returns domain.ErrActiveRequest when one is already
// running.
func (q *Queries) TrySetActiveRequest(ctx context.Context, chatID int64) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO active_requests (chat_id) VALUES ($1)`, chatID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrActiveRequest
		}
		return fmt.Errorf("set active request: %w", err)
	}
	return nil
}

func (q *Queries) RemoveActiveRequest(ctx context.Context, chatID int64) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM active_requests WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("remove active request: %w", err)
	}
	return nil
}

// CleanupStaleRequests drops slots left behind by crashed cycles.
func (q *Queries) CleanupStaleRequests(ctx context.Context, maxAge time.Duration) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM active_requests WHERE created_at < NOW() - $1::interval`,
		maxAge.String())
	if err != nil {
		return fmt.Errorf("cleanup stale requests: %w", err)
	}
	return nil
}

// CheckAndIncrementRateLimit bumps the per-minute counter for a chat
// and returns the new count.
func (q *Queries) CheckAndIncrementRateLimit(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `
		INSERT INTO rate_limits (chat_id, minute, count)
		VALUES ($1, date_trunc('minute', NOW()), 1)
		ON CONFLICT (chat_id) DO UPDATE
		SET count = CASE
			WHEN rate_limits.minute = date_trunc('minute', NOW()) THEN rate_limits.count + 1
			ELSE 1
		END,
		minute = date_trunc('minute', NOW())
		RETURNING count`,
		chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment rate limit: %w", err)
	}
	return count, nil
}

// SummaryRecord is one completed summarization cycle.
type SummaryRecord struct {
	ID           uuid.UUID
	ChatID       int64
	TimeWindow   domain.TimeWindow
	DetailLevel  domain.DetailLevel
	MessageCount int
	MediaCount   int
	Model        string
	Cost         decimal.Decimal
}

func (q *Queries) CreateSummary(ctx context.Context, rec SummaryRecord) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO summaries (id, chat_id, time_window, detail_level,
			message_count, media_count, model, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ChatID, rec.TimeWindow, rec.DetailLevel,
		rec.MessageCount, rec.MediaCount, rec.Model, rec.Cost)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	return nil
}

func (q *Queries) CountSummaries(ctx context.Context, chatID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM summaries WHERE chat_id = $1`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return count, nil
}
