// Package repository implements the storage interfaces on PostgreSQL.
// Uniqueness of short codes, aliases and account names is enforced by the
// database; unique violations surface as storage.ErrConflict so the service
// layer can retry generation or report the alias as taken.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS urls (
		id UUID PRIMARY KEY,
		original_url TEXT NOT NULL,
		short_code TEXT UNIQUE NOT NULL,
		custom_alias TEXT UNIQUE,
		owner_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		click_count BIGINT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS click_history (
		id UUID PRIMARY KEY,
		url_id UUID NOT NULL REFERENCES urls (id) ON DELETE CASCADE,
		ip_address TEXT,
		user_agent TEXT,
		referer TEXT,
		clicked_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_urls_owner_id ON urls (owner_id);
	CREATE INDEX IF NOT EXISTS idx_click_history_url_id ON click_history (url_id);
	CREATE INDEX IF NOT EXISTS idx_click_history_clicked_at ON click_history (clicked_at);
`

// InitDB opens the connection over the pgx stdlib driver and creates the
// tables when they are missing.
func InitDB(dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("database connected and tables ready")
	return db, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// nullable maps empty strings to NULL for optional text columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// URLRepository implements storage.URLStore and storage.ClickStore.
type URLRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateURLRepository(db *sql.DB, logger *zap.Logger) *URLRepository {
	return &URLRepository{db: db, logger: logger}
}

const urlColumns = "id, original_url, short_code, COALESCE(custom_alias, ''), owner_id, click_count, is_active, expires_at, created_at, updated_at"

func scanURL(row interface{ Scan(...any) error }) (*storage.URLRecord, error) {
	var r storage.URLRecord
	var expiresAt sql.NullTime
	err := row.Scan(&r.ID, &r.OriginalURL, &r.ShortCode, &r.CustomAlias, &r.OwnerID,
		&r.ClickCount, &r.IsActive, &expiresAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		r.ExpiresAt = &expiresAt.Time
	}
	return &r, nil
}

func (r *URLRepository) Insert(ctx context.Context, rec storage.URLRecord) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO urls (id, original_url, short_code, custom_alias, owner_id, is_active, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+urlColumns+`;`,
		rec.ID, rec.OriginalURL, rec.ShortCode, nullable(rec.CustomAlias), rec.OwnerID, rec.IsActive, rec.ExpiresAt,
	)

	inserted, err := scanURL(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		r.logger.Error("insert url", zap.Error(err))
		return nil, err
	}
	return inserted, nil
}

func (r *URLRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1 OR custom_alias = $1);", code,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *URLRepository) FindByCode(ctx context.Context, code string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+urlColumns+" FROM urls WHERE short_code = $1 OR custom_alias = $1;", code)

	rec, err := scanURL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *URLRepository) FindByID(ctx context.Context, id, ownerID string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+urlColumns+" FROM urls WHERE id = $1 AND owner_id = $2;", id, ownerID)

	rec, err := scanURL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *URLRepository) Update(ctx context.Context, id, ownerID string, upd storage.URLUpdate) (*storage.URLRecord, error) {
	set := []string{"updated_at = now()"}
	args := []any{id, ownerID}

	if upd.CustomAlias != nil {
		args = append(args, *upd.CustomAlias)
		set = append(set, fmt.Sprintf("custom_alias = $%d", len(args)))
	}
	if upd.ExpiresAt.Set {
		args = append(args, upd.ExpiresAt.Value)
		set = append(set, fmt.Sprintf("expires_at = $%d", len(args)))
	}
	if upd.IsActive != nil {
		args = append(args, *upd.IsActive)
		set = append(set, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := "UPDATE urls SET " + strings.Join(set, ", ") +
		" WHERE id = $1 AND owner_id = $2 RETURNING " + urlColumns + ";"

	rec, err := scanURL(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		r.logger.Error("update url", zap.Error(err))
		return nil, err
	}
	return rec, nil
}

func (r *URLRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM urls WHERE id = $1 AND owner_id = $2;", id, ownerID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *URLRepository) List(ctx context.Context, ownerID string, offset, limit int, search string) ([]storage.URLRecord, int64, error) {
	where := "owner_id = $1"
	args := []any{ownerID}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += fmt.Sprintf(" AND (original_url ILIKE $%d OR custom_alias ILIKE $%d)", len(args), len(args))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM urls WHERE "+where+";", args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+urlColumns+" FROM urls WHERE "+where+
			fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d;", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]storage.URLRecord, 0)
	for rows.Next() {
		rec, err := scanURL(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *URLRepository) CountByOwner(ctx context.Context, ownerID string) (int64, int64, error) {
	var total, active int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM urls WHERE owner_id = $1;",
		ownerID).Scan(&total, &active)
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *URLRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *URLRepository) InsertEvent(ctx context.Context, ev storage.ClickEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO click_history (id, url_id, ip_address, user_agent, referer, clicked_at)
		 VALUES ($1, $2, $3, $4, $5, $6);`,
		ev.ID, ev.URLID, nullable(ev.IPAddress), nullable(ev.UserAgent), nullable(ev.Referer), ev.ClickedAt)
	if err != nil {
		r.logger.Error("insert click event", zap.Error(err))
	}
	return err
}

func (r *URLRepository) IncrementClicks(ctx context.Context, urlID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE urls SET click_count = click_count + 1 WHERE id = $1;", urlID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *URLRepository) DailyStats(ctx context.Context, ownerID string, from time.Time) ([]storage.DailyBucket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date_trunc('day', ch.clicked_at AT TIME ZONE 'UTC') AS day,
		        COUNT(*) AS clicks,
		        COUNT(DISTINCT ch.ip_address) AS visitors
		 FROM click_history ch
		 JOIN urls u ON u.id = ch.url_id
		 WHERE u.owner_id = $1 AND ch.clicked_at >= $2
		 GROUP BY day
		 ORDER BY day;`,
		ownerID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]storage.DailyBucket, 0)
	for rows.Next() {
		var b storage.DailyBucket
		if err := rows.Scan(&b.Day, &b.Clicks, &b.Visitors); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

func (r *URLRepository) WindowTotals(ctx context.Context, ownerID string, from time.Time) (int64, int64, error) {
	var clicks, visitors int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT ch.ip_address)
		 FROM click_history ch
		 JOIN urls u ON u.id = ch.url_id
		 WHERE u.owner_id = $1 AND ch.clicked_at >= $2;`,
		ownerID, from).Scan(&clicks, &visitors)
	if err != nil {
		return 0, 0, err
	}
	return clicks, visitors, nil
}

func (r *URLRepository) URLSummary(ctx context.Context, urlID string) (*storage.ClickSummary, error) {
	var s storage.ClickSummary
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT ip_address), MAX(clicked_at)
		 FROM click_history WHERE url_id = $1;`,
		urlID).Scan(&s.TotalClicks, &s.UniqueVisitors, &last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		s.LastClick = &last.Time
	}
	return &s, nil
}

// UserRepository implements storage.UserStore.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = "id, username, email, password_hash, is_active, created_at"

func scanUser(row interface{ Scan(...any) error }) (*storage.UserRecord, error) {
	var u storage.UserRecord
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u storage.UserRecord) (*storage.UserRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns+`;`,
		u.ID, u.Username, u.Email, u.PasswordHash)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrConflict
		}
		r.logger.Error("insert user", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*storage.UserRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1;", username)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id string) (*storage.UserRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1;", id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
