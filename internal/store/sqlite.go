package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/amreeva/wellness-companion/internal/domain"
	_ "modernc.org/sqlite"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 100
)

// SQLiteStore implements Store using SQLite. Profiles are rows keyed by
// user_id; messages are rows keyed by (user_id, sort_key) so range reads come
// back in creation order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed store.
func NewSQLite(dbPath string) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

// initSchema provisions tables. Idempotent and safe to call concurrently at
// process start.
func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS profiles (
		user_id INTEGER PRIMARY KEY,
		age INTEGER,
		background TEXT,
		preferences_json TEXT NOT NULL DEFAULT '{}',
		history_json TEXT NOT NULL DEFAULT '[]',
		summaries_json TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		user_id INTEGER NOT NULL,
		sort_key TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		keywords_json TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (user_id, sort_key)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProfile(ctx context.Context, q queryer, userID int64) (*domain.Profile, error) {
	query := `
		SELECT user_id, age, background, preferences_json,
		       history_json, summaries_json, created_at, updated_at
		FROM profiles WHERE user_id = ?`

	row := q.QueryRowContext(ctx, query, userID)

	var p domain.Profile
	var age sql.NullInt64
	var background sql.NullString
	var prefsJSON, historyJSON, summariesJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.UserID, &age, &background, &prefsJSON,
		&historyJSON, &summariesJSON, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile row: %w", err)
	}

	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	p.Background = background.String
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := json.Unmarshal([]byte(prefsJSON), &p.Preferences); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &p.History); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if err := json.Unmarshal([]byte(summariesJSON), &p.Summaries); err != nil {
		return nil, fmt.Errorf("decode summaries: %w", err)
	}

	return &p, nil
}

// GetProfile retrieves a profile by user ID.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	return getProfile(ctx, s.db, userID)
}

// PutProfile creates or merges the scalar fields of a profile.
func (s *SQLiteStore) PutProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	existing, err := getProfile(ctx, tx, userID)
	if err != nil && err != ErrNotFound {
		return nil, err
	}

	if existing == nil {
		prefs := upd.Preferences
		if prefs == nil {
			prefs = map[string]any{}
		}
		prefsJSON, err := json.Marshal(prefs)
		if err != nil {
			return nil, fmt.Errorf("encode preferences: %w", err)
		}

		var age any
		if upd.Age != nil {
			age = *upd.Age
		}
		var background any
		if upd.Background != nil {
			background = *upd.Background
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, age, background, preferences_json, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, age, background, string(prefsJSON), now.Unix(), now.Unix(),
		)
		if err != nil {
			return nil, fmt.Errorf("insert profile: %w", err)
		}
	} else {
		if upd.Age != nil {
			existing.Age = upd.Age
		}
		if upd.Background != nil {
			existing.Background = *upd.Background
		}
		if upd.Preferences != nil {
			existing.Preferences = upd.Preferences
		}
		prefsJSON, err := json.Marshal(existing.Preferences)
		if err != nil {
			return nil, fmt.Errorf("encode preferences: %w", err)
		}

		var age any
		if existing.Age != nil {
			age = *existing.Age
		}
		var background any
		if existing.Background != "" {
			background = existing.Background
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE profiles SET age = ?, background = ?, preferences_json = ?, updated_at = ?
			WHERE user_id = ?`,
			age, background, string(prefsJSON), now.Unix(), userID,
		)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	updated, err := getProfile(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile write: %w", err)
	}
	return updated, nil
}

// DeleteProfile removes a profile, reporting whether one existed.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, userID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// AppendSummary appends a summary to the profile's summaries sequence,
// creating the profile when absent.
func (s *SQLiteStore) AppendSummary(ctx context.Context, userID int64, summary domain.Summary) error {
	return s.appendProfileList(ctx, userID, func(p *domain.Profile) {
		p.Summaries = append(p.Summaries, summary)
	})
}

// AppendHistoryEntry appends a keyword/snippet trace, keeping only the most
// recent domain.HistoryRetention entries.
func (s *SQLiteStore) AppendHistoryEntry(ctx context.Context, userID int64, entry domain.HistoryEntry) error {
	return s.appendProfileList(ctx, userID, func(p *domain.Profile) {
		p.History = append(p.History, entry)
		if len(p.History) > domain.HistoryRetention {
			p.History = p.History[len(p.History)-domain.HistoryRetention:]
		}
	})
}

// appendProfileList runs a read-modify-write on the profile's append-only
// sequences inside one transaction, lazily creating the profile row.
func (s *SQLiteStore) appendProfileList(ctx context.Context, userID int64, mutate func(*domain.Profile)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	p, err := getProfile(ctx, tx, userID)
	if err == ErrNotFound {
		p = &domain.Profile{UserID: userID, CreatedAt: now}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, created_at, updated_at) VALUES (?, ?, ?)`,
			userID, now.Unix(), now.Unix(),
		); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
	} else if err != nil {
		return err
	}

	mutate(p)

	historyJSON, err := json.Marshal(p.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	summariesJSON, err := json.Marshal(p.Summaries)
	if err != nil {
		return fmt.Errorf("encode summaries: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE profiles SET history_json = ?, summaries_json = ?, updated_at = ?
		WHERE user_id = ?`,
		string(historyJSON), string(summariesJSON), now.Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("update profile sequences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile append: %w", err)
	}
	return nil
}

// AppendMessage stores one conversation turn with its composite ordering key.
func (s *SQLiteStore) AppendMessage(ctx context.Context, userID int64, role domain.Role, content string, kw []string) (*domain.Message, error) {
	if kw == nil {
		kw = []string{}
	}
	kwJSON, err := json.Marshal(kw)
	if err != nil {
		return nil, fmt.Errorf("encode keywords: %w", err)
	}

	msg := &domain.Message{
		UserID:   userID,
		SortKey:  domain.NewSortKey(time.Now(), role),
		Role:     role,
		Content:  content,
		Keywords: kw,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (user_id, sort_key, role, content, keywords_json)
		VALUES (?, ?, ?, ?, ?)`,
		msg.UserID, msg.SortKey, string(msg.Role), msg.Content, string(kwJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// QueryMessages returns the newest messages up to limit in chronological order.
func (s *SQLiteStore) QueryMessages(ctx context.Context, userID int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, sort_key, role, content, keywords_json
		FROM messages WHERE user_id = ?
		ORDER BY sort_key DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Newest-first from the index scan; flip into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AllMessages returns the full message set in chronological order.
func (s *SQLiteStore) AllMessages(ctx context.Context, userID int64) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, sort_key, role, content, keywords_json
		FROM messages WHERE user_id = ?
		ORDER BY sort_key ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query all messages: %w", err)
	}
	return scanMessages(rows)
}

// DeleteAllMessages removes every message for the user.
func (s *SQLiteStore) DeleteAllMessages(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete messages: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	defer func() { _ = rows.Close() }()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var role, kwJSON string
		if err := rows.Scan(&m.UserID, &m.SortKey, &role, &m.Content, &kwJSON); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Role = domain.Role(role)
		if err := json.Unmarshal([]byte(kwJSON), &m.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
