package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/salita/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const timeLayout = time.RFC3339Nano

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db, logger: slog.Default()}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const recordColumns = `item_id, category, last_reviewed, next_review,
	difficulty_level, correct_streak, total_attempts, correct_attempts, ease`

// Get retrieves a review record by item id. Missing and undecodable rows both
// yield nil, nil.
func (db *DB) Get(ctx context.Context, itemID string) (*domain.ReviewRecord, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM review_records WHERE item_id = ?`, itemID)

	raw := make([]any, 9)
	if err := row.Scan(pointers(raw)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find review record %s: %w", itemID, err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		db.logger.Warn("Ignoring malformed review record", "item_id", itemID, "error", err)
		return nil, nil
	}
	return &record, nil
}

// Set inserts a review record or replaces the stored one.
func (db *DB) Set(ctx context.Context, r domain.ReviewRecord) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO review_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			category = excluded.category,
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review,
			difficulty_level = excluded.difficulty_level,
			correct_streak = excluded.correct_streak,
			total_attempts = excluded.total_attempts,
			correct_attempts = excluded.correct_attempts,
			ease = excluded.ease
	`,
		r.ItemID,
		string(r.Category),
		r.LastReviewed.UTC().Format(timeLayout),
		r.NextReview.UTC().Format(timeLayout),
		r.DifficultyLevel,
		r.CorrectStreak,
		r.TotalAttempts,
		r.CorrectAttempts,
		r.Ease,
	)
	if err != nil {
		return fmt.Errorf("failed to save review record %s: %w", r.ItemID, err)
	}
	return nil
}

// GetAll retrieves every decodable record, optionally restricted to a category.
func (db *DB) GetAll(ctx context.Context, category domain.Category) ([]domain.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM review_records`
	var args []any
	if category != domain.AnyCategory {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY item_id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}
	defer rows.Close()

	var records []domain.ReviewRecord
	for rows.Next() {
		raw := make([]any, 9)
		if err := rows.Scan(pointers(raw)...); err != nil {
			return nil, fmt.Errorf("failed to scan review record row: %w", err)
		}
		record, err := decodeRecord(raw)
		if err != nil {
			db.logger.Warn("Skipping malformed review record", "item_id", raw[0], "error", err)
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review records: %w", err)
	}
	return records, nil
}

// Delete removes a record and its answer history.
func (db *DB) Delete(ctx context.Context, itemID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete of %s: %w", itemID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_records WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete review record %s: %w", itemID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM answer_log WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to delete answer log for %s: %w", itemID, err)
	}
	return tx.Commit()
}

// AppendAnswer stores a single answer in the log.
func (db *DB) AppendAnswer(ctx context.Context, entry domain.AnswerLog) error {
	correct := 0
	if entry.Correct {
		correct = 1
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO answer_log (item_id, category, correct, answered_at)
		VALUES (?, ?, ?, ?)
	`, entry.ItemID, string(entry.Category), correct, entry.AnsweredAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to append answer for %s: %w", entry.ItemID, err)
	}
	return nil
}

// History returns the logged answers of an item, newest first.
func (db *DB) History(ctx context.Context, itemID string) ([]domain.AnswerLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id, category, correct, answered_at
		FROM answer_log WHERE item_id = ?
		ORDER BY id DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", itemID, err)
	}
	defer rows.Close()

	var entries []domain.AnswerLog
	for rows.Next() {
		var (
			e          domain.AnswerLog
			category   string
			correct    int
			answeredAt string
		)
		if err := rows.Scan(&e.ItemID, &category, &correct, &answeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer row for %s: %w", itemID, err)
		}
		t, err := time.Parse(timeLayout, answeredAt)
		if err != nil {
			db.logger.Warn("Skipping answer with bad timestamp", "item_id", itemID, "error", err)
			continue
		}
		e.Category = domain.Category(category)
		e.Correct = correct != 0
		e.AnsweredAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func pointers(raw []any) []any {
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	return ptrs
}

// decodeRecord converts a raw row into a record and checks its invariants.
func decodeRecord(raw []any) (domain.ReviewRecord, error) {
	var (
		r   domain.ReviewRecord
		err error
	)
	fail := func(column string, e error) (domain.ReviewRecord, error) {
		return domain.ReviewRecord{}, fmt.Errorf("column %s: %w", column, e)
	}

	if r.ItemID, err = asString(raw[0]); err != nil {
		return fail("item_id", err)
	}
	category, err := asString(raw[1])
	if err != nil {
		return fail("category", err)
	}
	if r.Category, err = domain.ParseCategory(category); err != nil {
		return fail("category", err)
	}
	if r.LastReviewed, err = asTime(raw[2]); err != nil {
		return fail("last_reviewed", err)
	}
	if r.NextReview, err = asTime(raw[3]); err != nil {
		return fail("next_review", err)
	}
	if r.DifficultyLevel, err = asInt(raw[4]); err != nil {
		return fail("difficulty_level", err)
	}
	if r.CorrectStreak, err = asInt(raw[5]); err != nil {
		return fail("correct_streak", err)
	}
	if r.TotalAttempts, err = asInt(raw[6]); err != nil {
		return fail("total_attempts", err)
	}
	if r.CorrectAttempts, err = asInt(raw[7]); err != nil {
		return fail("correct_attempts", err)
	}
	if r.Ease, err = asFloat(raw[8]); err != nil {
		return fail("ease", err)
	}

	if !r.Valid() {
		return domain.ReviewRecord{}, errors.New("record violates invariants")
	}
	return r, nil
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("unexpected value %v (%T)", v, v)
}

func asTime(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s, err := asString(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(timeLayout, s)
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int64(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("unexpected value %v (%T)", v, v)
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("unexpected value %v (%T)", v, v)
}
