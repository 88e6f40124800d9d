package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"wildwise/model"
)

// SQLiteStorage persists conversations in a sqlite database, one row per
// message. It implements model.HistoryPersister for a single session key.
type SQLiteStorage struct {
	db        *sql.DB
	sessionID string
}

func NewSQLiteStorage(dbPath, sessionID string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db, sessionID: sessionID}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (ss *SQLiteStorage) initialize() error {
	// research holds the JSON list, or NULL when the answer cited nothing.
	// Timestamps are unix nanoseconds, 0 for none.
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		research TEXT,
		image_url TEXT NOT NULL DEFAULT '',
		failed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, position)
	);
	`

	_, err := ss.db.Exec(schema)
	return err
}

// Save replaces the stored history with history in one transaction
func (ss *SQLiteStorage) Save(history []model.Message) error {
	tx, err := ss.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixNano()
	_, err = tx.Exec(`
		INSERT INTO sessions (id, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at
	`, ss.sessionID, now, now)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, ss.sessionID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (session_id, position, sender, text, research, image_url, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range history {
		var research sql.NullString
		if msg.Research != nil {
			data, err := json.Marshal(msg.Research)
			if err != nil {
				return fmt.Errorf("failed to marshal research: %w", err)
			}
			research = sql.NullString{String: string(data), Valid: true}
		}

		var createdAt int64
		if !msg.Timestamp.IsZero() {
			createdAt = msg.Timestamp.UnixNano()
		}

		if _, err := stmt.Exec(ss.sessionID, i, string(msg.Sender), msg.Text, research, msg.ImageURL, msg.Failed, createdAt); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load returns the stored history, or model.ErrNoHistory when the session
// key has never been saved
func (ss *SQLiteStorage) Load() ([]model.Message, error) {
	var id string
	err := ss.db.QueryRow(`SELECT id FROM sessions WHERE id = ?`, ss.sessionID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	rows, err := ss.db.Query(`
		SELECT sender, text, research, image_url, failed, created_at
		FROM messages WHERE session_id = ? ORDER BY position
	`, ss.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	history := []model.Message{}
	for rows.Next() {
		var (
			msg       model.Message
			sender    string
			research  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&sender, &msg.Text, &research, &msg.ImageURL, &msg.Failed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Sender = model.Sender(sender)
		if research.Valid {
			msg.Research = []model.ResearchItem{}
			if err := json.Unmarshal([]byte(research.String), &msg.Research); err != nil {
				return nil, fmt.Errorf("failed to unmarshal research: %w", err)
			}
		}
		if createdAt != 0 {
			msg.Timestamp = time.Unix(0, createdAt)
		}

		history = append(history, msg)
	}

	return history, rows.Err()
}

func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}
