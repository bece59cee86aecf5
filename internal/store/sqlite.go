package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mkral/tempmail/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys so deleting an address cascades to its messages.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertAddress inserts or replaces an address record. The access token
// is deliberately not written; tokens belong to the credential store.
func (s *SQLiteStore) UpsertAddress(ctx context.Context, addr model.Address) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO addresses (address, provider, created_at, last_updated_at)
		VALUES (?, ?, ?, ?)`,
		addr.Address, addr.Provider, addr.CreatedAt.UTC(), addr.LastUpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting address %s: %w", addr.Address, err)
	}
	return nil
}

// GetAddresses retrieves all stored addresses ordered by last update,
// most recent first.
func (s *SQLiteStore) GetAddresses(ctx context.Context) ([]model.Address, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT address, provider, created_at, last_updated_at FROM addresses ORDER BY last_updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying addresses: %w", err)
	}
	defer rows.Close()

	var addrs []model.Address
	for rows.Next() {
		var (
			addr      model.Address
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&addr.Address, &addr.Provider, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning address row: %w", err)
		}
		addr.CreatedAt = createdAt
		addr.LastUpdatedAt = updatedAt
		addrs = append(addrs, addr)
	}

	return addrs, rows.Err()
}

// DeleteAddress removes an address and its cached messages in one
// transaction. The message rows are deleted explicitly rather than
// relying on the schema cascade: the foreign_keys pragma is
// per-connection in SQLite, and a pooled connection that never saw the
// pragma would skip the cascade and leave orphans.
func (s *SQLiteStore) DeleteAddress(ctx context.Context, address string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE address = ?", address); err != nil {
		return fmt.Errorf("deleting messages for %s: %w", address, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM addresses WHERE address = ?", address); err != nil {
		return fmt.Errorf("deleting address %s: %w", address, err)
	}

	return tx.Commit()
}

// ReplaceMessages swaps the full cached message set for an address in a
// single transaction, recording slice order as the position column.
func (s *SQLiteStore) ReplaceMessages(ctx context.Context, address string, msgs []model.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE address = ?", address); err != nil {
		return fmt.Errorf("clearing messages for %s: %w", address, err)
	}

	const query = `
		INSERT INTO messages (
			address, id, position, subject, sender, date, body, size, full_content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing message insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range msgs {
		_, err = stmt.ExecContext(ctx,
			address, m.ID, i, m.Subject, m.From, m.Date, m.Body, m.Size,
			boolToInt(m.FetchedFullContent),
		)
		if err != nil {
			return fmt.Errorf("inserting message %s for %s: %w", m.ID, address, err)
		}
	}

	return tx.Commit()
}

// GetMessages retrieves the cached messages for an address in discovery
// order.
func (s *SQLiteStore) GetMessages(ctx context.Context, address string) ([]model.Message, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, subject, sender, date, body, size, full_content
		FROM messages WHERE address = ? ORDER BY position`,
		address,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages for %s: %w", address, err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// GetAllMessages retrieves cached messages for every address, keyed by
// address, each slice in discovery order.
func (s *SQLiteStore) GetAllMessages(ctx context.Context) (map[string][]model.Message, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT address, id, subject, sender, date, body, size, full_content
		FROM messages ORDER BY address, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying all messages: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Message)
	for rows.Next() {
		var (
			address     string
			m           model.Message
			fullContent int
		)
		err := rows.Scan(
			&address, &m.ID, &m.Subject, &m.From, &m.Date, &m.Body, &m.Size, &fullContent,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.FetchedFullContent = fullContent != 0
		out[address] = append(out[address], m)
	}

	return out, rows.Err()
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, address, provider, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Address, n.Provider, n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var (
			n         model.Notification
			readInt   int
			createdAt time.Time
		)
		err := rows.Scan(&n.ID, &n.Address, &n.Provider, &n.Message, &readInt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Read = readInt != 0
		n.CreatedAt = createdAt
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// scanMessage scans a message row from a sqlx.Rows result set.
func scanMessage(rows *sqlx.Rows) (model.Message, error) {
	var (
		m           model.Message
		fullContent int
	)

	err := rows.Scan(&m.ID, &m.Subject, &m.From, &m.Date, &m.Body, &m.Size, &fullContent)
	if err != nil {
		return model.Message{}, fmt.Errorf("scanning message row: %w", err)
	}

	m.FetchedFullContent = fullContent != 0
	return m, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
