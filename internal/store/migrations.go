package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS addresses (
	address         TEXT PRIMARY KEY,
	provider        TEXT NOT NULL,
	created_at      DATETIME NOT NULL,
	last_updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	address      TEXT NOT NULL,
	id           TEXT NOT NULL,
	position     INTEGER NOT NULL,
	subject      TEXT NOT NULL DEFAULT '',
	sender       TEXT NOT NULL DEFAULT '',
	date         TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	size         INTEGER NOT NULL DEFAULT 0,
	full_content INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (address, id),
	FOREIGN KEY (address) REFERENCES addresses(address) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	provider   TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_address ON messages(address);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
