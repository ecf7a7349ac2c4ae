// ABOUTME: Database schema definitions
// ABOUTME: Handles SQLite table creation and seeding of the default project
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

INSERT INTO projects (id, name) SELECT 1, 'Default' WHERE NOT EXISTS (SELECT 1 FROM projects);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	revoked_at INTEGER,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS people (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL DEFAULT 1,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	manager_name TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	notes TEXT NOT NULL DEFAULT '',
	frequency_days INTEGER CHECK(frequency_days IS NULL OR frequency_days >= 0),
	created_at INTEGER NOT NULL DEFAULT (unixepoch()),
	updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_people_project ON people(project_id);

CREATE TABLE IF NOT EXISTS interactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL DEFAULT 1,
	person_id INTEGER NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('call', 'email', 'meeting', 'text', 'other')),
	summary TEXT NOT NULL DEFAULT '',
	date INTEGER NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (unixepoch()),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interactions_person_date ON interactions(person_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_project ON interactions(project_id);

CREATE TABLE IF NOT EXISTS reminders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL DEFAULT 1,
	person_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	due_date INTEGER,
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'done')),
	created_at INTEGER NOT NULL DEFAULT (unixepoch()),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reminders_project_status ON reminders(project_id, status);
CREATE INDEX IF NOT EXISTS idx_reminders_person ON reminders(person_id);

CREATE TABLE IF NOT EXISTS campaigns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL DEFAULT 1,
	title TEXT NOT NULL,
	subject_template TEXT NOT NULL DEFAULT '',
	body_template TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'completed', 'archived')),
	created_at INTEGER NOT NULL DEFAULT (unixepoch()),
	updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_campaigns_project ON campaigns(project_id);

CREATE TABLE IF NOT EXISTS campaign_recipients (
	campaign_id INTEGER NOT NULL,
	person_id INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'sent')),
	sent_at INTEGER,
	PRIMARY KEY (campaign_id, person_id),
	FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_campaign_recipients_person ON campaign_recipients(person_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
