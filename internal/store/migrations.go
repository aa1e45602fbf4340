package store

// migration holds a single schema migration with its target version and SQL.
// The DDL sticks to the type names and clauses shared by Postgres and
// SQLite so the same store runs against either backend.
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

CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	full_name  TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'staff',
	avatar_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'completed', 'deleted')),
	deadline     TIMESTAMP,
	creator_id   TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	deleted_at   TIMESTAMP
);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	PRIMARY KEY (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	recipient_id   TEXT NOT NULL,
	sender_id      TEXT,
	type           TEXT NOT NULL,
	title          TEXT NOT NULL DEFAULT '',
	message        TEXT NOT NULL DEFAULT '',
	link           TEXT NOT NULL DEFAULT '',
	reference_type TEXT NOT NULL DEFAULT '',
	reference_id   TEXT NOT NULL DEFAULT '',
	read           INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	read_at        TIMESTAMP,
	dismissed      INTEGER NOT NULL DEFAULT 0 CHECK(dismissed IN (0, 1)),
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	id          TEXT PRIMARY KEY,
	author_id   TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	parent_id   TEXT REFERENCES comments(id) ON DELETE CASCADE,
	content     TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comment_tags (
	comment_id TEXT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	PRIMARY KEY (comment_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);
CREATE INDEX IF NOT EXISTS idx_task_assignees_user ON task_assignees(user_id);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, dismissed, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_link ON notifications(recipient_id, link, created_at);
CREATE INDEX IF NOT EXISTS idx_notifications_reference ON notifications(recipient_id, type, reference_id);
CREATE INDEX IF NOT EXISTS idx_comments_entity ON comments(entity_type, entity_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS materials (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	supplier   TEXT NOT NULL DEFAULT '',
	reference  TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS moodboards (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	season     TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS moodboard_items (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL REFERENCES moodboards(id) ON DELETE CASCADE,
	source     TEXT NOT NULL DEFAULT 'upload' CHECK(source IN ('upload', 'url')),
	title      TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moodboard_items_board ON moodboard_items(board_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS orders (
	id           TEXT PRIMARY KEY,
	vendor       TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	amount_cents BIGINT NOT NULL DEFAULT 0,
	currency     TEXT NOT NULL DEFAULT 'EUR',
	status       TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'sent', 'paid', 'overdue')),
	due_date     TIMESTAMP,
	invoice_url  TEXT NOT NULL DEFAULT '',
	created_by   TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id           TEXT PRIMARY KEY,
	vendor       TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	amount_cents BIGINT NOT NULL DEFAULT 0,
	currency     TEXT NOT NULL DEFAULT 'EUR',
	billing_interval TEXT NOT NULL DEFAULT 'monthly' CHECK(billing_interval IN ('monthly', 'yearly')),
	active       INTEGER NOT NULL DEFAULT 1 CHECK(active IN (0, 1)),
	renews_at    TIMESTAMP NOT NULL,
	created_by   TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
