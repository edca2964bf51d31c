package database

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS disconnected_accounts (
    email_account_id INTEGER PRIMARY KEY,
    from_email TEXT NOT NULL DEFAULT '',
    from_name TEXT NOT NULL DEFAULT '',
    account_type TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    disconnection_type TEXT NOT NULL,
    first_disconnected_at DATETIME NOT NULL,
    last_seen_disconnected_at DATETIME NOT NULL,
    currently_disconnected BOOLEAN NOT NULL DEFAULT true,
    disconnect_count INTEGER NOT NULL DEFAULT 1,
    last_payload TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_disconnected_current ON disconnected_accounts(currently_disconnected);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS disconnected_accounts (
    email_account_id BIGINT PRIMARY KEY,
    from_email TEXT NOT NULL DEFAULT '',
    from_name TEXT NOT NULL DEFAULT '',
    account_type TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    disconnection_type TEXT NOT NULL,
    first_disconnected_at TIMESTAMPTZ NOT NULL,
    last_seen_disconnected_at TIMESTAMPTZ NOT NULL,
    currently_disconnected BOOLEAN NOT NULL DEFAULT TRUE,
    disconnect_count INTEGER NOT NULL DEFAULT 1,
    last_payload JSONB NOT NULL DEFAULT '{}'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_disconnected_current ON disconnected_accounts(currently_disconnected);
`

// selectColumns lists the columns of models.DisconnectedAccount in table order
const selectColumns = `email_account_id, from_email, from_name, account_type, tags, disconnection_type,
    first_disconnected_at, last_seen_disconnected_at, currently_disconnected, disconnect_count`
