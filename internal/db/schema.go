package db

// Schema contains all SQL statements for the application database.
// The whole file is encrypted with SQLCipher; there is no separate
// unencrypted bootstrap database.
const Schema = `
-- Users table: accounts provisioned on first Google sign-in
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    google_sub TEXT UNIQUE,
    subscription_status TEXT NOT NULL DEFAULT 'free',
    subscription_id TEXT,
    stripe_customer_id TEXT,
    created_at INTEGER NOT NULL,
    last_login INTEGER
);
CREATE INDEX IF NOT EXISTS idx_users_stripe_customer ON users(stripe_customer_id);

-- Notes table: slug is globally unique so public note URLs never collide
CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    title TEXT NOT NULL CHECK(length(title) <= 200),
    content TEXT NOT NULL DEFAULT '' CHECK(length(content) <= 1048576),
    slug TEXT NOT NULL UNIQUE,
    image_url TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at DESC);

-- FTS5 virtual table for full-text note search
CREATE VIRTUAL TABLE IF NOT EXISTS fts_notes USING fts5(
    title,
    content,
    content='notes',
    content_rowid='rowid'
);

-- Trigger: sync FTS index on INSERT
CREATE TRIGGER IF NOT EXISTS notes_ai AFTER INSERT ON notes BEGIN
    INSERT INTO fts_notes(rowid, title, content)
    VALUES (new.rowid, new.title, new.content);
END;

-- Trigger: sync FTS index on DELETE
CREATE TRIGGER IF NOT EXISTS notes_ad AFTER DELETE ON notes BEGIN
    DELETE FROM fts_notes WHERE rowid = old.rowid;
END;

-- Trigger: sync FTS index on UPDATE
CREATE TRIGGER IF NOT EXISTS notes_au AFTER UPDATE ON notes BEGIN
    UPDATE fts_notes SET title = new.title, content = new.content
    WHERE rowid = new.rowid;
END;

-- Sessions table: active browser sessions
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    expires_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

-- Processed webhook events: idempotency guard for Stripe webhooks
CREATE TABLE IF NOT EXISTS processed_webhook_events (
    event_id TEXT PRIMARY KEY,
    processed_at INTEGER NOT NULL
);
`
