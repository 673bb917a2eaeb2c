package database

// Schema is the full sqlite schema at the latest migration version.
// It mirrors the embedded migration files and is applied directly to
// in-memory databases, where running the migration machinery buys nothing.
const Schema = `
CREATE TABLE items (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    kind          TEXT NOT NULL CHECK (kind IN ('file', 'folder')),
    size          INTEGER,
    path          TEXT NOT NULL UNIQUE,
    parent_dir    TEXT NOT NULL,
    mime_type     TEXT NOT NULL DEFAULT '',
    content       TEXT NOT NULL DEFAULT '',
    last_modified TIMESTAMP NOT NULL
);

CREATE INDEX idx_items_parent_dir ON items (parent_dir);

CREATE TABLE audit_logs (
    id        TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,
    ip        TEXT NOT NULL,
    mac       TEXT NOT NULL,
    action    TEXT NOT NULL,
    details   TEXT NOT NULL
);

CREATE INDEX idx_audit_logs_timestamp ON audit_logs (timestamp);
`
