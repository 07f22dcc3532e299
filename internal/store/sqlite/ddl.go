package sqlite

// Schema for the sqlite driver. Sessions are append-only; daily_stats is an
// upsert table keyed by user and calendar day.
const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id      TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    phase           TEXT NOT NULL,
    planned_minutes INTEGER NOT NULL,
    actual_seconds  INTEGER NOT NULL DEFAULT 0,
    started_at      TIMESTAMP NOT NULL,
    ended_at        TIMESTAMP,
    status          TEXT NOT NULL DEFAULT 'active',
    cycle_position  INTEGER NOT NULL DEFAULT 1,
    accelerated     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions (user_id, started_at DESC);

CREATE TABLE IF NOT EXISTS daily_stats (
    user_id         TEXT NOT NULL,
    day             TEXT NOT NULL,
    focus_started   INTEGER NOT NULL DEFAULT 0,
    focus_completed INTEGER NOT NULL DEFAULT 0,
    focus_stopped   INTEGER NOT NULL DEFAULT 0,
    break_started   INTEGER NOT NULL DEFAULT 0,
    break_completed INTEGER NOT NULL DEFAULT 0,
    break_stopped   INTEGER NOT NULL DEFAULT 0,
    focus_minutes   INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, day)
);
`
