package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/focusflow/focusflow/internal/model"
	"github.com/focusflow/focusflow/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a Postgres-backed store and ensures the schema exists.
func New(dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wires a store over an existing connection.
func NewWithDB(db *sql.DB) (store.Store, error) {
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &pgStore{db: db}, nil
}

type pgStore struct{ db *sql.DB }

func (s *pgStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *pgStore) Days() store.Days         { return &days{db: s.db} }
func (s *pgStore) Close() error             { return s.db.Close() }

// HealthPing implements health.Pinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Sessions ---

type sessions struct{ db *sql.DB }

func (r *sessions) Create(ctx context.Context, m *model.Session) (*model.Session, error) {
	id := m.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	started := m.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO sessions (session_id, user_id, phase, planned_minutes, started_at, status, cycle_position, accelerated)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, id, m.UserID, string(m.Phase), m.PlannedMinutes, started, model.SessionActive, m.CyclePosition, m.Accelerated)
	if err != nil {
		return nil, err
	}
	out := *m
	out.SessionID = id
	out.StartedAt = started
	out.Status = model.SessionActive
	return &out, nil
}

func (r *sessions) Finalize(ctx context.Context, sessionID string, completed bool, actualSeconds int) error {
	status := model.SessionStopped
	if completed {
		status = model.SessionCompleted
	}
	res, err := r.db.ExecContext(ctx, `
        UPDATE sessions SET status=$1, actual_seconds=$2, ended_at=$3
        WHERE session_id=$4 AND status=$5
    `, status, actualSeconds, time.Now().UTC(), sessionID, model.SessionActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var st string
		row := r.db.QueryRowContext(ctx, `SELECT status FROM sessions WHERE session_id=$1`, sessionID)
		if err := row.Scan(&st); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.ErrNotFound
			}
			return err
		}
		existing := model.Session{Status: st}
		if existing.Finalized() {
			return model.ErrDuplicateCompletion
		}
	}
	return nil
}

func (r *sessions) GetByID(ctx context.Context, sessionID string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT session_id, user_id, phase, planned_minutes, actual_seconds, started_at, ended_at, status, cycle_position, accelerated
        FROM sessions WHERE session_id=$1
    `, sessionID)
	return scanSession(row)
}

func (r *sessions) ListRecent(ctx context.Context, userID string, limit int) ([]*model.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT session_id, user_id, phase, planned_minutes, actual_seconds, started_at, ended_at, status, cycle_position, accelerated
        FROM sessions WHERE user_id=$1 ORDER BY started_at DESC LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	var phase string
	var ended sql.NullTime
	if err := row.Scan(&s.SessionID, &s.UserID, &phase, &s.PlannedMinutes, &s.ActualSeconds, &s.StartedAt, &ended, &s.Status, &s.CyclePosition, &s.Accelerated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	s.Phase = model.PhaseType(phase)
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return &s, nil
}

// --- Days ---

type days struct{ db *sql.DB }

func (r *days) Increment(ctx context.Context, userID, day string, phase model.PhaseType, event store.SessionEvent, focusMinutes int) error {
	d := store.DeltaFor(phase, event, focusMinutes)
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO daily_stats (user_id, day, focus_started, focus_completed, focus_stopped, break_started, break_completed, break_stopped, focus_minutes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (user_id, day) DO UPDATE SET
            focus_started   = daily_stats.focus_started   + EXCLUDED.focus_started,
            focus_completed = daily_stats.focus_completed + EXCLUDED.focus_completed,
            focus_stopped   = daily_stats.focus_stopped   + EXCLUDED.focus_stopped,
            break_started   = daily_stats.break_started   + EXCLUDED.break_started,
            break_completed = daily_stats.break_completed + EXCLUDED.break_completed,
            break_stopped   = daily_stats.break_stopped   + EXCLUDED.break_stopped,
            focus_minutes   = daily_stats.focus_minutes   + EXCLUDED.focus_minutes
    `, userID, day, d.FocusStarted, d.FocusCompleted, d.FocusStopped, d.BreakStarted, d.BreakCompleted, d.BreakStopped, d.FocusMinutes)
	return err
}

func (r *days) Get(ctx context.Context, userID, day string) (*model.DailyStats, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT user_id, day, focus_started, focus_completed, focus_stopped, break_started, break_completed, break_stopped, focus_minutes
        FROM daily_stats WHERE user_id=$1 AND day=$2
    `, userID, day)
	var d model.DailyStats
	if err := row.Scan(&d.UserID, &d.Day, &d.FocusStarted, &d.FocusCompleted, &d.FocusStopped, &d.BreakStarted, &d.BreakCompleted, &d.BreakStopped, &d.FocusMinutes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *days) Range(ctx context.Context, userID, from, to string) ([]*model.DailyStats, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, day, focus_started, focus_completed, focus_stopped, break_started, break_completed, break_stopped, focus_minutes
        FROM daily_stats WHERE user_id=$1 AND day>=$2 AND day<=$3 ORDER BY day ASC
    `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.DailyStats
	for rows.Next() {
		var d model.DailyStats
		if err := rows.Scan(&d.UserID, &d.Day, &d.FocusStarted, &d.FocusCompleted, &d.FocusStopped, &d.BreakStarted, &d.BreakCompleted, &d.BreakStopped, &d.FocusMinutes); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
