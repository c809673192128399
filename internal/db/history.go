package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/coordrecorder/internal/waypoint"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Session summarises one enable/disable cycle.
type Session struct {
	ID        string
	LogPath   string
	StartedAt time.Time
	EndedAt   time.Time // zero while the session is open
	FirstNext int
	LastNext  int
	Saves     int
	Failures  int
	Undos     int
	Distance  float64
}

// Open reports whether the session has not been closed.
func (s Session) Open() bool { return s.EndedAt.IsZero() }

func (s Session) String() string {
	return fmt.Sprintf("%s %s saves=%d undos=%d failures=%d next=%d..%d",
		s.ID, s.StartedAt.Format(time.RFC3339), s.Saves, s.Undos, s.Failures, s.FirstNext, s.LastNext)
}

// EventRecord is a stored waypoint.Event.
type EventRecord struct {
	ID        int64
	SessionID string
	waypoint.Event
}

// History is a waypoint.Journal backed by the database. Each enabled event
// opens a new session; disabled closes it. Events arriving with no open
// session start one implicitly.
type History struct {
	db      *DB
	logPath string
	current string
	newID   func() string
}

// NewHistory returns a journal recording sessions of the log at logPath.
func NewHistory(db *DB, logPath string) *History {
	return &History{db: db, logPath: logPath, newID: uuid.NewString}
}

// CurrentSession returns the open session ID, or "".
func (h *History) CurrentSession() string { return h.current }

// Record implements waypoint.Journal.
func (h *History) Record(ev waypoint.Event) error {
	if ev.Kind == waypoint.EventEnabled || h.current == "" {
		if err := h.startSession(ev); err != nil {
			return err
		}
	}

	if err := h.insertEvent(ev); err != nil {
		return err
	}
	if err := h.updateSession(ev); err != nil {
		return err
	}

	if ev.Kind == waypoint.EventDisabled {
		h.current = ""
	}
	return nil
}

func (h *History) startSession(ev waypoint.Event) error {
	id := h.newID()
	first := ev.Next
	if ev.Kind == waypoint.EventSaved {
		first = ev.Seq
	}
	_, err := h.db.Exec(`
		INSERT INTO sessions (session_id, log_path, started_ms, first_next, last_next)
		VALUES (?, ?, ?, ?, ?)`,
		id, h.logPath, ev.At.UnixMilli(), first, ev.Next)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	h.current = id
	return nil
}

func (h *History) insertEvent(ev waypoint.Event) error {
	var x, y, z, heading sql.NullFloat64
	var closeBy sql.NullInt64
	var routed sql.NullBool
	if ev.Kind == waypoint.EventSaved || ev.Kind == waypoint.EventSaveFailed || ev.Kind == waypoint.EventUndone {
		s := ev.Sample
		x = sql.NullFloat64{Float64: s.X, Valid: true}
		y = sql.NullFloat64{Float64: s.Y, Valid: true}
		z = sql.NullFloat64{Float64: s.Z, Valid: true}
		heading = sql.NullFloat64{Float64: s.Heading, Valid: true}
		closeBy = sql.NullInt64{Int64: int64(s.CloseBy), Valid: true}
		routed = sql.NullBool{Bool: s.Routed, Valid: true}
	}

	_, err := h.db.Exec(`
		INSERT INTO session_events (session_id, kind, at_ms, seq, x, y, z, heading, close_by, routed, next_seq, distance_m)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.current, string(ev.Kind), ev.At.UnixMilli(), ev.Seq,
		x, y, z, heading, closeBy, routed, ev.Next, ev.Distance)
	if err != nil {
		return fmt.Errorf("failed to insert %s event: %w", ev.Kind, err)
	}
	return nil
}

func (h *History) updateSession(ev waypoint.Event) error {
	var counter string
	switch ev.Kind {
	case waypoint.EventSaved:
		counter = "saves = saves + 1,"
	case waypoint.EventSaveFailed:
		counter = "failures = failures + 1,"
	case waypoint.EventUndone:
		counter = "undos = undos + 1,"
	}

	ended := sql.NullInt64{}
	if ev.Kind == waypoint.EventDisabled {
		ended = sql.NullInt64{Int64: ev.At.UnixMilli(), Valid: true}
	}

	_, err := h.db.Exec(`
		UPDATE sessions SET `+counter+`
			last_next = ?,
			distance_m = MAX(distance_m, ?),
			ended_ms = COALESCE(?, ended_ms)
		WHERE session_id = ?`,
		ev.Next, ev.Distance, ended, h.current)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Close marks the open session, if any, as ended at t.
func (h *History) Close(t time.Time) error {
	if h.current == "" {
		return nil
	}
	_, err := h.db.Exec(`UPDATE sessions SET ended_ms = ? WHERE session_id = ? AND ended_ms IS NULL`,
		t.UnixMilli(), h.current)
	h.current = ""
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

const sessionColumns = `session_id, log_path, started_ms, ended_ms, first_next, last_next, saves, failures, undos, distance_m`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	var started int64
	var ended sql.NullInt64
	if err := row.Scan(&s.ID, &s.LogPath, &started, &ended, &s.FirstNext, &s.LastNext,
		&s.Saves, &s.Failures, &s.Undos, &s.Distance); err != nil {
		return Session{}, err
	}
	s.StartedAt = time.UnixMilli(started).UTC()
	if ended.Valid {
		s.EndedAt = time.UnixMilli(ended.Int64).UTC()
	}
	return s, nil
}

// Sessions returns the most recent sessions, newest first. limit <= 0
// returns all of them.
func (db *DB) Sessions(limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_ms DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Session returns a single session by ID.
func (db *DB) Session(id string) (Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return s, nil
}

// Events returns a session's events in the order they were recorded.
func (db *DB) Events(sessionID string) ([]EventRecord, error) {
	rows, err := db.Query(`
		SELECT event_id, session_id, kind, at_ms, seq, x, y, z, heading, close_by, routed, next_seq, distance_m
		FROM session_events WHERE session_id = ? ORDER BY event_id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		var kind string
		var at int64
		var x, y, z, heading sql.NullFloat64
		var closeBy sql.NullInt64
		var routed sql.NullBool
		if err := rows.Scan(&rec.ID, &rec.SessionID, &kind, &at, &rec.Seq, &x, &y, &z, &heading,
			&closeBy, &routed, &rec.Next, &rec.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		rec.Kind = waypoint.EventKind(kind)
		rec.At = time.UnixMilli(at).UTC()
		rec.Sample = waypoint.Sample{
			X:       x.Float64,
			Y:       y.Float64,
			Z:       z.Float64,
			Heading: heading.Float64,
			CloseBy: int(closeBy.Int64),
			Routed:  routed.Bool,
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
