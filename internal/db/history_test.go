package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/pose"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestHistory(db *DB) *History {
	h := NewHistory(db, "coords.txt")
	n := 0
	h.newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	return h
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewDBMigrates(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion, version)
	assert.False(t, dirty)

	// Running again is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestMigrateDownUp(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='session_events'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, db.MigrateUp())
	version, _, err = db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion, version)
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := NewDB(path)
	require.NoError(t, err)
	h := newTestHistory(db)
	require.NoError(t, h.Record(waypoint.Event{Kind: waypoint.EventEnabled, At: t0, Next: 1}))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	sessions, err := db.Sessions(0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHistoryRecordsSession(t *testing.T) {
	db := setupTestDB(t)
	h := newTestHistory(db)

	saved := waypoint.Sample{X: 1.5, Y: -2, Z: 3, Heading: 90, CloseBy: 3, Routed: true}
	events := []waypoint.Event{
		{Kind: waypoint.EventEnabled, At: t0, Next: 4},
		{Kind: waypoint.EventSaved, At: t0.Add(time.Second), Seq: 4, Sample: saved, Next: 5},
		{Kind: waypoint.EventSaveFailed, At: t0.Add(2 * time.Second), Seq: 5, Next: 5, Distance: 6},
		{Kind: waypoint.EventSaved, At: t0.Add(3 * time.Second), Seq: 5, Next: 6, Distance: 12},
		{Kind: waypoint.EventUndone, At: t0.Add(4 * time.Second), Seq: 5, Next: 5, Distance: 12},
		{Kind: waypoint.EventDisabled, At: t0.Add(5 * time.Second), Next: 5, Distance: 12},
	}
	for _, ev := range events {
		require.NoError(t, h.Record(ev))
	}
	assert.Empty(t, h.CurrentSession())

	s, err := db.Session("session-1")
	require.NoError(t, err)
	assert.Equal(t, "coords.txt", s.LogPath)
	assert.Equal(t, t0, s.StartedAt)
	assert.Equal(t, t0.Add(5*time.Second), s.EndedAt)
	assert.False(t, s.Open())
	assert.Equal(t, 4, s.FirstNext)
	assert.Equal(t, 5, s.LastNext)
	assert.Equal(t, 2, s.Saves)
	assert.Equal(t, 1, s.Failures)
	assert.Equal(t, 1, s.Undos)
	assert.Equal(t, 12.0, s.Distance)

	recs, err := db.Events("session-1")
	require.NoError(t, err)
	require.Len(t, recs, len(events))
	for i, rec := range recs {
		assert.Equal(t, events[i].Kind, rec.Kind)
		assert.Equal(t, events[i].At, rec.At)
		assert.Equal(t, events[i].Next, rec.Next)
	}
	assert.Equal(t, saved, recs[1].Sample)
	assert.Equal(t, waypoint.Sample{}, recs[0].Sample, "enable carries no sample")
}

func TestHistoryMultipleSessions(t *testing.T) {
	db := setupTestDB(t)
	h := newTestHistory(db)

	for i := 0; i < 3; i++ {
		at := t0.Add(time.Duration(i) * time.Hour)
		require.NoError(t, h.Record(waypoint.Event{Kind: waypoint.EventEnabled, At: at, Next: 1}))
		require.NoError(t, h.Record(waypoint.Event{Kind: waypoint.EventDisabled, At: at.Add(time.Minute), Next: 1}))
	}

	all, err := db.Sessions(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "session-3", all[0].ID, "newest first")

	recent, err := db.Sessions(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "session-2", recent[1].ID)
}

func TestHistoryImplicitSessionAndClose(t *testing.T) {
	db := setupTestDB(t)
	h := newTestHistory(db)

	require.NoError(t, h.Record(waypoint.Event{Kind: waypoint.EventSaved, At: t0, Seq: 7, Next: 8}))
	assert.Equal(t, "session-1", h.CurrentSession())

	s, err := db.Session("session-1")
	require.NoError(t, err)
	assert.True(t, s.Open())
	assert.Equal(t, 7, s.FirstNext)

	require.NoError(t, h.Close(t0.Add(time.Minute)))
	require.NoError(t, h.Close(t0.Add(time.Hour)), "closing twice is a no-op")

	s, err = db.Session("session-1")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(time.Minute), s.EndedAt)
}

func TestSessionNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.Session("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	recs, err := db.Events("nope")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestHistoryAsControllerJournal(t *testing.T) {
	db := setupTestDB(t)
	h := NewHistory(db, "/data/coords.txt")

	pos := r3.Vec{}
	ctrl := waypoint.NewController(waypoint.Config{
		Log:       waypoint.NewLog(fsutil.NewMemoryFileSystem(), "/data/coords.txt"),
		Presenter: marker.NewRegistry(),
		Poses: pose.ProviderFunc(func() (pose.Pose, bool) {
			return pose.Pose{Position: pos, Controllable: true, Alive: true}, true
		}),
		Notifier: waypoint.NotifierFunc(func(string) {}),
		Journal:  h,
	})

	require.NoError(t, ctrl.Enable())
	pos = r3.Vec{X: 10}
	require.Equal(t, waypoint.Saved, ctrl.OnTick())
	ctrl.Disable()

	sessions, err := db.Sessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].Saves)
	assert.Equal(t, 3, sessions[0].LastNext)
	assert.InDelta(t, 10.0, sessions[0].Distance, 1e-9)
	assert.Len(t, sessions[0].ID, 36, "uuid session id")
}
