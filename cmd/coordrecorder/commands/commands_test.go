package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/coordrecorder/internal/db"
)

// execute runs the CLI in a fresh working directory-independent root command.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workdir switches into an empty temp directory so no config or .env leaks in.
func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const walk = "0,0,0,90\n3,0,0,90\n6,0,0,90\n9,0,0,90\n12,0,0,90\n"

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "coordrecorder", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"record", "replay", "export", "log", "history", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
		assert.NotEmpty(t, sub.Long+sub.Short, name)
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "coordrecorder.json", flag.DefValue)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coordrecorder dev")
}

func TestRecordNeedsPoseSource(t *testing.T) {
	workdir(t)
	_, err := execute(t, "record")
	assert.Error(t, err)

	_, err = execute(t, "record", "--serial", "/dev/null", "--script", "walk.txt")
	assert.Error(t, err)
}

func TestReplayLogAndExport(t *testing.T) {
	dir := workdir(t)
	writeFile(t, "walk.txt", walk)
	logFile := filepath.Join(dir, "coords.txt")

	out, err := execute(t, "replay", "--script", "walk.txt", "--log", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Coords 1 saved")
	assert.Contains(t, out, "Coords 3 saved")
	assert.Contains(t, out, "next:4 unrouted closeby:3 x:12 y:0 z:0 heading:90")
	assert.Contains(t, out, "replayed 5 ticks, 3 lines in "+logFile)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "0,0,0,90,3,False\n6,0,0,90,3,False\n12,0,0,90,3,False\n", string(data))

	out, err = execute(t, "log", "--log", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "12.00")
	assert.Contains(t, out, "3 lines, next waypoint 4")

	htmlFile := filepath.Join(dir, "route.html")
	out, err = execute(t, "export", "--log", logFile, htmlFile)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 waypoints to "+htmlFile)
	html, err := os.ReadFile(htmlFile)
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")
}

func TestReplayResumesAcrossRuns(t *testing.T) {
	dir := workdir(t)
	writeFile(t, "walk.txt", walk)
	writeFile(t, "back.txt", "40,0,0,0\n")
	logFile := filepath.Join(dir, "coords.txt")

	_, err := execute(t, "replay", "--script", "walk.txt", "--log", logFile)
	require.NoError(t, err)
	out, err := execute(t, "replay", "--script", "back.txt", "--log", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Coords 4 saved")
	assert.Contains(t, out, "4 lines in")
}

func TestReplayBadSchedule(t *testing.T) {
	workdir(t)
	writeFile(t, "walk.txt", walk)
	_, err := execute(t, "replay", "--script", "walk.txt", "--schedule", "jump@1")
	assert.Error(t, err)
}

func TestExportEmptyLog(t *testing.T) {
	dir := workdir(t)
	_, err := execute(t, "export", "--log", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestExportFormatFor(t *testing.T) {
	f, err := exportFormatFor("", "")
	require.NoError(t, err)
	assert.Equal(t, "png", string(f))

	f, err = exportFormatFor("", "route.htm")
	require.NoError(t, err)
	assert.Equal(t, "html", string(f))

	f, err = exportFormatFor("png", "route.html")
	require.NoError(t, err)
	assert.Equal(t, "png", string(f))

	_, err = exportFormatFor("", "route.svg")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	dir := workdir(t)

	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history_db is not configured")

	dbPath := filepath.Join(dir, "history.db")
	writeFile(t, "coordrecorder.json", `{"history_db": "`+filepath.ToSlash(dbPath)+`"}`)
	writeFile(t, "walk.txt", walk)

	out, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no sessions recorded")

	_, err = execute(t, "replay", "--script", "walk.txt", "--log", filepath.Join(dir, "coords.txt"))
	require.NoError(t, err)

	out, err = execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "SESSION")

	database, err := db.NewDB(dbPath)
	require.NoError(t, err)
	sessions, err := database.Sessions(0)
	require.NoError(t, err)
	require.NoError(t, database.Close())
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].Open())
	assert.Equal(t, 3, sessions[0].Saves)

	out, err = execute(t, "history", "show", sessions[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, sessions[0].ID)
	assert.Equal(t, 3, strings.Count(out, "saved"))
	assert.Contains(t, out, "12,0,0,90,3,False")

	_, err = execute(t, "history", "show", "missing")
	assert.ErrorIs(t, err, db.ErrSessionNotFound)
}
