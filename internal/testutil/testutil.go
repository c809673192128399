// Package testutil provides shared fixtures for recorder tests: seeded coords
// logs, scripted walks and marker bookkeeping checks.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/coordrecorder/internal/fsutil"
	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/pose"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// CoordsLine formats one log line the way the recorder writes it.
func CoordsLine(x, y, z, heading float64, closeBy int, routed bool) string {
	r := "False"
	if routed {
		r = "True"
	}
	return fmt.Sprintf("%g,%g,%g,%g,%d,%s", x, y, z, heading, closeBy, r)
}

// CoordsAlongX returns n log lines spaced step apart on the X axis, starting
// at the origin.
func CoordsAlongX(n int, step float64) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = CoordsLine(float64(i)*step, 0, 0, 0, 3, i%2 == 1)
	}
	return lines
}

// SeedLog writes lines to path in fsys, one per line with a trailing newline.
func SeedLog(t *testing.T, fsys fsutil.FileSystem, path string, lines ...string) {
	t.Helper()
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := fsys.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("seed %s: %v", path, err)
	}
}

// Walk returns a script that moves the agent along X through xs.
func Walk(xs ...float64) *pose.Script {
	poses := make([]pose.Pose, len(xs))
	for i, x := range xs {
		poses[i] = pose.Pose{Position: r3.Vec{X: x}, Controllable: true, Alive: true}
	}
	return pose.NewScript(poses)
}

// AssertMarkersBalanced checks that every marker the registry created is
// either still live or was deleted exactly once.
func AssertMarkersBalanced(t *testing.T, reg *marker.Registry) {
	t.Helper()
	created, deleted := reg.Totals()
	if live := reg.Count(); created-deleted != live {
		t.Errorf("markers: created %d, deleted %d, live %d", created, deleted, live)
	}
}

// AssertNoMarkers checks that the registry holds no live markers.
func AssertNoMarkers(t *testing.T, reg *marker.Registry) {
	t.Helper()
	AssertMarkersBalanced(t, reg)
	if n := reg.Count(); n != 0 {
		t.Errorf("expected no live markers, got %d", n)
	}
}
