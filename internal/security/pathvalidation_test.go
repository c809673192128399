package security

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	for _, d := range []string{safeDir, unsafeDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	if err := os.WriteFile(filepath.Join(unsafeDir, "coords.txt"), []byte("1,2,3\n"), 0644); err != nil {
		t.Fatalf("Failed to create unsafe file: %v", err)
	}
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"file in directory", filepath.Join(tmpDir, "route.png"), tmpDir, false},
		{"new file in missing subdir", filepath.Join(tmpDir, "exports", "route.html"), tmpDir, false},
		{"dot dot escape", filepath.Join(tmpDir, "..", "route.png"), tmpDir, true},
		{"relative escape", "../../../etc/passwd", tmpDir, true},
		{"absolute outside", "/etc/passwd", tmpDir, true},
		{"through symlink to outside", filepath.Join(symlinkPath, "coords.txt"), safeDir, true},
		{"new file through symlink", filepath.Join(symlinkPath, "new.png"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidatePathWithinAllowedDirs(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	if err := ValidatePathWithinAllowedDirs(filepath.Join(dir2, "a.png"), []string{dir1, dir2}); err != nil {
		t.Errorf("path in second dir rejected: %v", err)
	}

	err := ValidatePathWithinAllowedDirs("/etc/passwd", []string{dir1, dir2})
	if !errors.Is(err, ErrOutsideAllowedDirs) {
		t.Errorf("error = %v, want ErrOutsideAllowedDirs", err)
	}

	if err := ValidatePathWithinAllowedDirs(filepath.Join(dir1, "a.png"), nil); err == nil {
		t.Error("expected error with no allowed directories")
	}
}

func TestValidateOutputPath(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)
	extra := t.TempDir()

	tests := []struct {
		name      string
		filePath  string
		wantError bool
	}{
		{"temp dir", filepath.Join(os.TempDir(), "route.png"), false},
		{"working dir relative", "route.html", false},
		{"extra dir", filepath.Join(extra, "route.png"), false},
		{"outside", "/etc/route.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.filePath, extra)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateOutputPath() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateLogPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "CoordRecorder_CSV.txt")
	if err := os.WriteFile(existing, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"existing file", existing, ""},
		{"new file", filepath.Join(dir, "new.txt"), ""},
		{"empty", "  ", "must not be empty"},
		{"directory", dir, "is a directory"},
		{"missing parent", filepath.Join(dir, "nope", "coords.txt"), "parent directory"},
		{"parent is a file", filepath.Join(existing, "coords.txt"), "not a directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogPath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unknown"},
		{"route", "route"},
		{"route 2026/03/01", "route_2026_03_01"},
		{"../../etc/passwd", "etc_passwd"},
		{"  spaced   out  ", "spaced_out"},
		{"...", "unknown"},
		{"Grove St. loop.png", "Grove_St._loop.png"},
		{strings.Repeat("a", 200), strings.Repeat("a", 128)},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
