// Package export renders a recorded route as a static PNG plot or an
// interactive HTML scatter chart.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/coordrecorder/internal/security"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
)

// ErrEmptyRoute is returned when there is nothing to render.
var ErrEmptyRoute = errors.New("route has no waypoints")

// Format selects the export renderer.
type Format string

const (
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// ParseFormat accepts "png" or "html" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want png or html)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "htm" {
		ext = "html"
	}
	return ParseFormat(ext)
}

// Options controls rendering.
type Options struct {
	Title string
	// Labels draws each waypoint's two-digit label next to it (PNG only;
	// the HTML chart shows them in tooltips).
	Labels bool
}

func (o Options) title(n int) string {
	if o.Title != "" {
		return o.Title
	}
	return fmt.Sprintf("Recorded route (%d waypoints)", n)
}

// bounds is the padded square XY extent of a route, so the chart keeps a 1:1
// aspect ratio.
type bounds struct {
	minX, maxX, minY, maxY float64
}

func routeBounds(entries []waypoint.Entry) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, e := range entries {
		b.minX = math.Min(b.minX, e.Sample.X)
		b.maxX = math.Max(b.maxX, e.Sample.X)
		b.minY = math.Min(b.minY, e.Sample.Y)
		b.maxY = math.Max(b.maxY, e.Sample.Y)
	}
	span := math.Max(b.maxX-b.minX, b.maxY-b.minY)
	pad := math.Max(span*0.05, waypoint.DefaultSaveDistance)
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := span/2 + pad
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

// Write renders entries in format to w.
func Write(w io.Writer, format Format, entries []waypoint.Entry, opt Options) error {
	switch format {
	case FormatPNG:
		return WritePNG(w, entries, opt)
	case FormatHTML:
		return WriteHTML(w, entries, opt)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile renders entries to path. The path must pass
// security.ValidateOutputPath with allowedDirs as extra directories.
func WriteFile(path string, format Format, entries []waypoint.Entry, opt Options, allowedDirs ...string) error {
	if err := security.ValidateOutputPath(path, allowedDirs...); err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrEmptyRoute
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := Write(f, format, entries, opt); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// DefaultFileName derives an export file name from the log path.
func DefaultFileName(logPath string, format Format) string {
	base := strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath))
	return security.SanitizeFilename(base) + "." + string(format)
}
