// Package render runs the external chart renderer over generated scripts.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/mwiater/ampliconplot/internal/logging"
)

// maxCapture bounds how much renderer output is kept for diagnostics.
const maxCapture = 64 * 1024

var (
	// ErrRendererMissing is returned when the renderer binary cannot be found.
	ErrRendererMissing = errors.New("renderer not found")
	// ErrRendererVersion is returned when the renderer is older than MinimumVersion.
	ErrRendererVersion = errors.New("renderer version unsupported")
)

// Renderer turns one finalized script into an image.
type Renderer interface {
	Render(ctx context.Context, script string) error
}

// RenderError reports a renderer invocation that did not succeed.
type RenderError struct {
	Script   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("rendering %s failed (exit %d)", e.Script, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Version is a gnuplot release number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// MinimumVersion is the oldest gnuplot that understands inline datablocks.
var MinimumVersion = Version{Major: 5, Minor: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d patchlevel %d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

var versionPattern = regexp.MustCompile(`gnuplot\s+(\d+)\.(\d+)(?:\s+patchlevel\s+(\d+))?`)

// ParseVersion extracts the version from `gnuplot --version` output.
func ParseVersion(out string) (Version, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return Version{}, fmt.Errorf("unrecognized version output %q", strings.TrimSpace(out))
	}
	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
	}
	return v, nil
}

// Gnuplot invokes a gnuplot binary once per script.
type Gnuplot struct {
	Binary string
}

// NewGnuplot returns a renderer for the given binary name or path.
func NewGnuplot(binary string) *Gnuplot {
	if strings.TrimSpace(binary) == "" {
		binary = "gnuplot"
	}
	return &Gnuplot{Binary: binary}
}

// Check locates the binary and verifies it is at least MinimumVersion.
func (g *Gnuplot) Check(ctx context.Context) (Version, error) {
	path, err := exec.LookPath(g.Binary)
	if err != nil {
		logging.LogEvent("Renderer check failed: binary %q not found (%v)", g.Binary, err)
		return Version{}, fmt.Errorf("%w: %q", ErrRendererMissing, g.Binary)
	}
	stdout, stderr, code, err := runCommand(ctx, path, []string{"--version"})
	if err != nil {
		return Version{}, fmt.Errorf("%s --version (exit %d): %w: %s", path, code, err, strings.TrimSpace(stderr))
	}
	v, err := ParseVersion(stdout + stderr)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %v", ErrRendererVersion, err)
	}
	if v.Less(MinimumVersion) {
		return v, fmt.Errorf("%w: found %s, need %s or newer", ErrRendererVersion, v, MinimumVersion)
	}
	logging.LogEvent("Renderer check passed: binary=%s version=%s", path, v)
	return v, nil
}

// Render runs the binary on script and waits for it to exit.
func (g *Gnuplot) Render(ctx context.Context, script string) error {
	_, stderr, code, err := runCommand(ctx, g.Binary, []string{script})
	logging.LogRender(script, code, err)
	if err != nil {
		return &RenderError{Script: script, ExitCode: code, Stderr: stderr, Err: err}
	}
	return nil
}

// Discard accepts every script without running anything.
type Discard struct{}

// Render implements Renderer.
func (Discard) Render(context.Context, string) error { return nil }

func runCommand(ctx context.Context, bin string, args []string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &outBuf, n: maxCapture}
	cmd.Stderr = &limitedWriter{w: &errBuf, n: maxCapture}

	if err := cmd.Run(); err != nil {
		return outBuf.String(), errBuf.String(), exitStatus(err), err
	}
	return outBuf.String(), errBuf.String(), 0, nil
}

func exitStatus(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 127
}

// limitedWriter keeps the first n bytes and silently drops the rest so the
// child never blocks on a full pipe.
type limitedWriter struct {
	w io.Writer
	n int64
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.n > 0 {
		keep := p
		if int64(len(keep)) > l.n {
			keep = keep[:l.n]
		}
		written, err := l.w.Write(keep)
		l.n -= int64(written)
		if err != nil {
			return written, err
		}
	}
	return len(p), nil
}
