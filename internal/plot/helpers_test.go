package plot

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/ampliconplot/internal/appconfig"
	"github.com/mwiater/ampliconplot/internal/render"
)

// recorder is a render.Renderer that remembers every script it was given
// and fails for scripts whose path contains failOn.
type recorder struct {
	scripts []string
	failOn  string
}

func (r *recorder) Render(_ context.Context, script string) error {
	r.scripts = append(r.scripts, script)
	if r.failOn != "" && strings.Contains(script, r.failOn) {
		return &render.RenderError{Script: script, ExitCode: 1, Stderr: "boom"}
	}
	return nil
}

func testSettings(t *testing.T, pageSize int) Settings {
	t.Helper()
	return Settings{
		Prefix:    filepath.Join(t.TempDir(), "out", "run"),
		PageSize:  pageSize,
		Smoothing: 100,
		Layout:    LayoutHorizontal,
		Heatmap:   appconfig.Size{Width: 1000, Height: 800},
		HGraph:    appconfig.Size{Width: 1200, Height: 500},
		VGraph:    appconfig.Size{Width: 600, Height: 1200},
	}
}

func header(amplicons, files int) string {
	return fmt.Sprintf("# test input\nSS\tNumber of amplicons:\t%d\nSS\tNumber of files:\t%d\nSS\tEnd of summary\n", amplicons, files)
}

func readsRows(samples, amplicons int) string {
	var b strings.Builder
	for s := 1; s <= samples; s++ {
		fmt.Fprintf(&b, "FREADS\ts%02d", s)
		for a := 1; a <= amplicons; a++ {
			fmt.Fprintf(&b, "\t%d", s*10+a)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runInput(t *testing.T, input string, s Settings, r render.Renderer) *Summary {
	t.Helper()
	sum, err := Process(context.Background(), strings.NewReader(input), s, r)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return sum
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// datablockRows returns the distinct row numbers (second column) in the
// first datablock of a heatmap script.
func datablockRows(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows := map[string]bool{}
	in := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasSuffix(line, "<< EOD"):
			in = true
		case line == "EOD":
			in = false
		case in:
			cols := strings.Fields(line)
			if len(cols) == 3 {
				rows[cols[1]] = true
			}
		}
	}
	return len(rows)
}
