package plot

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/mwiater/ampliconplot/internal/render"
)

const scenarioInput = `SS	Number of amplicons:	3
SS	Number of files:	2
SS	End of summary
AMPLICON	1	10-30	200-220
AMPLICON	2	180-200	400-420
AMPLICON	3	380-400	600-620
FREADS	s1	100	200	300
FREADS	s2	150	0	350
CREADS	MEAN	125	100	325
CREADS	STDDEV	25	100	25
`

func TestProcessScenario(t *testing.T) {
	s := testSettings(t, 100)
	rec := &recorder{}
	sum := runInput(t, scenarioInput, s, rec)

	if sum.Metadata.Amplicons != 3 || sum.Metadata.Files != 2 {
		t.Fatalf("metadata = %+v", sum.Metadata)
	}
	if sum.Combined != 1 {
		t.Errorf("combined charts = %d, want 1", sum.Combined)
	}
	if sum.HeatmapPages() != 1 {
		t.Errorf("heatmap pages = %d, want 1", sum.HeatmapPages())
	}
	if sum.Samples != 2 || sum.SampleCharts != 2 {
		t.Errorf("samples = %d, sample charts = %d, want 2 and 2", sum.Samples, sum.SampleCharts)
	}
	for _, h := range sum.Heatmaps {
		if strings.HasPrefix(h.Key, "coverage") {
			t.Errorf("unexpected coverage channel %s", h.Key)
		}
	}

	want := []string{
		s.Prefix + "-heatmap-reads-1.gp",
		s.Prefix + "-combined-reads.gp",
		s.Prefix + "-sample-reads-s1.gp",
		s.Prefix + "-sample-reads-s2.gp",
	}
	sort.Strings(want)
	got := append([]string(nil), rec.scripts...)
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("rendered scripts = %v, want %v", got, want)
	}

	combined := readFile(t, s.Prefix+"-combined-reads.gp")
	if !strings.Contains(combined, "1 125 25\n") || !strings.Contains(combined, "yerrorlines") {
		t.Errorf("combined script missing mean/stddev rows:\n%s", combined)
	}
	heatmap := readFile(t, s.Prefix+"-heatmap-reads-1.gp")
	for _, line := range []string{"1 1 2\n", "2 2 0\n", `set ytics ("s1" 1, "s2" 2)`, "set output " + quote(s.Prefix+"-heatmap-reads-1.png")} {
		if !strings.Contains(heatmap, line) {
			t.Errorf("heatmap script missing %q:\n%s", line, heatmap)
		}
	}
	// shared ceiling over every sample's reads
	if reads := readFile(t, s.Prefix+"-sample-reads-s1.gp"); !strings.Contains(reads, "set yrange [1:1000]") {
		t.Errorf("sample chart missing shared ceiling:\n%s", reads)
	}
}

func TestProcessHeaderWithoutEndMarker(t *testing.T) {
	input := "SS\tNumber of amplicons:\t3\nSS\tNumber of files:\t2\n" + readsRows(2, 3)
	sum := runInput(t, input, testSettings(t, 100), &recorder{})
	if sum.Metadata.Files != 2 || sum.Samples != 2 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestProcessIgnoresUnknownAndMalformed(t *testing.T) {
	input := header(3, 2) +
		"FVDEPTH\ts1\t1\t2\t3\n" +
		"FREADS\n" +
		"FREADS\ts1\t1\tabc\t3\n" +
		"FREADS\ts2\t1\t2\t3\n"
	sum := runInput(t, input, testSettings(t, 100), &recorder{})
	if sum.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", sum.Skipped)
	}
	if sum.Samples != 1 {
		t.Errorf("samples = %d, want 1", sum.Samples)
	}
}

func TestCoverageChannelsStayByDepth(t *testing.T) {
	input := header(2, 2) +
		"FPCOV-1\ts1\t11.5\t12.5\n" +
		"FPCOV-10\ts1\t91.25\t92.25\n" +
		"FPCOV-1\ts2\t13.5\t14.5\n" +
		"FPCOV-10\ts2\t93.25\t94.25\n"
	s := testSettings(t, 100)
	sum := runInput(t, input, s, &recorder{})

	keys := []string{}
	for _, h := range sum.Heatmaps {
		keys = append(keys, h.Key)
	}
	if strings.Join(keys, ",") != "coverage-1,coverage-10" {
		t.Fatalf("channels = %v", keys)
	}

	low := readFile(t, s.Prefix+"-heatmap-coverage-1-1.gp")
	high := readFile(t, s.Prefix+"-heatmap-coverage-10-1.gp")
	if strings.Contains(low, ".25") || strings.Contains(high, ".5\n") {
		t.Fatalf("coverage rows leaked across depths:\n%s\n---\n%s", low, high)
	}
	if i, j := strings.Index(low, "1 1 11.5\n"), strings.Index(low, "1 2 13.5\n"); i < 0 || j < i {
		t.Errorf("depth 1 rows out of order:\n%s", low)
	}
	if i, j := strings.Index(high, "2 1 92.25\n"), strings.Index(high, "2 2 94.25\n"); i < 0 || j < i {
		t.Errorf("depth 10 rows out of order:\n%s", high)
	}
	cov := readFile(t, s.Prefix+"-sample-coverage-s2.gp")
	if !strings.Contains(cov, "1 13.5 93.25\n") || !strings.Contains(cov, `title ">= 10x"`) {
		t.Errorf("per-sample coverage chart:\n%s", cov)
	}
}

func TestMisPrimingAndTemplateCharts(t *testing.T) {
	input := header(2, 1) +
		"AMPLICON\t1\t10-30,12-32\t200-220\n" +
		"AMPLICON\t2\t180-200\t400-420,405-425\n" +
		"FAMP\ts1\t0\t800\t100\t100\n" +
		"FAMP\ts1\t1\t400\t50\t50\n" +
		"FAMP\ts1\t2\t400\t0\t0\n" +
		"FTCOORD\ts1\t1\t10,220,5,0\t15,190,2,1\n" +
		"CAMP\tCOMBINED\t0\t800\t100\t100\n" +
		"CAMP\tCOMBINED\t1\t400\t50\t50\n"
	s := testSettings(t, 100)
	sum := runInput(t, input, s, &recorder{})

	mis := readFile(t, s.Prefix+"-sample-mispriming-s1.gp")
	if !strings.Contains(mis, "(18.1818% overall)") || !strings.Contains(mis, "1 16.6667\n2 0\n") {
		t.Errorf("mis-priming chart:\n%s", mis)
	}
	heat := readFile(t, s.Prefix+"-heatmap-mispriming-1.gp")
	if strings.Contains(heat, "0 1 ") || !strings.Contains(heat, "1 1 16.6667\n") {
		t.Errorf("mis-priming heatmap:\n%s", heat)
	}
	tc := readFile(t, s.Prefix+"-sample-tcoord-s1.gp")
	for _, line := range []string{"1 10 220\n", "2 180 425\n", "1 10 220 0\n", "1 15 190 1\n"} {
		if !strings.Contains(tc, line) {
			t.Errorf("template chart missing %q:\n%s", line, tc)
		}
	}
	camp := readFile(t, s.Prefix+"-combined-mispriming.gp")
	if !strings.Contains(camp, "overall") || !strings.Contains(camp, "1 16.6667\n") {
		t.Errorf("combined mis-priming chart:\n%s", camp)
	}
	if sum.Combined != 1 {
		t.Errorf("combined = %d, want 1", sum.Combined)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	s := testSettings(t, 2)
	input := scenarioInput + "FPCOV-5\ts1\t10\t20\t30\nFPCOV-5\ts2\t40\t50\t60\n"

	snapshot := func() map[string]string {
		rec := &recorder{}
		runInput(t, input, s, rec)
		out := map[string]string{}
		for _, p := range rec.scripts {
			out[p] = readFile(t, p)
		}
		return out
	}
	first, second := snapshot(), snapshot()
	if len(first) != len(second) {
		t.Fatalf("script count changed: %d vs %d", len(first), len(second))
	}
	for p, body := range first {
		if second[p] != body {
			t.Errorf("%s differs between runs", p)
		}
	}
}

func TestRenderFailureIsFatal(t *testing.T) {
	rec := &recorder{failOn: "heatmap"}
	_, err := Process(context.Background(), strings.NewReader(scenarioInput), testSettings(t, 100), rec)
	var re *render.RenderError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *render.RenderError", err)
	}
	if !strings.Contains(err.Error(), "heatmap-reads-1.gp") {
		t.Errorf("error does not name the script: %v", err)
	}
}

func TestOutputErrorNamesPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := testSettings(t, 100)
	s.Prefix = filepath.Join(blocker, "run")
	_, err := Process(context.Background(), strings.NewReader(scenarioInput), s, &recorder{})
	var oe *OutputError
	if !errors.As(err, &oe) {
		t.Fatalf("err = %v, want *OutputError", err)
	}
	if !strings.HasPrefix(oe.Path, s.Prefix) {
		t.Errorf("path = %s", oe.Path)
	}
}

func TestRunReadsCompressedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(scenarioInput)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	sum, err := Run(context.Background(), path, testSettings(t, 100), render.Discard{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Samples != 2 || len(sum.Scripts) != 4 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestSummaryRender(t *testing.T) {
	sum := &Summary{Samples: 2, Combined: 1, Skipped: 3, Heatmaps: []ChannelPages{{Key: "reads", Pages: 2}}}
	var b strings.Builder
	sum.Render(&b)
	out := b.String()
	for _, want := range []string{"heatmap reads", "2 page(s)", "3 malformed record(s) skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
