package plot

import (
	"strings"
	"testing"
)

func TestParseLayout(t *testing.T) {
	tests := []struct {
		in      string
		want    Layout
		wantErr bool
	}{
		{"", LayoutHorizontal, false},
		{"horizontal", LayoutHorizontal, false},
		{" Vertical ", LayoutVertical, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLayout(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLayout(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestEveryChartHasBothLayouts(t *testing.T) {
	charts := []Chart{
		ChartHeatmapHeader, ChartHeatmapFooter, ChartCombined, ChartCombinedMisPriming,
		ChartSampleReads, ChartSampleCoverage, ChartSampleMisPriming, ChartSampleTCoord,
	}
	for _, layout := range []Layout{LayoutHorizontal, LayoutVertical} {
		for _, chart := range charts {
			if _, err := lookupTemplate(layout, chart); err != nil {
				t.Errorf("lookupTemplate(%s, %s): %v", layout, chart, err)
			}
		}
	}
	if _, err := lookupTemplate("diagonal", ChartCombined); err == nil {
		t.Error("expected an error for an unknown layout")
	}
}

func TestVerticalHeatmapFooter(t *testing.T) {
	tmpl, err := lookupTemplate(LayoutVertical, ChartHeatmapFooter)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, scriptParams{Rows: 2, Samples: []string{`a"b`, "c"}}); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{"set xrange [0.5:2.5]", `("a\"b" 1, "c" 2)`, "using 2:1:3 with image"} {
		if !strings.Contains(out, want) {
			t.Errorf("footer missing %q:\n%s", want, out)
		}
	}
}

func TestHeaderOmitsRangesWhenCountsUnknown(t *testing.T) {
	tmpl, err := lookupTemplate(LayoutHorizontal, ChartHeatmapHeader)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, scriptParams{Width: 10, Height: 10, CbMin: "0", CbMax: "*"}); err != nil {
		t.Fatal(err)
	}
	if out := b.String(); strings.Contains(out, "xrange") || strings.Contains(out, "yrange") {
		t.Errorf("header should omit ranges:\n%s", out)
	}
}
