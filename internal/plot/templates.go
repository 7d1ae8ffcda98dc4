package plot

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// Layout selects which axis the amplicons run along.
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutHorizontal, LayoutVertical:
		return l, nil
	case "":
		return LayoutHorizontal, nil
	}
	return "", fmt.Errorf("unknown layout %q (want horizontal or vertical)", s)
}

// Chart identifies one script template.
type Chart string

const (
	ChartHeatmapHeader      Chart = "heatmap-header"
	ChartHeatmapFooter      Chart = "heatmap-footer"
	ChartCombined           Chart = "combined"
	ChartCombinedMisPriming Chart = "combined-mispriming"
	ChartSampleReads        Chart = "sample-reads"
	ChartSampleCoverage     Chart = "sample-coverage"
	ChartSampleMisPriming   Chart = "sample-mispriming"
	ChartSampleTCoord       Chart = "sample-tcoord"
)

// scriptParams carries every value a template may reference. Data and Extra
// are pre-formatted datablock lines.
type scriptParams struct {
	Width     int
	Height    int
	FontSize  int
	Image     string
	Title     string
	Label     string
	Amplicons int
	Rows      int
	Page      int
	CbMin     string
	CbMax     string
	Samples   []string
	LogScale  bool
	HasStddev bool
	Ceiling   float64
	Depths    []int
	Data      []string
	Extra     []string
}

var funcs = template.FuncMap{
	"q":   quote,
	"inc": func(i int) int { return i + 1 },
	"col": func(i int) int { return i + 2 },
	"num": formatNum,
}

// quote escapes s for a double-quoted gnuplot string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

const commonDefs = `
{{define "terminal"}}set terminal pngcairo size {{.Width}},{{.Height}} noenhanced font "sans,{{.FontSize}}"
set output {{q .Image}}
set title {{q .Title}}
{{end}}
{{define "data"}}{{range .Data}}{{.}}
{{end}}{{end}}
{{define "extra"}}{{range .Extra}}{{.}}
{{end}}{{end}}
{{define "palette"}}set palette defined (0 "#ffffff", 1 "#4575b4", 2 "#fee090", 3 "#d73027")
set cbrange [{{.CbMin}}:{{.CbMax}}]
set cblabel {{q .Label}}
{{end}}`

var horizontalDefs = map[Chart]string{
	ChartHeatmapHeader: `{{template "terminal" .}}unset key
set tics out nomirror
set xlabel "Amplicon"
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}{{if .Rows}}set yrange [{{.Rows}}.5:0.5]
{{end}}{{template "palette" .}}$data << EOD
`,
	ChartHeatmapFooter: `EOD
set yrange [{{.Rows}}.5:0.5]
set ytics ({{range $i, $s := .Samples}}{{if $i}}, {{end}}{{q $s}} {{inc $i}}{{end}})
plot $data using 1:2:3 with image
`,
	ChartCombined: `{{template "terminal" .}}set key top right
set grid
set xlabel "Amplicon"
set ylabel {{q .Label}}
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}{{if .LogScale}}set logscale y
{{end}}$data << EOD
{{template "data" .}}EOD
plot $data using 1:2{{if .HasStddev}}:3 with yerrorlines title "mean +/- stddev"{{else}} with linespoints title "mean"{{end}}
`,
	ChartCombinedMisPriming: `{{template "terminal" .}}unset key
set grid
set xlabel "Amplicon"
set ylabel {{q .Label}}
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}set yrange [0:*]
$data << EOD
{{template "data" .}}EOD
plot $data using 1:2 with impulses lw 3
`,
	ChartSampleReads: `{{template "terminal" .}}set key top right
set grid
set xlabel "Amplicon"
set ylabel {{q .Label}}
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}set logscale y
set yrange [1:{{num .Ceiling}}]
$data << EOD
{{template "data" .}}EOD
plot $data using 1:2 with linespoints title "reads", $data using 1:3 with linespoints title "depth"
`,
	ChartSampleCoverage: `{{template "terminal" .}}set key bottom right
set grid
set xlabel "Amplicon"
set ylabel {{q .Label}}
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}set yrange [0:100]
$data << EOD
{{template "data" .}}EOD
plot {{range $i, $d := .Depths}}{{if $i}}, {{end}}$data using 1:{{col $i}} with linespoints title ">= {{$d}}x"{{end}}
`,
	ChartSampleMisPriming: `{{template "terminal" .}}unset key
set grid
set xlabel "Amplicon"
set ylabel {{q .Label}}
{{if .Amplicons}}set xrange [0.5:{{.Amplicons}}.5]
{{end}}set yrange [0:*]
$data << EOD
{{template "data" .}}EOD
plot $data using 1:2 with impulses lw 3
`,
	ChartSampleTCoord: `{{template "terminal" .}}set key top right
set grid
set xlabel "Position"
set ylabel "Amplicon"
set offsets 0, 0, 1, 1
{{if .Extra}}$expected << EOD
{{template "extra" .}}EOD
{{end}}$observed << EOD
{{template "data" .}}EOD
plot {{if .Extra}}$expected using 2:1:($3-$2):(0) with vectors nohead lw 4 lc rgb "#999999" title "amplicon", {{end}}$observed using 2:($1+0.3):($3-$2):(0):($4+1) with vectors nohead lc variable title "templates"
`,
}

var verticalDefs = map[Chart]string{
	ChartHeatmapHeader: `{{template "terminal" .}}unset key
set tics out nomirror
set ylabel "Amplicon"
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}{{if .Rows}}set xrange [0.5:{{.Rows}}.5]
{{end}}{{template "palette" .}}$data << EOD
`,
	ChartHeatmapFooter: `EOD
set xrange [0.5:{{.Rows}}.5]
set xtics rotate by 90 right ({{range $i, $s := .Samples}}{{if $i}}, {{end}}{{q $s}} {{inc $i}}{{end}})
plot $data using 2:1:3 with image
`,
	ChartCombined: `{{template "terminal" .}}set key bottom right
set grid
set ylabel "Amplicon"
set xlabel {{q .Label}}
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}{{if .LogScale}}set logscale x
{{end}}$data << EOD
{{template "data" .}}EOD
plot $data using 2:1{{if .HasStddev}}:3 with xerrorlines title "mean +/- stddev"{{else}} with linespoints title "mean"{{end}}
`,
	ChartCombinedMisPriming: `{{template "terminal" .}}unset key
set grid
set ylabel "Amplicon"
set xlabel {{q .Label}}
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}set xrange [0:*]
$data << EOD
{{template "data" .}}EOD
plot $data using (0):1:2:(0) with vectors nohead lw 3
`,
	ChartSampleReads: `{{template "terminal" .}}set key bottom right
set grid
set ylabel "Amplicon"
set xlabel {{q .Label}}
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}set logscale x
set xrange [1:{{num .Ceiling}}]
$data << EOD
{{template "data" .}}EOD
plot $data using 2:1 with linespoints title "reads", $data using 3:1 with linespoints title "depth"
`,
	ChartSampleCoverage: `{{template "terminal" .}}set key bottom left
set grid
set ylabel "Amplicon"
set xlabel {{q .Label}}
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}set xrange [0:100]
$data << EOD
{{template "data" .}}EOD
plot {{range $i, $d := .Depths}}{{if $i}}, {{end}}$data using {{col $i}}:1 with linespoints title ">= {{$d}}x"{{end}}
`,
	ChartSampleMisPriming: `{{template "terminal" .}}unset key
set grid
set ylabel "Amplicon"
set xlabel {{q .Label}}
{{if .Amplicons}}set yrange [{{.Amplicons}}.5:0.5]
{{end}}set xrange [0:*]
$data << EOD
{{template "data" .}}EOD
plot $data using (0):1:2:(0) with vectors nohead lw 3
`,
	ChartSampleTCoord: `{{template "terminal" .}}set key bottom right
set grid
set ylabel "Position"
set xlabel "Amplicon"
set offsets 1, 1, 0, 0
{{if .Extra}}$expected << EOD
{{template "extra" .}}EOD
{{end}}$observed << EOD
{{template "data" .}}EOD
plot {{if .Extra}}$expected using 1:2:(0):($3-$2) with vectors nohead lw 4 lc rgb "#999999" title "amplicon", {{end}}$observed using ($1+0.3):2:(0):($3-$2):($4+1) with vectors nohead lc variable title "templates"
`,
}

// templates is looked up by layout, then chart.
var templates = map[Layout]map[Chart]*template.Template{
	LayoutHorizontal: buildSet(LayoutHorizontal, horizontalDefs),
	LayoutVertical:   buildSet(LayoutVertical, verticalDefs),
}

func buildSet(layout Layout, defs map[Chart]string) map[Chart]*template.Template {
	set := make(map[Chart]*template.Template, len(defs))
	for chart, text := range defs {
		name := string(layout) + "/" + string(chart)
		t := template.Must(template.New(name).Funcs(funcs).Parse(commonDefs))
		set[chart] = template.Must(t.New(name + "/body").Parse(text))
	}
	return set
}

func lookupTemplate(layout Layout, chart Chart) (*template.Template, error) {
	t, ok := templates[layout][chart]
	if !ok {
		return nil, fmt.Errorf("no %s template for %s layout", chart, layout)
	}
	return t, nil
}
