package plot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwiater/ampliconplot/internal/appconfig"
	"github.com/mwiater/ampliconplot/internal/render"
	"github.com/mwiater/ampliconplot/internal/util"
	"github.com/shenwei356/xopen"
)

const (
	scriptExt   = ".gp"
	imageExt    = ".png"
	heatmapFont = 8
	graphFont   = 10
	// labelRunes caps sample names used as axis labels.
	labelRunes = 40
)

// Settings is everything a run needs besides its input and renderer.
type Settings struct {
	Prefix    string
	PageSize  int
	Smoothing float64
	Layout    Layout
	Heatmap   appconfig.Size
	HGraph    appconfig.Size
	VGraph    appconfig.Size
}

// OutputError reports an output artifact that could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *OutputError) Unwrap() error { return e.Err }

// Emitter turns template parameters into script files and hands each
// finished script to the renderer.
type Emitter struct {
	prefix   string
	layout   Layout
	heatmap  appconfig.Size
	graph    appconfig.Size
	renderer render.Renderer
	scripts  []string
}

// NewEmitter builds an emitter for s. Graph size follows the layout.
func NewEmitter(s Settings, r render.Renderer) *Emitter {
	graphSizes := map[Layout]appconfig.Size{
		LayoutHorizontal: s.HGraph,
		LayoutVertical:   s.VGraph,
	}
	return &Emitter{
		prefix:   s.Prefix,
		layout:   s.Layout,
		heatmap:  s.Heatmap,
		graph:    graphSizes[s.Layout],
		renderer: r,
	}
}

// Scripts returns the script paths rendered so far, in render order.
func (e *Emitter) Scripts() []string {
	return append([]string(nil), e.scripts...)
}

// paths builds <prefix>-<kind>[-<part>...] with the script and image
// extensions. Empty parts are skipped.
func (e *Emitter) paths(kind string, parts ...string) (script, image string) {
	var b strings.Builder
	b.WriteString(e.prefix)
	b.WriteString("-")
	b.WriteString(kind)
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString("-")
		b.WriteString(p)
	}
	base := b.String()
	return base + scriptExt, base + imageExt
}

func (e *Emitter) heatmapParams(image string) scriptParams {
	return scriptParams{Width: e.heatmap.Width, Height: e.heatmap.Height, FontSize: heatmapFont, Image: image}
}

func (e *Emitter) graphParams(image string) scriptParams {
	return scriptParams{Width: e.graph.Width, Height: e.graph.Height, FontSize: graphFont, Image: image}
}

// Emit writes a complete script for chart and renders it.
func (e *Emitter) Emit(ctx context.Context, chart Chart, p scriptParams, script string) error {
	w, err := e.create(script)
	if err != nil {
		return err
	}
	if err := e.execute(w, chart, p); err != nil {
		_ = w.Close()
		return &OutputError{Path: script, Err: err}
	}
	if err := w.Close(); err != nil {
		return &OutputError{Path: script, Err: err}
	}
	return e.render(ctx, script)
}

// page is a script whose datablock is still being written.
type page struct {
	script string
	w      *xopen.Writer
}

func (p *page) writeLine(line string) error {
	if _, err := p.w.WriteString(line + "\n"); err != nil {
		return &OutputError{Path: p.script, Err: err}
	}
	return nil
}

// openPage creates script and writes the chart header, leaving the
// datablock open for rows.
func (e *Emitter) openPage(chart Chart, p scriptParams, script string) (*page, error) {
	w, err := e.create(script)
	if err != nil {
		return nil, err
	}
	if err := e.execute(w, chart, p); err != nil {
		_ = w.Close()
		return nil, &OutputError{Path: script, Err: err}
	}
	return &page{script: script, w: w}, nil
}

// closePage writes the footer, closes the file and renders it.
func (e *Emitter) closePage(ctx context.Context, pg *page, chart Chart, p scriptParams) error {
	if err := e.execute(pg.w, chart, p); err != nil {
		_ = pg.w.Close()
		return &OutputError{Path: pg.script, Err: err}
	}
	if err := pg.w.Close(); err != nil {
		return &OutputError{Path: pg.script, Err: err}
	}
	return e.render(ctx, pg.script)
}

func (e *Emitter) create(script string) (*xopen.Writer, error) {
	if err := util.EnsureDir(script); err != nil {
		return nil, &OutputError{Path: script, Err: err}
	}
	w, err := xopen.Wopen(script)
	if err != nil {
		return nil, &OutputError{Path: script, Err: err}
	}
	return w, nil
}

func (e *Emitter) execute(w *xopen.Writer, chart Chart, p scriptParams) error {
	t, err := lookupTemplate(e.layout, chart)
	if err != nil {
		return err
	}
	return t.Execute(w, p)
}

func (e *Emitter) render(ctx context.Context, script string) error {
	if err := e.renderer.Render(ctx, script); err != nil {
		return fmt.Errorf("render %s: %w", script, err)
	}
	e.scripts = append(e.scripts, script)
	return nil
}

func labels(samples []string) []string {
	out := make([]string, len(samples))
	for i, s := range samples {
		out[i] = util.TruncateRunes(s, labelRunes)
	}
	return out
}
