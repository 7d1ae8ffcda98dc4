// Package plot turns an amplicon statistics stream into gnuplot scripts:
// paginated heatmaps across samples, combined charts and one chart set per
// sample.
package plot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mwiater/ampliconplot/internal/logging"
	"github.com/mwiater/ampliconplot/internal/render"
	"github.com/mwiater/ampliconplot/internal/stats"
	"github.com/shenwei356/xopen"
)

// maxLine bounds a single input line. FTCOORD rows for deep runs are long.
const maxLine = 64 * 1024 * 1024

// errMalformed marks a recognized record whose values cannot be used.
var errMalformed = errors.New("malformed record")

var heatmapMetrics = map[stats.Kind]Metric{
	stats.KindReads:       MetricReads,
	stats.KindDepth:       MetricDepth,
	stats.KindReadPercent: MetricReadPercent,
	stats.KindCoverage:    MetricCoverage,
}

var combinedMetrics = map[stats.Kind]Metric{
	stats.KindCombinedReads:       MetricReads,
	stats.KindCombinedDepth:       MetricDepth,
	stats.KindCombinedReadPercent: MetricReadPercent,
	stats.KindCombinedCoverage:    MetricCoverage,
}

// Run opens input (a path, "-" for stdin, optionally compressed) and
// processes it.
func Run(ctx context.Context, input string, s Settings, r render.Renderer) (*Summary, error) {
	in, err := xopen.Ropen(input)
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", input, err)
	}
	defer in.Close()
	return Process(ctx, in, s, r)
}

// Process reads the header, streams every record through the heatmap
// channels and accumulators, then finalizes combined and per-sample charts.
func Process(ctx context.Context, in io.Reader, s Settings, r render.Renderer) (*Summary, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLine)

	sum := &Summary{}
	var meta stats.Metadata
	var first *stats.Record
	for scanner.Scan() {
		sum.Lines++
		rec, ok := stats.Parse(scanner.Text())
		if !ok {
			continue
		}
		if rec.Kind != stats.KindSummary {
			first = &rec
			break
		}
		if meta.Apply(rec) {
			break
		}
	}
	logging.Debugf("header: %d amplicons, %d files", meta.Amplicons, meta.Files)
	sum.Metadata = meta

	e := newEngine(meta, s, r)
	handle := func(rec stats.Record) error {
		err := e.dispatch(ctx, rec)
		if errors.Is(err, errMalformed) {
			sum.Skipped++
			logging.Debugf("line %d: %v", sum.Lines, err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", sum.Lines, err)
		}
		return nil
	}

	if first != nil {
		if err := handle(*first); err != nil {
			return nil, err
		}
	}
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sum.Lines++
		rec, ok := stats.Parse(scanner.Text())
		if !ok {
			continue
		}
		if err := handle(rec); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if err := e.finish(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// engine holds the per-run state shared by the dispatch routines.
type engine struct {
	meta      stats.Metadata
	smoothing float64
	emitter   *Emitter
	channels  *Channels
	combined  *Combined
	samples   *Samples
	spans     *stats.Spans
}

func newEngine(meta stats.Metadata, s Settings, r render.Renderer) *engine {
	em := NewEmitter(s, r)
	return &engine{
		meta:      meta,
		smoothing: s.Smoothing,
		emitter:   em,
		channels:  NewChannels(meta, s.PageSize, em),
		combined:  NewCombined(meta.Amplicons, em),
		samples:   NewSamples(),
		spans:     stats.NewSpans(),
	}
}

func (e *engine) dispatch(ctx context.Context, rec stats.Record) error {
	switch rec.Kind {
	case stats.KindSummary:
		return nil
	case stats.KindAmplicon:
		if err := e.spans.Add(rec); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return nil
	case stats.KindMisPriming:
		return e.misPriming(ctx, rec)
	case stats.KindCombinedMisPriming:
		c, err := rec.Counts()
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		e.combined.AddMisPriming(c.Amplicon, stats.MisPrimingPercent(c.Correct, c.LeftErr, c.RightErr, e.smoothing))
		return nil
	case stats.KindTemplateCoord:
		amp, spans, err := rec.TemplateSpans()
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		e.samples.AddSpans(rec.Sample, amp, spans)
		return nil
	}

	if metric, ok := combinedMetrics[rec.Kind]; ok {
		values, err := rec.Floats()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", errMalformed, rec.Tag, err)
		}
		return e.combined.Add(ctx, ChannelKey{Metric: metric, Depth: rec.Depth}, rec.Sample, values)
	}

	metric, ok := heatmapMetrics[rec.Kind]
	if !ok {
		return nil
	}
	values, err := rec.Floats()
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errMalformed, rec.Tag, rec.Sample, err)
	}
	cells := make([]Cell, len(values))
	for i, v := range values {
		if metric == MetricReads || metric == MetricDepth {
			v = stats.ClippedLog10(v)
		}
		cells[i] = Cell{Amplicon: i + 1, Value: v}
	}
	switch rec.Kind {
	case stats.KindReads:
		e.samples.AddReads(rec.Sample, values)
	case stats.KindDepth:
		e.samples.AddDepth(rec.Sample, values)
	case stats.KindCoverage:
		e.samples.AddCoverage(rec.Sample, rec.Depth, values)
	}
	return e.channels.Route(ctx, ChannelKey{Metric: metric, Depth: rec.Depth}, rec.Sample, cells)
}

func (e *engine) misPriming(ctx context.Context, rec stats.Record) error {
	c, err := rec.Counts()
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errMalformed, rec.Tag, rec.Sample, err)
	}
	pct := stats.MisPrimingPercent(c.Correct, c.LeftErr, c.RightErr, e.smoothing)
	e.samples.AddMisPriming(rec.Sample, c.Amplicon, pct)
	if c.Amplicon < 1 {
		return nil
	}
	return e.channels.Append(ctx, ChannelKey{Metric: MetricMisPriming}, rec.Sample, []Cell{{Amplicon: c.Amplicon, Value: pct}})
}

func (e *engine) finish(ctx context.Context, sum *Summary) error {
	if err := e.channels.Flush(ctx); err != nil {
		return err
	}
	if err := e.combined.Flush(ctx); err != nil {
		return err
	}
	charts, err := e.samples.Emit(ctx, e.emitter, e.meta.Amplicons, e.spans.Finalize())
	if err != nil {
		return err
	}

	for _, ch := range e.channels.List() {
		sum.Heatmaps = append(sum.Heatmaps, ChannelPages{Key: ch.Key.String(), Pages: ch.Pages})
	}
	sum.Samples = e.samples.Len()
	sum.Combined = e.combined.Charts
	sum.SampleCharts = charts
	sum.Scripts = e.emitter.Scripts()
	return nil
}
