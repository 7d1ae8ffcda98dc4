package plot

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mwiater/ampliconplot/internal/logging"
	"github.com/mwiater/ampliconplot/internal/stats"
	"github.com/mwiater/ampliconplot/internal/util"
)

// SampleBuffer holds everything plotted for one sample.
type SampleBuffer struct {
	ID       string
	Reads    []float64
	Depth    []float64
	Coverage map[int][]float64
	// MisPriming holds the whole-sample percentage first, then one value per
	// amplicon in arrival order.
	MisPriming []float64
	Spans      map[int][]stats.TemplateSpan

	misSummary bool
}

// Samples buffers per-sample rows until the stream ends, so charts can share
// axis limits computed over every sample. Buffers are kept in arrival order;
// a sample id that repeats a record kind it already supplied opens a new
// buffer rather than overwriting the first.
type Samples struct {
	latest   map[string]*SampleBuffer
	list     []*SampleBuffer
	maxDepth float64
}

// NewSamples returns an empty accumulator.
func NewSamples() *Samples {
	return &Samples{latest: make(map[string]*SampleBuffer)}
}

// Len is the number of sample buffers, one per chart set.
func (s *Samples) Len() int { return len(s.list) }

// buffer returns the current buffer for id, opening a new one when there is
// none or when taken reports the slot already filled.
func (s *Samples) buffer(id string, taken func(*SampleBuffer) bool) *SampleBuffer {
	b, ok := s.latest[id]
	if ok && taken != nil && taken(b) {
		logging.Warnf("sample %q appears more than once; charting each occurrence separately", id)
		ok = false
	}
	if !ok {
		b = &SampleBuffer{ID: id, Coverage: make(map[int][]float64), Spans: make(map[int][]stats.TemplateSpan)}
		s.latest[id] = b
		s.list = append(s.list, b)
	}
	return b
}

// AddReads stores the read counts for id.
func (s *Samples) AddReads(id string, values []float64) {
	s.buffer(id, func(b *SampleBuffer) bool { return b.Reads != nil }).Reads = values
	s.maxDepth = stats.RunningMax(s.maxDepth, values...)
}

// AddDepth stores the mean depths for id.
func (s *Samples) AddDepth(id string, values []float64) {
	s.buffer(id, func(b *SampleBuffer) bool { return b.Depth != nil }).Depth = values
	s.maxDepth = stats.RunningMax(s.maxDepth, values...)
}

// AddCoverage stores the coverage percentages for id at depth.
func (s *Samples) AddCoverage(id string, depth int, values []float64) {
	b := s.buffer(id, func(b *SampleBuffer) bool {
		_, ok := b.Coverage[depth]
		return ok
	})
	b.Coverage[depth] = values
}

// AddMisPriming appends one mis-priming percentage for id. Amplicon 0 is
// the whole-sample value and always occupies the first slot.
func (s *Samples) AddMisPriming(id string, amplicon int, pct float64) {
	if amplicon == 0 {
		b := s.buffer(id, func(b *SampleBuffer) bool { return b.misSummary })
		b.misSummary = true
		if len(b.MisPriming) == 0 {
			b.MisPriming = append(b.MisPriming, pct)
		} else {
			b.MisPriming[0] = pct
		}
		return
	}
	b := s.buffer(id, nil)
	if len(b.MisPriming) == 0 {
		b.MisPriming = append(b.MisPriming, 0)
	}
	b.MisPriming = append(b.MisPriming, pct)
}

// AddSpans records observed template spans for one amplicon of id.
func (s *Samples) AddSpans(id string, amplicon int, spans []stats.TemplateSpan) {
	b := s.buffer(id, nil)
	b.Spans[amplicon] = append(b.Spans[amplicon], spans...)
}

// Emit renders every sample's chart set in arrival order and returns the
// number of charts rendered.
func (s *Samples) Emit(ctx context.Context, e *Emitter, amplicons int, spans []stats.Span) (int, error) {
	ceiling := stats.CeilPow10(s.maxDepth)
	if ceiling < 10 {
		ceiling = 10
	}
	var expected []string
	for _, sp := range spans {
		expected = append(expected, fmt.Sprintf("%d %d %d", sp.Index, sp.Start, sp.End))
	}

	charts := 0
	for i, name := range s.fileNames() {
		b := s.list[i]
		n, err := b.emit(ctx, e, name, amplicons, ceiling, expected)
		charts += n
		if err != nil {
			return charts, fmt.Errorf("sample %s: %w", b.ID, err)
		}
	}
	return charts, nil
}

// fileNames returns one filename-safe name per buffer. A name already used
// by an earlier buffer gets the buffer's 1-based arrival ordinal appended.
func (s *Samples) fileNames() []string {
	used := make(map[string]bool, len(s.list))
	names := make([]string, len(s.list))
	for i, b := range s.list {
		base := util.SafeName(b.ID)
		name := base
		for n := i + 1; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		if name != base {
			logging.Warnf("sample %q charts written as %s", b.ID, name)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func (b *SampleBuffer) emit(ctx context.Context, e *Emitter, name string, amplicons int, ceiling float64, expected []string) (int, error) {
	charts := 0

	if len(b.Reads) > 0 || len(b.Depth) > 0 {
		script, image := e.paths("sample-reads", name)
		p := e.graphParams(image)
		p.Title = b.ID + ": reads and depth per amplicon"
		p.Label = "reads / depth"
		p.Amplicons = amplicons
		p.Ceiling = ceiling
		n := max(len(b.Reads), len(b.Depth))
		for i := 0; i < n; i++ {
			p.Data = append(p.Data, fmt.Sprintf("%d %s %s", i+1, at(b.Reads, i), at(b.Depth, i)))
		}
		if err := e.Emit(ctx, ChartSampleReads, p, script); err != nil {
			return charts, err
		}
		charts++
	}

	if len(b.Coverage) > 0 {
		depths := make([]int, 0, len(b.Coverage))
		n := 0
		for d, vals := range b.Coverage {
			depths = append(depths, d)
			n = max(n, len(vals))
		}
		sort.Ints(depths)
		script, image := e.paths("sample-coverage", name)
		p := e.graphParams(image)
		p.Title = b.ID + ": amplicon bases covered by depth"
		p.Label = "% covered"
		p.Amplicons = amplicons
		p.Depths = depths
		for i := 0; i < n; i++ {
			cols := []string{fmt.Sprint(i + 1)}
			for _, d := range depths {
				cols = append(cols, at(b.Coverage[d], i))
			}
			p.Data = append(p.Data, strings.Join(cols, " "))
		}
		if err := e.Emit(ctx, ChartSampleCoverage, p, script); err != nil {
			return charts, err
		}
		charts++
	}

	if len(b.MisPriming) > 1 {
		script, image := e.paths("sample-mispriming", name)
		p := e.graphParams(image)
		p.Title = fmt.Sprintf("%s: mis-primed read pairs (%s%% overall)", b.ID, formatNum(b.MisPriming[0]))
		p.Label = "% mis-primed"
		p.Amplicons = amplicons
		for i, v := range b.MisPriming[1:] {
			p.Data = append(p.Data, fmt.Sprintf("%d %s", i+1, formatNum(v)))
		}
		if err := e.Emit(ctx, ChartSampleMisPriming, p, script); err != nil {
			return charts, err
		}
		charts++
	}

	if len(b.Spans) > 0 {
		amps := make([]int, 0, len(b.Spans))
		for a := range b.Spans {
			amps = append(amps, a)
		}
		sort.Ints(amps)
		script, image := e.paths("sample-tcoord", name)
		p := e.graphParams(image)
		p.Title = b.ID + ": template coordinates"
		p.Extra = expected
		for _, a := range amps {
			for _, sp := range b.Spans[a] {
				p.Data = append(p.Data, fmt.Sprintf("%d %d %d %d", a, sp.Start, sp.End, sp.Flags))
			}
		}
		if len(p.Data) > 0 {
			if err := e.Emit(ctx, ChartSampleTCoord, p, script); err != nil {
				return charts, err
			}
			charts++
		}
	}

	return charts, nil
}

// at formats vals[i], or NaN (a gap in gnuplot) when i is out of range.
func at(vals []float64, i int) string {
	if i >= len(vals) || math.IsNaN(vals[i]) {
		return "NaN"
	}
	return formatNum(vals[i])
}
