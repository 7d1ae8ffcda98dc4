package plot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/ampliconplot/internal/logging"
)

// ErrPairOrder is returned when combined MEAN/STDDEV rows do not arrive as
// MEAN followed by STDDEV for the same key.
var ErrPairOrder = errors.New("combined statistics out of order")

const (
	statMean   = "MEAN"
	statStddev = "STDDEV"
)

type combinedStyle struct {
	title string
	label string
	log   bool
}

var combinedStyles = map[Metric]combinedStyle{
	MetricReads:       {title: "Reads per amplicon, all samples", label: "reads", log: true},
	MetricDepth:       {title: "Mean read depth per amplicon, all samples", label: "depth", log: true},
	MetricReadPercent: {title: "Share of reads per amplicon, all samples", label: "% of reads"},
	MetricCoverage:    {title: "Amplicon bases covered at depth >= %d, all samples", label: "% covered"},
}

// Combined buffers the across-sample statistics. Upstream writes each MEAN
// row immediately before its STDDEV row; a pair is rendered as soon as the
// STDDEV arrives. Mis-priming rows are rendered at Flush.
type Combined struct {
	emitter   *Emitter
	amplicons int
	pending   map[ChannelKey][]float64
	order     []ChannelKey

	misSummary    float64
	hasMisSummary bool
	misPriming    []Cell

	// Charts counts combined charts rendered.
	Charts int
}

// NewCombined returns an empty accumulator.
func NewCombined(amplicons int, emitter *Emitter) *Combined {
	return &Combined{
		emitter:   emitter,
		amplicons: amplicons,
		pending:   make(map[ChannelKey][]float64),
	}
}

// Add records one MEAN or STDDEV row for key. Other statistic labels are
// ignored.
func (c *Combined) Add(ctx context.Context, key ChannelKey, stat string, values []float64) error {
	switch strings.ToUpper(strings.TrimSpace(stat)) {
	case statMean:
		if _, ok := c.pending[key]; ok {
			return fmt.Errorf("%w: second %s row for %s before its %s", ErrPairOrder, statMean, key, statStddev)
		}
		c.pending[key] = values
		c.order = append(c.order, key)
		return nil
	case statStddev:
		mean, ok := c.pending[key]
		if !ok {
			return fmt.Errorf("%w: %s row for %s without a preceding %s", ErrPairOrder, statStddev, key, statMean)
		}
		c.drop(key)
		return c.emitPair(ctx, key, mean, values)
	default:
		logging.Debugf("ignoring combined %s row for %s", stat, key)
		return nil
	}
}

// AddMisPriming records the combined mis-priming percentage for one
// amplicon; amplicon 0 is the overall value.
func (c *Combined) AddMisPriming(amplicon int, pct float64) {
	if amplicon == 0 {
		c.misSummary = pct
		c.hasMisSummary = true
		return
	}
	c.misPriming = append(c.misPriming, Cell{Amplicon: amplicon, Value: pct})
}

// Flush renders means still waiting for a STDDEV (without error bars) and
// the combined mis-priming chart.
func (c *Combined) Flush(ctx context.Context) error {
	for _, key := range append([]ChannelKey(nil), c.order...) {
		mean := c.pending[key]
		c.drop(key)
		logging.Warnf("combined %s has a %s row but no %s row; plotting without error bars", key, statMean, statStddev)
		if err := c.emitPair(ctx, key, mean, nil); err != nil {
			return err
		}
	}
	if len(c.misPriming) == 0 {
		return nil
	}
	script, image := c.emitter.paths("combined", string(MetricMisPriming))
	p := c.emitter.graphParams(image)
	p.Title = "Mis-primed read pairs per amplicon, all samples"
	if c.hasMisSummary {
		p.Title = fmt.Sprintf("%s (%s%% overall)", p.Title, formatNum(c.misSummary))
	}
	p.Label = "% mis-primed"
	p.Amplicons = c.amplicons
	for _, cell := range c.misPriming {
		p.Data = append(p.Data, fmt.Sprintf("%d %s", cell.Amplicon, formatNum(cell.Value)))
	}
	if err := c.emitter.Emit(ctx, ChartCombinedMisPriming, p, script); err != nil {
		return err
	}
	c.Charts++
	return nil
}

func (c *Combined) drop(key ChannelKey) {
	delete(c.pending, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Combined) emitPair(ctx context.Context, key ChannelKey, mean, stddev []float64) error {
	style := combinedStyles[key.Metric]
	script, image := c.emitter.paths("combined", key.String())
	p := c.emitter.graphParams(image)
	p.Title = style.title
	if key.Metric == MetricCoverage {
		p.Title = fmt.Sprintf(style.title, key.Depth)
	}
	p.Label = style.label
	p.LogScale = style.log
	p.Amplicons = c.amplicons
	p.HasStddev = stddev != nil
	for i, m := range mean {
		line := fmt.Sprintf("%d %s", i+1, formatNum(m))
		if p.HasStddev {
			sd := 0.0
			if i < len(stddev) {
				sd = stddev[i]
			}
			line += " " + formatNum(sd)
		}
		p.Data = append(p.Data, line)
	}
	if err := c.emitter.Emit(ctx, ChartCombined, p, script); err != nil {
		return err
	}
	c.Charts++
	return nil
}
