package plot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mwiater/ampliconplot/internal/logging"
	"github.com/mwiater/ampliconplot/internal/stats"
)

// Metric is a plotted statistic category.
type Metric string

const (
	MetricReads       Metric = "reads"
	MetricDepth       Metric = "depth"
	MetricReadPercent Metric = "readperc"
	MetricCoverage    Metric = "coverage"
	MetricMisPriming  Metric = "mispriming"
)

// ChannelKey names one output stream: a metric and, for coverage, the depth
// threshold.
type ChannelKey struct {
	Metric Metric
	Depth  int
}

func (k ChannelKey) String() string {
	if k.Metric == MetricCoverage {
		return fmt.Sprintf("%s-%d", k.Metric, k.Depth)
	}
	return string(k.Metric)
}

// Cell is one plotted value for one amplicon.
type Cell struct {
	Amplicon int
	Value    float64
}

type heatmapStyle struct {
	title string
	label string
	cbMin string
	cbMax string
}

var heatmapStyles = map[Metric]heatmapStyle{
	MetricReads:       {title: "Reads per amplicon", label: "log10(reads)", cbMin: "0", cbMax: "*"},
	MetricDepth:       {title: "Mean read depth per amplicon", label: "log10(depth)", cbMin: "0", cbMax: "*"},
	MetricReadPercent: {title: "Share of sample reads per amplicon", label: "% of reads", cbMin: "0", cbMax: "*"},
	MetricCoverage:    {title: "Amplicon bases covered at depth >= %d", label: "% covered", cbMin: "0", cbMax: "100"},
	MetricMisPriming:  {title: "Mis-primed read pairs per amplicon", label: "% mis-primed", cbMin: "0", cbMax: "*"},
}

func (k ChannelKey) title() string {
	style := heatmapStyles[k.Metric]
	if k.Metric == MetricCoverage {
		return fmt.Sprintf(style.title, k.Depth)
	}
	return style.title
}

type channelState int

const (
	channelClosed channelState = iota
	channelOpen
)

// Channel tracks pagination for one key.
type Channel struct {
	Key ChannelKey
	// Pages counts pages rendered so far.
	Pages int

	state    channelState
	page     int
	rows     int
	expected int
	sample   string
	samples  []string
	out      *page
}

// PageBreak reports whether a page holding rows sample rows must close
// before the next row is written. A page breaks once it is full, unless the
// next page would hold exactly one sample: then the current page absorbs it.
// total is the announced sample count (0 when unknown) and pageIndex is the
// 1-based index of the current page.
func PageBreak(rows, pageSize, total, pageIndex int) bool {
	return rows >= pageSize && total-pageSize*pageIndex != 1
}

// ExpectedRows is how many samples page pageIndex will hold, or 0 when the
// total is unknown or already exhausted.
func ExpectedRows(total, pageSize, pageIndex int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	left := total - pageSize*(pageIndex-1)
	switch {
	case left <= 0:
		return 0
	case left <= pageSize+1:
		return left
	}
	return pageSize
}

// Channels owns every paginated heatmap stream of a run. Channels are
// created on first use and flushed in creation order.
type Channels struct {
	pageSize int
	meta     stats.Metadata
	emitter  *Emitter
	table    map[ChannelKey]*Channel
	order    []ChannelKey
}

// NewChannels returns an empty channel table.
func NewChannels(meta stats.Metadata, pageSize int, emitter *Emitter) *Channels {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Channels{
		pageSize: pageSize,
		meta:     meta,
		emitter:  emitter,
		table:    make(map[ChannelKey]*Channel),
	}
}

// Route writes cells for sample as a new heatmap row. Starting the row may
// first close the current page.
func (c *Channels) Route(ctx context.Context, key ChannelKey, sample string, cells []Cell) error {
	ch := c.channel(key)
	if err := c.startRow(ctx, ch, sample); err != nil {
		return err
	}
	return c.write(ch, cells)
}

// Append adds cells to the current row while sample is unchanged and starts
// a new row otherwise. It serves record kinds that spread one sample over
// several lines.
func (c *Channels) Append(ctx context.Context, key ChannelKey, sample string, cells []Cell) error {
	ch := c.channel(key)
	if ch.state == channelClosed || sample != ch.sample {
		if err := c.startRow(ctx, ch, sample); err != nil {
			return err
		}
	}
	return c.write(ch, cells)
}

func (c *Channels) write(ch *Channel, cells []Cell) error {
	for _, cell := range cells {
		line := fmt.Sprintf("%d %d %s", cell.Amplicon, ch.rows, formatNum(cell.Value))
		if err := ch.out.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

// Flush closes and renders every open page.
func (c *Channels) Flush(ctx context.Context) error {
	for _, key := range c.order {
		ch := c.table[key]
		if ch.state != channelOpen {
			continue
		}
		if err := c.closePage(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// List returns the channels in creation order.
func (c *Channels) List() []*Channel {
	out := make([]*Channel, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.table[key])
	}
	return out
}

func (c *Channels) channel(key ChannelKey) *Channel {
	ch, ok := c.table[key]
	if !ok {
		ch = &Channel{Key: key}
		c.table[key] = ch
		c.order = append(c.order, key)
		logging.Debugf("created heatmap channel %s", key)
	}
	return ch
}

func (c *Channels) startRow(ctx context.Context, ch *Channel, sample string) error {
	if ch.state == channelOpen && PageBreak(ch.rows, c.pageSize, c.meta.Files, ch.page) {
		if err := c.closePage(ctx, ch); err != nil {
			return err
		}
	}
	if ch.state == channelClosed {
		if err := c.openPage(ch); err != nil {
			return err
		}
	}
	ch.rows++
	ch.sample = sample
	ch.samples = append(ch.samples, sample)
	return nil
}

func (c *Channels) openPage(ch *Channel) error {
	ch.page++
	ch.rows = 0
	ch.sample = ""
	ch.samples = nil
	ch.expected = ExpectedRows(c.meta.Files, c.pageSize, ch.page)

	style := heatmapStyles[ch.Key.Metric]
	script, image := c.emitter.paths("heatmap", ch.Key.String(), strconv.Itoa(ch.page))
	p := c.emitter.heatmapParams(image)
	p.Title = fmt.Sprintf("%s (page %d)", ch.Key.title(), ch.page)
	p.Label = style.label
	p.CbMin, p.CbMax = style.cbMin, style.cbMax
	p.Amplicons = c.meta.Amplicons
	p.Rows = ch.expected
	p.Page = ch.page

	out, err := c.emitter.openPage(ChartHeatmapHeader, p, script)
	if err != nil {
		return err
	}
	ch.out = out
	ch.state = channelOpen
	return nil
}

func (c *Channels) closePage(ctx context.Context, ch *Channel) error {
	if ch.expected != 0 && ch.rows != ch.expected {
		logging.Debugf("heatmap %s page %d holds %d rows, expected %d", ch.Key, ch.page, ch.rows, ch.expected)
	}
	p := scriptParams{Rows: ch.rows, Samples: labels(ch.samples), Page: ch.page}
	out := ch.out
	ch.out = nil
	ch.state = channelClosed
	if err := c.emitter.closePage(ctx, out, ChartHeatmapFooter, p); err != nil {
		return err
	}
	ch.Pages++
	return nil
}
