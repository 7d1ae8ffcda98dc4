// Package stats parses the tagged, tab-delimited output of an amplicon
// statistics run and provides the small derived values plotted from it.
package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the category of a parsed record.
type Kind int

const (
	KindUnknown Kind = iota
	KindSummary
	KindAmplicon
	KindReads
	KindDepth
	KindReadPercent
	KindCoverage
	KindMisPriming
	KindTemplateCoord
	KindCombinedReads
	KindCombinedDepth
	KindCombinedReadPercent
	KindCombinedCoverage
	KindCombinedMisPriming
)

var kindNames = map[Kind]string{
	KindUnknown:             "unknown",
	KindSummary:             "summary",
	KindAmplicon:            "amplicon",
	KindReads:               "reads",
	KindDepth:               "depth",
	KindReadPercent:         "read-percent",
	KindCoverage:            "coverage",
	KindMisPriming:          "mispriming",
	KindTemplateCoord:       "template-coordinates",
	KindCombinedReads:       "combined-reads",
	KindCombinedDepth:       "combined-depth",
	KindCombinedReadPercent: "combined-read-percent",
	KindCombinedCoverage:    "combined-coverage",
	KindCombinedMisPriming:  "combined-mispriming",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PerSample reports whether records of this kind carry a sample identifier
// in their first field.
func (k Kind) PerSample() bool {
	switch k {
	case KindReads, KindDepth, KindReadPercent, KindCoverage, KindMisPriming, KindTemplateCoord:
		return true
	}
	return false
}

// Combined reports whether records of this kind aggregate all samples.
func (k Kind) Combined() bool {
	switch k {
	case KindCombinedReads, KindCombinedDepth, KindCombinedReadPercent, KindCombinedCoverage, KindCombinedMisPriming:
		return true
	}
	return false
}

// Record is one classified input line. Sample holds the sample identifier
// for per-sample kinds and the statistic label (MEAN, STDDEV, COMBINED) for
// combined kinds; it is empty otherwise. Fields holds the remaining columns.
type Record struct {
	Tag    string
	Kind   Kind
	Depth  int
	Sample string
	Fields []string
}

var exactTags = map[string]Kind{
	"SS":       KindSummary,
	"AMPLICON": KindAmplicon,
	"FREADS":   KindReads,
	"FDEPTH":   KindDepth,
	"FRPERC":   KindReadPercent,
	"FAMP":     KindMisPriming,
	"FTCOORD":  KindTemplateCoord,
	"CREADS":   KindCombinedReads,
	"CDEPTH":   KindCombinedDepth,
	"CRPERC":   KindCombinedReadPercent,
	"CAMP":     KindCombinedMisPriming,
}

// depthTags are tags of the form <prefix><N> where N is a coverage depth.
var depthTags = []struct {
	prefix string
	kind   Kind
}{
	{"FPCOV-", KindCoverage},
	{"CPCOV-", KindCombinedCoverage},
}

// minFields is the number of columns after the tag a record needs before it
// is usable. The sample column counts.
var minFields = map[Kind]int{
	KindSummary:             1,
	KindAmplicon:            3,
	KindReads:               2,
	KindDepth:               2,
	KindReadPercent:         2,
	KindCoverage:            2,
	KindMisPriming:          5,
	KindTemplateCoord:       2,
	KindCombinedReads:       2,
	KindCombinedDepth:       2,
	KindCombinedReadPercent: 2,
	KindCombinedCoverage:    2,
	KindCombinedMisPriming:  5,
}

// Classify maps a tag to its kind. For depth-keyed tags the numeric suffix
// is returned as depth.
func Classify(tag string) (kind Kind, depth int) {
	if k, ok := exactTags[tag]; ok {
		return k, 0
	}
	for _, dt := range depthTags {
		if !strings.HasPrefix(tag, dt.prefix) {
			continue
		}
		n, err := strconv.Atoi(tag[len(dt.prefix):])
		if err != nil || n < 0 {
			return KindUnknown, 0
		}
		return dt.kind, n
	}
	return KindUnknown, 0
}

// Parse splits a raw line on tabs and classifies it. Comments, blank lines,
// unknown tags and recognized tags with too few columns yield ok == false.
func Parse(line string) (rec Record, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, "#") {
		return Record{}, false
	}
	cols := strings.Split(line, "\t")
	kind, depth := Classify(cols[0])
	if kind == KindUnknown {
		return Record{}, false
	}
	rest := cols[1:]
	if len(rest) < minFields[kind] {
		return Record{}, false
	}
	rec = Record{Tag: cols[0], Kind: kind, Depth: depth}
	if kind.PerSample() || kind.Combined() {
		rec.Sample = rest[0]
		rest = rest[1:]
	}
	rec.Fields = rest
	return rec, true
}

// Floats parses every field as a float64.
func (r Record) Floats() ([]float64, error) {
	return ParseFloats(r.Fields)
}

// ParseFloats parses each string as a float64. Empty trailing columns, which
// some producers emit, are dropped.
func ParseFloats(fields []string) ([]float64, error) {
	for len(fields) > 0 && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	out := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// AmpliconCounts is one mis-priming observation: the amplicon index (0 for
// the whole-sample total) and the three read-pair classifications.
type AmpliconCounts struct {
	Amplicon int
	Correct  float64
	LeftErr  float64
	RightErr float64
}

// Counts decodes a mis-priming record.
func (r Record) Counts() (AmpliconCounts, error) {
	if r.Kind != KindMisPriming && r.Kind != KindCombinedMisPriming {
		return AmpliconCounts{}, fmt.Errorf("%s record has no mis-priming counts", r.Kind)
	}
	if len(r.Fields) < 4 {
		return AmpliconCounts{}, fmt.Errorf("mis-priming record needs 4 columns, got %d", len(r.Fields))
	}
	amp, err := strconv.Atoi(strings.TrimSpace(r.Fields[0]))
	if err != nil {
		return AmpliconCounts{}, fmt.Errorf("amplicon index: %w", err)
	}
	vals, err := ParseFloats(r.Fields[1:4])
	if err != nil {
		return AmpliconCounts{}, err
	}
	if len(vals) < 3 {
		return AmpliconCounts{}, fmt.Errorf("mis-priming record for amplicon %d has empty counts", amp)
	}
	return AmpliconCounts{Amplicon: amp, Correct: vals[0], LeftErr: vals[1], RightErr: vals[2]}, nil
}
