package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Span is the extent of one amplicon: the smallest left-primer start to the
// largest right-primer end over all primer alternatives.
type Span struct {
	Index int
	Start int
	End   int
}

// Spans collects amplicon extents from AMPLICON records.
type Spans struct {
	byIndex map[int]*Span
}

// NewSpans returns an empty collection.
func NewSpans() *Spans {
	return &Spans{byIndex: make(map[int]*Span)}
}

// Add merges an AMPLICON record (index, left primers, right primers). Primer
// lists are comma separated start-end ranges.
func (s *Spans) Add(rec Record) error {
	if rec.Kind != KindAmplicon || len(rec.Fields) < 3 {
		return fmt.Errorf("not an amplicon record: %q", rec.Tag)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(rec.Fields[0]))
	if err != nil {
		return fmt.Errorf("amplicon index: %w", err)
	}
	lefts, err := parseRanges(rec.Fields[1])
	if err != nil {
		return fmt.Errorf("amplicon %d left primers: %w", idx, err)
	}
	rights, err := parseRanges(rec.Fields[2])
	if err != nil {
		return fmt.Errorf("amplicon %d right primers: %w", idx, err)
	}

	span, ok := s.byIndex[idx]
	if !ok {
		span = &Span{Index: idx, Start: lefts[0][0], End: rights[0][1]}
		s.byIndex[idx] = span
	}
	for _, r := range lefts {
		if r[0] < span.Start {
			span.Start = r[0]
		}
	}
	for _, r := range rights {
		if r[1] > span.End {
			span.End = r[1]
		}
	}
	return nil
}

// Len returns the number of distinct amplicons seen.
func (s *Spans) Len() int { return len(s.byIndex) }

// Finalize returns the spans ordered by amplicon index.
func (s *Spans) Finalize() []Span {
	out := make([]Span, 0, len(s.byIndex))
	for _, sp := range s.byIndex {
		out = append(out, *sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func parseRanges(field string) ([][2]int, error) {
	var out [][2]int
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, b, ok := strings.Cut(part, "-")
		if !ok {
			return nil, fmt.Errorf("range %q is not start-end", part)
		}
		start, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		end, err := strconv.Atoi(b)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		out = append(out, [2]int{start, end})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no ranges in %q", field)
	}
	return out, nil
}

// TemplateSpan is one observed template extent with its status flags.
type TemplateSpan struct {
	Start int
	End   int
	Flags int
}

// TemplateSpans decodes an FTCOORD record into its amplicon index and the
// list of start,end,count,status tuples, keeping start, end and status.
func (r Record) TemplateSpans() (amplicon int, spans []TemplateSpan, err error) {
	if r.Kind != KindTemplateCoord || len(r.Fields) == 0 {
		return 0, nil, fmt.Errorf("%s record has no template coordinates", r.Kind)
	}
	amplicon, err = strconv.Atoi(strings.TrimSpace(r.Fields[0]))
	if err != nil {
		return 0, nil, fmt.Errorf("amplicon index: %w", err)
	}
	for _, tuple := range r.Fields[1:] {
		tuple = strings.TrimSpace(tuple)
		if tuple == "" {
			continue
		}
		parts := strings.Split(tuple, ",")
		if len(parts) < 4 {
			return 0, nil, fmt.Errorf("template tuple %q needs start,end,count,status", tuple)
		}
		var nums [4]int
		for i := 0; i < 4; i++ {
			nums[i], err = strconv.Atoi(parts[i])
			if err != nil {
				return 0, nil, fmt.Errorf("template tuple %q: %w", tuple, err)
			}
		}
		spans = append(spans, TemplateSpan{Start: nums[0], End: nums[1], Flags: nums[3]})
	}
	return amplicon, spans, nil
}
