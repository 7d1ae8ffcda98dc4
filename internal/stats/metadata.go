package stats

import (
	"strconv"
	"strings"
)

// Summary labels recognized in SS records.
const (
	summaryAmplicons = "Number of amplicons:"
	summaryFiles     = "Number of files:"
	summaryEnd       = "End of summary"
)

// Metadata holds the run-wide counts announced in the header. Missing or
// unparsable counts stay 0.
type Metadata struct {
	Amplicons int
	Files     int
}

// Apply folds one SS record into the metadata and reports whether it was the
// end-of-header marker.
func (m *Metadata) Apply(rec Record) (end bool) {
	if rec.Kind != KindSummary || len(rec.Fields) == 0 {
		return false
	}
	label := strings.TrimSpace(rec.Fields[0])
	switch label {
	case summaryEnd:
		return true
	case summaryAmplicons:
		m.Amplicons = headerCount(rec.Fields)
	case summaryFiles:
		m.Files = headerCount(rec.Fields)
	}
	return false
}

func headerCount(fields []string) int {
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
