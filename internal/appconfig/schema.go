package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const configSchema = `{
  "type": "object",
  "properties": {
    "prefix":      {"type": "string", "minLength": 1},
    "heatmapSize": {"type": "string", "pattern": "^[0-9]+x[0-9]+$"},
    "hgraphSize":  {"type": "string", "pattern": "^[0-9]+x[0-9]+$"},
    "vgraphSize":  {"type": "string", "pattern": "^[0-9]+x[0-9]+$"},
    "pageSize":    {"type": "integer", "minimum": 1},
    "smoothing":   {"type": "number", "minimum": 0},
    "layout":      {"enum": ["horizontal", "vertical"]},
    "renderer":    {"type": "string", "minLength": 1},
    "skipRender":  {"type": "boolean"},
    "debug":       {"type": "boolean"},
    "logFile":     {"type": "string"}
  },
  "required": ["prefix", "heatmapSize", "hgraphSize", "vgraphSize", "pageSize", "smoothing", "layout"]
}`

var schemaLoader = gojsonschema.NewStringLoader(configSchema)

// Validate checks cfg against the configuration schema and reports every
// violation at once.
func Validate(cfg Config) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}
