// Package payload reads hydration payloads and job lists from JSON or YAML documents.
//
// Documents are checked against embedded JSON Schemas before they are decoded. Any failure to parse or validate
// a document wraps [shared.ErrInvalidPayload].
package payload

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/shared"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Format is the encoding of a payload document.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	default:
		return ""
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return 0, fmt.Errorf("%w: unsupported file extension %q", shared.ErrInvalidPayload, filepath.Ext(path))
	}
}

// FieldError is a schema violation at a document path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", shared.ErrInvalidPayload, ve.Schema)
	for _, e := range ve.Errors {
		fmt.Fprintf(&sb, "; %s: %s", e.Field, e.Message)
	}
	return sb.String()
}

func (ve *ValidationError) Unwrap() error { return shared.ErrInvalidPayload }

// DecodeHydration reads a hydration payload.
func DecodeHydration(r io.Reader, f Format) (*models.HydrationPayload, error) {
	var p models.HydrationPayload
	if err := decode(r, f, "hydration", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeJobs reads a list of jobs.
func DecodeJobs(r io.Reader, f Format) ([]models.Job, error) {
	var jobs []models.Job
	if err := decode(r, f, "jobs", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// LoadHydration reads a hydration payload from a .json, .yaml or .yml file.
func LoadHydration(path string) (*models.HydrationPayload, error) {
	var p *models.HydrationPayload
	err := withFile(path, func(r io.Reader, f Format) (err error) {
		p, err = DecodeHydration(r, f)
		return err
	})
	return p, err
}

// LoadJobs reads a list of jobs from a .json, .yaml or .yml file.
func LoadJobs(path string) ([]models.Job, error) {
	var jobs []models.Job
	err := withFile(path, func(r io.Reader, f Format) (err error) {
		jobs, err = DecodeJobs(r, f)
		return err
	})
	return jobs, err
}

func withFile(path string, fn func(io.Reader, Format) error) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if err := fn(file, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// decode parses r into a generic document, validates it against the named schema and converts it into v.
func decode(r io.Reader, f Format, schema string, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	var doc any
	switch f {
	case YAML:
		doc, err = decodeYAML(data)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return fmt.Errorf("%w: invalid %s: %v", shared.ErrInvalidPayload, f, err)
	}

	if err := validate(schema, doc); err != nil {
		return err
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(normalized, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}
	return nil
}

// decodeYAML decodes data into a generic document. Timestamps keep their source text since every date field is a string.
func decodeYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return nil, nil
	}

	keepTimestampText(&node)

	var doc any
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func keepTimestampText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, child := range n.Content {
		keepTimestampText(child)
	}
}

func validate(schema string, doc any) error {
	src, err := schemaFS.ReadFile("schemas/" + schema + ".schema.json")
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schema, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(src), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidPayload, schema, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: schema, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
