package points

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/l3aro/autofree/pkg/store"
)

// ErrFormat is returned when an interchange document is malformed.
var ErrFormat = errors.New("malformed interchange document")

// Format is an interchange encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// document is the interchange layout shared by every format.
type document struct {
	Deallocations []Point `json:"deallocations" yaml:"deallocations" msgpack:"deallocations"`
}

// rawDocument distinguishes a missing deallocations field from an empty one.
type rawDocument struct {
	Deallocations *[]Point `json:"deallocations" yaml:"deallocations" msgpack:"deallocations"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported interchange file extension %q", filepath.Ext(path))
	}
}

// Encode serializes the set in the given format, preserving point order.
func Encode(format Format, s *Set) ([]byte, error) {
	doc := document{Deallocations: s.Points()}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "    ")
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatMsgpack:
		return msgpack.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses an interchange document. A missing deallocations field or
// an invalid record yields ErrFormat.
func Decode(format Format, data []byte) (*Set, error) {
	var raw rawDocument
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if raw.Deallocations == nil {
		return nil, fmt.Errorf("%w: missing deallocations field", ErrFormat)
	}

	s := &Set{}
	for i, p := range *raw.Deallocations {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrFormat, i, err)
		}
		s.Add(p)
	}
	return s, nil
}

func validate(p Point) error {
	if p.FunctionName == "" {
		return errors.New("empty function_name")
	}
	if p.VariableName == "" {
		return errors.New("empty variable_name")
	}
	if p.LineNumber <= 0 {
		return fmt.Errorf("line_number %d is not positive", p.LineNumber)
	}
	return nil
}

// Save writes the set to location, choosing the format from its extension.
func Save(ctx context.Context, st *store.Store, location string, s *Set) error {
	format, err := FormatFor(location)
	if err != nil {
		return err
	}
	data, err := Encode(format, s)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", location, err)
	}
	return st.Write(ctx, location, data)
}

// Load reads a set from location, choosing the format from its extension.
func Load(ctx context.Context, st *store.Store, location string) (*Set, error) {
	format, err := FormatFor(location)
	if err != nil {
		return nil, err
	}
	data, err := st.Read(ctx, location)
	if err != nil {
		return nil, err
	}
	s, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	return s, nil
}
