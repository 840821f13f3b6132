// Package output serializes analysis results. JSON is the primary format,
// YAML is offered for humans, and any writer can be wrapped in gzip for
// large graphs. Encoding is deterministic: map keys sort, slices keep their
// producer's order.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	derrors "depscope/internal/errors"
)

// Format selects the serialization of a result document.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHuman Format = "human"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatHuman:
		return FormatHuman, nil
	}
	return "", derrors.New(derrors.InputInvalid, "unknown output format: "+s)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return derrors.Wrap(derrors.InternalError, "could not encode JSON", err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return derrors.Wrap(derrors.InternalError, "could not encode YAML", err)
	}
	return enc.Close()
}

// Write serializes v in the given format.
func Write(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return WriteJSON(w, v)
	}
}

// WriteFile serializes v to path. A ".gz" suffix on the path enables gzip
// transparently.
func WriteFile(path string, format Format, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return derrors.Wrap(derrors.InternalError, "could not create output file", err)
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}

	return Write(w, format, v)
}
