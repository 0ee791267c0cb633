// Package cli holds the thin presentation helpers shared by the
// tapekeeper subcommands: output formatting, typed command errors, and
// signal handling. Decision logic lives in the engine; this package only
// renders what the engine reports.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText is human-readable text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is machine-readable JSON output.
	FormatJSON OutputFormat = "json"
)

// Formatter renders command output.
type Formatter interface {
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter prints data with the value's String form.
type TextFormatter struct{}

// FormatTo writes data to w as plain text.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter prints indented JSON.
type JSONFormatter struct{}

// FormatTo writes data to w as indented JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// NewFormatter returns the formatter for the given format, defaulting to
// text for anything unrecognized.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}
