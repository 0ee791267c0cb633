// Package tapefile reads and writes the line-oriented tape list format
// shared between the inventory and targeted-delete workflows.
//
// The format: lines beginning with '#' are comments or headers, blank
// lines are ignored, and every remaining line carries exactly one tape
// barcode or ARN. A file written by Write is accepted unmodified by Read
// and yields the same identifiers in the same order.
package tapefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// EmptyMarker is the comment written when an inventory matched no tapes,
// so even an empty result produces an unambiguous artifact.
const EmptyMarker = "# No tapes found"

// Header describes the run that produced a tape list.
type Header struct {
	GeneratedAt  time.Time
	Region       string
	StatusFilter []string
	TotalAll     int // tapes before filtering
	Matched      int // tapes written
}

// Write renders a tape list with its header block. With zero tapes the
// body is the explicit empty-result marker; the artifact is produced
// either way.
func Write(w io.Writer, hdr Header, tapes []vtl.Tape) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# Virtual Tape List")
	fmt.Fprintf(bw, "# Generated on: %s\n", hdr.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "# Region: %s\n", hdr.Region)
	if len(hdr.StatusFilter) > 0 {
		fmt.Fprintf(bw, "# Status filter: %s\n", strings.Join(hdr.StatusFilter, ", "))
		fmt.Fprintf(bw, "# Total tapes (before filter): %d\n", hdr.TotalAll)
	}
	fmt.Fprintf(bw, "# Matched tapes: %d\n", hdr.Matched)
	fmt.Fprintln(bw, "#")
	fmt.Fprintln(bw, "# Format: one tape barcode per line.")
	fmt.Fprintln(bw, "# Feed this file back with: tapekeeper delete --tape-file <path>")
	fmt.Fprintln(bw, "#")
	fmt.Fprintln(bw)

	if len(tapes) == 0 {
		fmt.Fprintln(bw, EmptyMarker)
		return bw.Flush()
	}

	for _, tape := range tapes {
		fmt.Fprintln(bw, tape.Barcode)
	}
	return bw.Flush()
}

// WriteFile writes the tape list to path, truncating any existing file.
func WriteFile(path string, hdr Header, tapes []vtl.Tape) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tape list %q: %w", path, err)
	}
	if err := Write(f, hdr, tapes); err != nil {
		f.Close()
		return fmt.Errorf("failed to write tape list %q: %w", path, err)
	}
	return f.Close()
}

// Read parses a tape list, returning identifiers in file order.
// Comments and blank lines are dropped; nothing else is interpreted.
func Read(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tape list: %w", err)
	}
	return ids, nil
}

// ReadFile reads a tape list from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tape list %q: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
