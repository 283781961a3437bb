// Package view provides output formatting for wikx commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/open-cli-collective/wiki-extractor/pkg/wikitext"
)

// Format represents a console output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ValidFormats returns the accepted console formats.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidateFormat checks a console format name; empty means table.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range ValidFormats() {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s (valid: %s)", format, strings.Join(ValidFormats(), ", "))
}

// Renderer renders data in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		format:  format,
		writer:  os.Stderr,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

// RenderTable renders rows under bold, padded headers. Plain format prints
// tab-separated rows without headers; JSON callers use RenderJSON instead.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	if r.format == FormatPlain {
		r.renderTableAsPlain(rows)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) && len(val) > widths[i] {
				widths[i] = len(val)
			}
		}
	}

	bold := color.New(color.Bold)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(r.writer, "  ")
		}
		if i < len(headers)-1 {
			bold.Fprintf(r.writer, "%-*s", widths[i], h)
		} else {
			bold.Fprint(r.writer, h)
		}
	}
	fmt.Fprintln(r.writer)

	for _, row := range rows {
		for i, val := range row {
			if i > 0 {
				fmt.Fprint(r.writer, "  ")
			}
			if i < len(widths) && i < len(row)-1 {
				fmt.Fprintf(r.writer, "%-*s", widths[i], val)
			} else {
				fmt.Fprint(r.writer, val)
			}
		}
		fmt.Fprintln(r.writer)
	}
}

func (r *Renderer) renderTableAsPlain(rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(r.writer, strings.Join(row, "\t"))
	}
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.writer, string(data))
	return nil
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(r.writer, "! "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.writer, "✗ "+msg)
}

// Summary describes a finished extraction run.
type Summary struct {
	Pages     int           `json:"pages"`
	Emitted   int           `json:"emitted"`
	Filtered  int           `json:"filtered"`
	Failed    int           `json:"failed"`
	Templates int           `json:"templates"`
	Files     int           `json:"files"`
	Bytes     int64         `json:"bytes"`
	Elapsed   time.Duration `json:"elapsed_ns"`

	ExpansionDepthErrs  int `json:"expansion_depth_errors"`
	InvocationDepthErrs int `json:"invocation_depth_errors"`
	ParameterDepthErrs  int `json:"parameter_depth_errors"`
	TitleErrs           int `json:"title_errors"`
}

// AddDiagnostics copies the counters of d into s.
func (s *Summary) AddDiagnostics(d *wikitext.Diagnostics) {
	s.ExpansionDepthErrs += d.ExpansionDepthErrs
	s.InvocationDepthErrs += d.InvocationDepthErrs
	s.ParameterDepthErrs += d.ParameterDepthErrs
	s.TitleErrs += d.TitleErrs
}

// Rate is the number of pages per second.
func (s *Summary) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Pages) / s.Elapsed.Seconds()
}

// RenderSummary prints the outcome of an extraction run.
func (r *Renderer) RenderSummary(s Summary) error {
	if r.format == FormatJSON {
		return r.RenderJSON(s)
	}

	rows := [][]string{
		{"Pages", humanize.Comma(int64(s.Pages))},
		{"Emitted", humanize.Comma(int64(s.Emitted))},
		{"Filtered", humanize.Comma(int64(s.Filtered))},
	}
	if s.Templates > 0 {
		rows = append(rows, []string{"Templates", humanize.Comma(int64(s.Templates))})
	}
	if s.Files > 0 {
		rows = append(rows, []string{"Output", fmt.Sprintf("%s in %d file(s)", humanize.Bytes(uint64(s.Bytes)), s.Files)})
	}
	rows = append(rows,
		[]string{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
		[]string{"Rate", fmt.Sprintf("%s pages/s", humanize.FormatFloat("#,###.#", s.Rate()))},
	)

	r.RenderTable([]string{"METRIC", "VALUE"}, rows)

	if recursion := s.ExpansionDepthErrs + s.InvocationDepthErrs + s.ParameterDepthErrs; recursion > 0 {
		r.Warning(fmt.Sprintf("recursion limit hit %d time(s) (expansion %d, invocation %d, parameter %d)",
			recursion, s.ExpansionDepthErrs, s.InvocationDepthErrs, s.ParameterDepthErrs))
	}
	if s.Failed > 0 {
		r.Error(fmt.Sprintf("%d page(s) failed", s.Failed))
	}
	return nil
}
