// package formatter provides functions to export run history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/shared"
)

// Format names an export format accepted by `history export --format`.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText}

// ParseFormat resolves a format name; "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want csv, markdown or txt)", shared.ErrInvalidFlag, s)
	}
}

// DefaultFilename returns the file an export is written to when no output path is given.
func (f Format) DefaultFilename() string {
	switch f {
	case FormatMarkdown:
		return "history.md"
	case FormatText:
		return "history.txt"
	default:
		return "history.csv"
	}
}

// Export renders runs in the given format.
func Export(runs []*models.Run, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(runs)
	case FormatMarkdown:
		return ExportToMarkdown(runs)
	case FormatText:
		return ExportToText(runs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV converts runs to CSV format with columns: Sequence, ID, Surface, Success, Message, Count, DurationMS, CreatedAt
func ExportToCSV(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Surface", "Success", "Message", "Count", "DurationMS", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		count := ""
		if n, ok := run.Result().TrackCount(); ok {
			count = strconv.Itoa(n)
		}

		record := []string{
			strconv.Itoa(run.Sequence()),
			run.ID(),
			string(run.Surface()),
			strconv.FormatBool(run.Success()),
			run.Message(),
			count,
			strconv.FormatInt(run.Duration().Milliseconds(), 10),
			run.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts runs to a Markdown document with a summary and a table
func ExportToMarkdown(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	s := summarize(runs)

	buf.WriteString("# Playlist Generation History\n\n")
	buf.WriteString(fmt.Sprintf("**Runs**: %d\n", s.total))
	buf.WriteString(fmt.Sprintf("**Succeeded**: %d\n", s.succeeded))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", s.total-s.succeeded))

	if len(runs) == 0 {
		buf.WriteString("_No runs recorded._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | When | Surface | Result | Tracks | Duration | Message |\n")
	buf.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			run.Sequence(),
			run.CreatedAt().UTC().Format(time.RFC3339),
			run.Surface(),
			Outcome(run),
			tracks(run),
			FormatDuration(run.Duration()),
			escapeCell(run.Message()),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts runs to plain text format
func ExportToText(runs []*models.Run) ([]byte, error) {
	var buf bytes.Buffer
	s := summarize(runs)

	buf.WriteString(fmt.Sprintf("Runs: %d (%d succeeded, %d failed)\n\n", s.total, s.succeeded, s.total-s.succeeded))

	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s %s - %s", run.Sequence(), run.Surface(), run.CreatedAt().UTC().Format(time.DateTime), Outcome(run), run.Message()))
		if n, ok := run.Result().TrackCount(); ok {
			buf.WriteString(fmt.Sprintf(" (%d tracks)", n))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteExport renders runs and writes them to path, defaulting to the format's filename.
func WriteExport(runs []*models.Run, f Format, path string) (string, error) {
	if path == "" {
		path = f.DefaultFilename()
	}

	data, err := Export(runs, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// Outcome renders a run's success flag as a word.
func Outcome(run *models.Run) string {
	if run.Success() {
		return "success"
	}
	return "failed"
}

// FormatDuration renders d rounded to milliseconds, or "-" when it is zero.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func tracks(run *models.Run) string {
	if n, ok := run.Result().TrackCount(); ok {
		return strconv.Itoa(n)
	}
	return "-"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

type summary struct {
	total     int
	succeeded int
}

func summarize(runs []*models.Run) summary {
	s := summary{total: len(runs)}
	for _, run := range runs {
		if run.Success() {
			s.succeeded++
		}
	}
	return s
}
