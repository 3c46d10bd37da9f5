// package formatter provides functions to export ranked jobs to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/rba/internal/scoring"
	"github.com/desertthunder/rba/internal/shared"
)

// Format is an export format for ranked jobs.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// Formats lists the supported export formats.
var Formats = []Format{JSON, CSV, Markdown, Text}

// ParseFormat resolves a format name. "md" and "text" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == Markdown {
		return ".md"
	}
	return "." + string(f)
}

// Export renders ranked jobs in the given format.
func Export(ranked []scoring.Ranked, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return ExportToJSON(ranked)
	case CSV:
		return ExportToCSV(ranked)
	case Markdown:
		return ExportToMarkdown(ranked, "Job Matches")
	case Text:
		return ExportToText(ranked)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToJSON renders ranked jobs as an indented JSON array.
func ExportToJSON(ranked []scoring.Ranked) ([]byte, error) {
	if ranked == nil {
		ranked = []scoring.Ranked{}
	}
	return shared.MarshalJSON(ranked, true)
}

// ExportToCSV converts ranked jobs to CSV format with columns: Rank, Score, Label, ID, Title, Company, Location, Remote, Experience, Skills, URL
func ExportToCSV(ranked []scoring.Ranked) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Score", "Label", "ID", "Title", "Company", "Location", "Remote", "Experience", "Skills", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, r := range ranked {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Result.Score),
			scoring.Label(r.Result.Score),
			r.Job.ID,
			r.Job.Title,
			r.Job.Company,
			r.Job.Location,
			remoteString(r.Job.Remote),
			r.Job.ExperienceLevel,
			strings.Join(r.Job.Skills, ";"),
			r.Job.URL,
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

// ExportToMarkdown converts ranked jobs to a Markdown document with a heading and a numbered list.
func ExportToMarkdown(ranked []scoring.Ranked, title string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Jobs**: %d\n\n", len(ranked)))

	buf.WriteString("## Ranking\n\n")
	for i, r := range ranked {
		name := r.Job.Title
		if r.Job.URL != "" {
			name = fmt.Sprintf("[%s](%s)", r.Job.Title, r.Job.URL)
		}
		buf.WriteString(fmt.Sprintf("%d. **%s** at %s: %d%% (%s)\n", i+1, name, r.Job.Company, r.Result.Score, scoring.Label(r.Result.Score)))

		var details []string
		if r.Job.Location != "" {
			details = append(details, r.Job.Location)
		}
		if r.Job.Remote != nil && *r.Job.Remote {
			details = append(details, "remote")
		}
		if r.Job.ExperienceLevel != "" {
			details = append(details, r.Job.ExperienceLevel)
		}
		if len(r.Job.Skills) > 0 {
			details = append(details, "skills: "+strings.Join(r.Job.Skills, ", "))
		}
		if len(details) > 0 {
			buf.WriteString(fmt.Sprintf("   - %s\n", strings.Join(details, " | ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts ranked jobs to plain text format
func ExportToText(ranked []scoring.Ranked) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Jobs: %d\n\n", len(ranked)))

	for i, r := range ranked {
		buf.WriteString(fmt.Sprintf("%d. [%3d] %s - %s\n", i+1, r.Result.Score, r.Job.Title, r.Job.Company))
	}

	return buf.Bytes(), nil
}

// WriteExport writes ranked jobs to path in the given format.
//
// Defaults to ranked_jobs{ext} as the filename.
func WriteExport(ranked []scoring.Ranked, f Format, path string) (string, error) {
	if path == "" {
		path = "ranked_jobs" + f.Extension()
	}

	data, err := Export(ranked, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

func remoteString(remote *bool) string {
	if remote == nil {
		return ""
	}
	return strconv.FormatBool(*remote)
}
