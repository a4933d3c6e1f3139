package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatSummary renders the batch summary as text, json or csv.
func formatSummary(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	case "text", "":
		return formatText(r), nil
	default:
		return "", fmt.Errorf("unknown summary format %q (want text, json or csv)", format)
	}
}

type jsonSummary struct {
	RunID      string            `json:"run_id"`
	Documents  int               `json:"documents"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Pages      int               `json:"pages"`
	Regions    int               `json:"regions"`
	DurationMs int64             `json:"duration_ms"`
	Workers    int               `json:"workers"`
	Results    []DocumentOutcome `json:"results"`
}

func formatJSON(r *Result) (string, error) {
	s := jsonSummary{
		RunID:      r.RunID,
		Documents:  len(r.Documents),
		Succeeded:  r.Succeeded(),
		Failed:     r.Failed(),
		Pages:      r.Pages(),
		Regions:    r.Regions(),
		DurationMs: r.Duration.Milliseconds(),
		Workers:    r.WorkerCount,
		Results:    r.Documents,
	}
	if s.Results == nil {
		s.Results = []DocumentOutcome{}
	}
	bts, err := json.MarshalIndent(s, "", "  ")
	return string(bts) + "\n", err
}

func formatCSV(r *Result) (string, error) {
	var out strings.Builder
	w := csv.NewWriter(&out)
	rows := [][]string{{"input", "output", "pages", "regions", "chars", "duration_ms", "error"}}
	for _, d := range r.Documents {
		rows = append(rows, []string{
			d.Input,
			d.Output,
			strconv.Itoa(d.Pages),
			strconv.Itoa(d.Regions),
			strconv.Itoa(d.Chars),
			strconv.FormatInt(d.Duration.Milliseconds(), 10),
			d.Error,
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return out.String(), nil
}

func formatText(r *Result) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Documents: %d (succeeded %d, failed %d)\n", len(r.Documents), r.Succeeded(), r.Failed())
	fmt.Fprintf(&out, "Pages: %d\n", r.Pages())
	fmt.Fprintf(&out, "Regions: %d\n", r.Regions())
	fmt.Fprintf(&out, "Workers: %d\n", r.WorkerCount)
	fmt.Fprintf(&out, "Duration: %v\n", r.Duration.Round(time.Millisecond))
	for _, d := range r.Documents {
		if d.Succeeded() {
			fmt.Fprintf(&out, "  ok     %s -> %s\n", d.Input, d.Output)
		} else {
			fmt.Fprintf(&out, "  FAILED %s: %s\n", d.Input, d.Error)
		}
	}
	return out.String()
}
