package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/KaramelBytes/sensordash-cli/internal/dataset"
)

// DefaultSampleRows is the number of head rows included in a report.
const DefaultSampleRows = 5

// Report is a markdown-friendly analysis of one sensor dataset.
type Report struct {
	Name      string
	ID        string
	Rows      int
	Columns   []dataset.Variable
	Extra     []string
	From, To  time.Time
	Missing   map[dataset.Variable]int
	Summaries []Summary
	Filters   []FilterCount
	Samples   []dataset.Record
	Warnings  []string
	Site      *Site
}

// FilterCount records how many rows a threshold filter kept.
type FilterCount struct {
	Label     string
	Variable  dataset.Variable
	Op        string // ">" or "<"
	Threshold dataset.Value
	Rows      int
}

// NewReport summarizes every present variable of ds and keeps up to
// sampleRows head records.
func NewReport(ds *dataset.Dataset, sampleRows int) (*Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("report: nil dataset")
	}
	if sampleRows < 0 {
		sampleRows = DefaultSampleRows
	}
	r := &Report{
		Name:    ds.Name(),
		ID:      ds.ID(),
		Rows:    ds.Len(),
		Columns: ds.Columns(),
		Extra:   ds.Extra(),
		Missing: map[dataset.Variable]int{},
	}
	for i := 0; i < ds.Len(); i++ {
		rec := ds.At(i)
		if r.From.IsZero() || rec.Time.Before(r.From) {
			r.From = rec.Time
		}
		if r.To.IsZero() || rec.Time.After(r.To) {
			r.To = rec.Time
		}
		if i < sampleRows {
			r.Samples = append(r.Samples, rec)
		}
	}
	for _, v := range r.Columns {
		s, err := Summarize(ds, v)
		if err != nil {
			return nil, err
		}
		r.Summaries = append(r.Summaries, s)
		r.Missing[v] = r.Rows - s.Count
		if miss := r.Missing[v]; miss > 0 {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %d of %d rows have no value", v, miss, r.Rows))
		}
	}
	if len(r.Columns) == 0 {
		r.Warnings = append(r.Warnings, "no temperature or humedad column found")
	}
	return r, nil
}

// Markdown renders the report. Numbers are rounded to two decimals.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("## Dataset summary\n\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("- File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("- Rows: %d\n", r.Rows))
	if r.Rows > 0 {
		b.WriteString(fmt.Sprintf("- Time range: %s to %s\n", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339)))
	}
	cols := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		cols[i] = string(c)
	}
	b.WriteString(fmt.Sprintf("- Variables: %s\n", joinOr(cols, "(none)")))
	if len(r.Extra) > 0 {
		b.WriteString(fmt.Sprintf("- Other columns: %s\n", strings.Join(r.Extra, ", ")))
	}

	if len(r.Summaries) > 0 {
		b.WriteString("\n## Statistics\n\n")
		b.WriteString("| stat |")
		for _, s := range r.Summaries {
			b.WriteString(fmt.Sprintf(" %s |", s.Variable))
		}
		b.WriteString("\n|---|")
		for range r.Summaries {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for i, f := range r.Summaries[0].Fields() {
			b.WriteString(fmt.Sprintf("| %s |", f.Name))
			for _, s := range r.Summaries {
				if i == 0 {
					b.WriteString(fmt.Sprintf(" %d |", s.Count))
					continue
				}
				b.WriteString(fmt.Sprintf(" %s |", Format2(s.Fields()[i].Value)))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Filters) > 0 {
		b.WriteString("\n## Filters\n\n")
		for _, f := range r.Filters {
			b.WriteString(fmt.Sprintf("- %s: %s %s %s → %d rows\n", f.Label, f.Variable, f.Op, Format2(f.Threshold), f.Rows))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n## Head rows\n\n")
		b.WriteString("| Time |")
		for _, c := range r.Columns {
			b.WriteString(fmt.Sprintf(" %s |", c))
		}
		b.WriteString("\n|---|")
		for range r.Columns {
			b.WriteString("---|")
		}
		b.WriteString("\n")
		for _, rec := range r.Samples {
			b.WriteString(fmt.Sprintf("| %s |", rec.Time.Format("2006-01-02 15:04:05")))
			for _, c := range r.Columns {
				b.WriteString(fmt.Sprintf(" %s |", Format2(rec.Get(c))))
			}
			b.WriteString("\n")
		}
	}

	if r.Site != nil {
		r.Site.markdown(&b)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// HTML renders the Markdown report as a standalone HTML page.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Sensor analysis: " + r.Name,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
