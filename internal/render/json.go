package render

import (
	"encoding/json"
	"io"

	"github.com/hyperifyio/textextract/internal/extract"
)

// CategoryReport is the JSON shape of one category.
type CategoryReport struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Matches []string `json:"matches"`
}

// Report is the JSON document written by JSON.
type Report struct {
	Total      int              `json:"total"`
	Categories []CategoryReport `json:"categories"`
}

// NewReport converts a result into its JSON shape, keeping table order.
func NewReport(res extract.Result) Report {
	cats := res.Categories()
	r := Report{Total: res.Total(), Categories: make([]CategoryReport, 0, len(cats))}
	for _, m := range cats {
		items := m.Items
		if items == nil {
			items = []string{}
		}
		r.Categories = append(r.Categories, CategoryReport{Name: string(m.Category), Count: m.Count(), Matches: items})
	}
	return r
}

// JSON writes an indented JSON report.
func JSON(w io.Writer, res extract.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(res))
}
