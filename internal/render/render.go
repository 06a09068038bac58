package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/hyperifyio/textextract/internal/extract"
)

// Renderer writes the extraction form page in one presentation style.
// All user-supplied text goes through html/template contextual escaping.
type Renderer struct {
	profile Profile
	tmpl    *template.Template
}

// New returns a renderer for the given style. Unknown styles fall back to the
// list style, mirroring GetProfile.
func New(style string) *Renderer {
	p := GetProfile(style)
	t := listPage
	if p.Style == Pre {
		t = prePage
	}
	return &Renderer{profile: p, tmpl: t}
}

// Profile reports which presentation variant the renderer uses.
func (r *Renderer) Profile() Profile { return r.profile }

type pageData struct {
	Input   string
	Results *extract.Result
	Report  string
}

// Page writes the full HTML document. A nil res omits the results section
// entirely, which is what a fresh GET shows.
func (r *Renderer) Page(w io.Writer, input string, res *extract.Result) error {
	data := pageData{Input: input, Results: res}
	if res != nil && r.profile.Style == Pre {
		var b strings.Builder
		if err := Text(&b, *res); err != nil {
			return err
		}
		data.Report = b.String()
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// Text writes the plain text report used by the pre style, text downloads and
// the CLI.
func Text(w io.Writer, res extract.Result) error {
	if res.Empty() {
		_, err := io.WriteString(w, noMatches+"\n")
		return err
	}
	var b strings.Builder
	for i, m := range res.Categories() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d):\n", m.Category, m.Count())
		for _, item := range m.Items {
			b.WriteString("  ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

const noMatches = "No matches found."

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8" />
    <title>Regex Data Extractor</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background: #f9f9f9; }
        textarea { width: 100%; height: 150px; font-size: 16px; padding: 10px; }
        input[type=submit], button { margin-top: 10px; padding: 10px 20px; font-size: 16px; }
        .results { margin-top: 30px; background: #fff; padding: 20px; border-radius: 5px; }
        h2 { border-bottom: 1px solid #ddd; padding-bottom: 5px; }
        ul { list-style-type: none; padding-left: 0; }
        li { background: #e2e8f0; margin-bottom: 6px; padding: 6px; border-radius: 3px; word-wrap: break-word; }
        pre { background: #e2e8f0; padding: 10px; border-radius: 3px; white-space: pre-wrap; word-wrap: break-word; }
    </style>
</head>
<body>
    <h1>Regex Data Extractor</h1>
    <form method="POST" action="/">
        <label for="inputtext">Paste your text below to extract:</label><br/>
        <textarea name="inputtext" id="inputtext" placeholder="Paste text here...">
{{.Input}}</textarea><br/>
        <input type="submit" value="Extract Data" />
    </form>
{{if .Results}}{{template "results" .}}{{end}}
</body>
</html>
`

const listResults = `{{define "results"}}
    <div class="results">
    {{- if .Results.Empty}}<h2>No matches found.</h2>
    {{- else}}<h2>Extracted Data:</h2>
    {{- range .Results.Categories}}
        <h3>{{.Category}} ({{.Count}})</h3><ul>{{range .Items}}<li>{{.}}</li>{{end}}</ul>
    {{- end}}
    {{- end}}
    </div>
{{end}}`

const preResults = `{{define "results"}}
    <div class="results">
    {{- if .Results.Empty}}<h2>No matches found.</h2>
    {{- else}}<h2>Extracted Data:</h2>
        <pre id="results-text">{{.Report}}</pre>
        <button type="button" id="download-results">Download results</button>
        <form method="POST" action="/download">
            <input type="hidden" name="inputtext" value="{{.Input}}" />
            <select name="format">
                <option value="txt">Text</option>
                <option value="json">JSON</option>
                <option value="pdf">PDF</option>
            </select>
            <input type="submit" value="Export" />
        </form>
        <script>
        document.getElementById("download-results").addEventListener("click", function () {
            var text = document.getElementById("results-text").textContent;
            var blob = new Blob([text], {type: "text/plain;charset=utf-8"});
            var link = document.createElement("a");
            link.href = URL.createObjectURL(blob);
            link.download = "extracted.txt";
            document.body.appendChild(link);
            link.click();
            document.body.removeChild(link);
            URL.revokeObjectURL(link.href);
        });
        </script>
    {{- end}}
    </div>
{{end}}`

var (
	listPage = template.Must(template.Must(template.New("page").Parse(pageHead)).Parse(listResults))
	prePage  = template.Must(template.Must(template.New("page").Parse(pageHead)).Parse(preResults))
)
