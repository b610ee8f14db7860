// Package formatter renders flatten results for people (Text) and for
// tools (JSON, YAML).
package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/fatih/color"

	"github.com/gnoswap-labs/reqflat/batch"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

var (
	worldStyle      = color.New(color.FgCyan, color.Bold)
	statsStyle      = color.New(color.FgHiBlue)
	nameStyle       = color.New(color.FgYellow, color.Bold)
	impossibleStyle = color.New(color.FgRed, color.Bold)
	freeStyle       = color.New(color.FgGreen, color.Bold)
	noStyle         = color.New(color.FgWhite)
)

// Options control which parts of a result are printed.
type Options struct {
	// Areas adds the minimized requirement of every area.
	Areas bool
	// Stats adds the fixpoint statistics line.
	Stats bool
}

const worldTemplate = `{{header .}}
{{- if .Options.Stats}}
{{stats .Result}}
{{- end}}
{{- range .Result.Locations}}
{{entry . $.Width}}
{{- end}}
{{- if .Options.Areas}}
{{section "areas"}}
{{- range .Result.Areas}}
{{entry . $.Width}}
{{- end}}
{{- end}}
`

var tmpl = template.Must(template.New("world").Funcs(template.FuncMap{
	"header":  header,
	"stats":   stats,
	"entry":   entry,
	"section": section,
}).Parse(worldTemplate))

type worldData struct {
	Result  *batch.Result
	Options Options
	Width   int
}

// Text writes a human-readable report of results to w.
func Text(w io.Writer, results []*batch.Result, opts Options) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		data := worldData{Result: res, Options: opts, Width: nameWidth(res, opts)}
		if err := tmpl.Execute(w, data); err != nil {
			return fmt.Errorf("formatting %s: %w", res.Path, err)
		}
	}
	return nil
}

func header(d worldData) string {
	name := d.Result.World
	if name == "" {
		name = "<unnamed>"
	}
	return worldStyle.Sprintf("%s", name) + noStyle.Sprintf(" (%s)", d.Result.Path)
}

func stats(res *batch.Result) string {
	s := res.Stats
	return statsStyle.Sprintf("  rounds %d, updates %d, atoms %d, max terms %d, %s",
		s.Rounds, s.Updates, s.Atoms, s.MaxTerms, res.Duration.Round(time.Microsecond))
}

func section(title string) string {
	return worldStyle.Sprintf("  [%s]", title)
}

func entry(e batch.Entry, width int) string {
	padding := strings.Repeat(" ", max(width-len(e.Name), 0))
	return "  " + nameStyle.Sprint(e.Name) + padding + "  " + requirementText(e.Requirement)
}

func requirementText(r requirement.Requirement) string {
	switch r.(type) {
	case nil:
		return impossibleStyle.Sprint("<not computed>")
	case requirement.Impossible:
		return impossibleStyle.Sprint(r.String())
	case requirement.Nothing:
		return freeStyle.Sprint(r.String())
	default:
		return noStyle.Sprint(r.String())
	}
}

func nameWidth(res *batch.Result, opts Options) int {
	width := 0
	for _, e := range res.Locations {
		width = max(width, len(e.Name))
	}
	if opts.Areas {
		for _, e := range res.Areas {
			width = max(width, len(e.Name))
		}
	}
	return width
}
