package formatter

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/reqflat/batch"
	"github.com/gnoswap-labs/reqflat/internal/requirement"
)

type entryDoc struct {
	Name     string `json:"name" yaml:"name"`
	Requires any    `json:"requires" yaml:"requires"`
	Text     string `json:"text" yaml:"text"`
	Terms    int    `json:"terms" yaml:"terms"`
}

type statsDoc struct {
	Rounds          int   `json:"rounds" yaml:"rounds"`
	Updates         int   `json:"updates" yaml:"updates"`
	Atoms           int   `json:"atoms" yaml:"atoms"`
	ReachableAreas  int   `json:"reachable_areas" yaml:"reachable_areas"`
	ReachableEvents int   `json:"reachable_events" yaml:"reachable_events"`
	MaxTerms        int   `json:"max_terms" yaml:"max_terms"`
	DurationMicros  int64 `json:"duration_us" yaml:"duration_us"`
}

type worldDoc struct {
	RunID     string     `json:"run_id" yaml:"run_id"`
	Path      string     `json:"path" yaml:"path"`
	World     string     `json:"world" yaml:"world"`
	Verified  bool       `json:"verified" yaml:"verified"`
	Stats     statsDoc   `json:"stats" yaml:"stats"`
	Locations []entryDoc `json:"locations" yaml:"locations"`
	Areas     []entryDoc `json:"areas,omitempty" yaml:"areas,omitempty"`
}

func documents(results []*batch.Result, opts Options) []worldDoc {
	docs := make([]worldDoc, 0, len(results))
	for _, res := range results {
		doc := worldDoc{
			RunID:    res.RunID,
			Path:     res.Path,
			World:    res.World,
			Verified: res.Verified,
			Stats: statsDoc{
				Rounds:          res.Stats.Rounds,
				Updates:         res.Stats.Updates,
				Atoms:           res.Stats.Atoms,
				ReachableAreas:  res.Stats.ReachableAreas,
				ReachableEvents: res.Stats.ReachableEvents,
				MaxTerms:        res.Stats.MaxTerms,
				DurationMicros:  res.Duration.Microseconds(),
			},
			Locations: entries(res.Locations),
		}
		if opts.Areas {
			doc.Areas = entries(res.Areas)
		}
		docs = append(docs, doc)
	}
	return docs
}

func entries(in []batch.Entry) []entryDoc {
	out := make([]entryDoc, 0, len(in))
	for _, e := range in {
		doc := entryDoc{Name: e.Name, Terms: e.Terms}
		if e.Requirement != nil {
			doc.Requires = requirement.ToValue(e.Requirement)
			doc.Text = e.Requirement.String()
		}
		out = append(out, doc)
	}
	return out
}

// JSON writes results as an indented JSON array.
func JSON(w io.Writer, results []*batch.Result, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(documents(results, opts))
}

// YAML writes results as a YAML sequence. The requires field uses the same
// requirement syntax as world files.
func YAML(w io.Writer, results []*batch.Result, opts Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(documents(results, opts)); err != nil {
		return err
	}
	return enc.Close()
}

// Write dispatches on format: text, json or yaml.
func Write(w io.Writer, format string, results []*batch.Result, opts Options) error {
	switch format {
	case "json":
		return JSON(w, results, opts)
	case "yaml":
		return YAML(w, results, opts)
	default:
		return Text(w, results, opts)
	}
}
