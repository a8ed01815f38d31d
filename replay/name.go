package replay

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"snapfeed/config"
	"snapfeed/trace"
)

// Values is a struct that holds variables available for timeline name
// expansion.
type Values struct {
	Number     int
	Title      string
	Slug       string
	Source     string
	SourceFile string
	RunID      string
	Failures   int
	Passed     bool
}

func newValues(n int, tr *trace.Trace, res *trace.Result) Values {
	base := filepath.Base(tr.Source)
	return Values{
		Number:     n,
		Title:      tr.Title,
		Slug:       slug.Make(tr.Title),
		Source:     tr.Source,
		SourceFile: strings.TrimSuffix(base, filepath.Ext(base)),
		RunID:      res.RunID.String(),
		Failures:   len(res.Failures),
		Passed:     len(res.Failures) == 0,
	}
}

// Namer names timelines of replayed traces.
type Namer struct {
	tmpl *template.Template
}

// NewNamer parses name template, empty text means default naming.
func NewNamer(text string) (*Namer, error) {
	if text == "" {
		return &Namer{}, nil
	}
	tmpl, err := template.New(config.NameTemplateFieldName).Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse template field %s: %w", config.NameTemplateFieldName, err)
	}
	return &Namer{tmpl: tmpl}, nil
}

// Name returns file name of the timeline. Result is always a single path
// element.
func (n *Namer) Name(v Values) (string, error) {
	if n == nil || n.tmpl == nil {
		return fmt.Sprintf("%03d-%s.txt", v.Number, v.Slug), nil
	}
	buf := new(bytes.Buffer)
	if err := n.tmpl.Execute(buf, v); err != nil {
		return "", fmt.Errorf("unable to expand template field %s: %w", config.NameTemplateFieldName, err)
	}
	return config.CleanFileName(strings.TrimSpace(buf.String())), nil
}
