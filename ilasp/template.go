package ilasp

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"joinStr": joinStr,
	"facts":   facts,
	"inc":     func(i int) int { return i + 1 },
}

func joinStr(s []string, prefix, sep string) string {
	parts := make([]string, len(s))
	for i, s := range s {
		parts[i] = prefix + s
	}
	return strings.Join(parts, sep)
}

// facts renders literals as a context program: "a. b(1)."
func facts(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return strings.Join(s, ". ") + "."
}

// NewTemplate parses a task template with the helper functions available.
func NewTemplate(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tmpl, nil
}

func mustTemplate(name, content string) *template.Template {
	tmpl, err := NewTemplate(name, content)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// LoadTemplate reads a user template from path.
func LoadTemplate(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return NewTemplate(strconv.Quote(path), string(content))
}

func TemplateToString(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// Render executes tmpl over the task Document; a nil tmpl selects the
// default ILASP template.
func (t *Task[T, R]) Render(tmpl *template.Template) (string, error) {
	if tmpl == nil {
		tmpl = DefaultTemplate
	}
	return TemplateToString(tmpl, t.Document())
}

var DefaultTemplate = mustTemplate("ilasp", `% background
{{ range .Background -}}
{{ . }}
{{ end }}
% examples
{{ range $i, $e := .PosExamples -}}
#pos(p{{ inc $i }}, { {{- joinStr $e.Incl "" ", " -}} }, { {{- joinStr $e.Excl "" ", " -}} }, { {{- facts $e.Ctx -}} }).
{{ end -}}
{{ range $i, $e := .NegExamples -}}
#neg(n{{ inc $i }}, { {{- joinStr $e.Incl "" ", " -}} }, { {{- joinStr $e.Excl "" ", " -}} }, { {{- facts $e.Ctx -}} }).
{{ end }}
% search space
{{ range .SearchSpace.Head -}}
#modeh({{ . }}).
{{ end -}}
{{ range .SearchSpace.PositiveBody -}}
#modeb({{ . }}, (positive)).
{{ end -}}
{{ range .SearchSpace.GeneralBody -}}
#modeb({{ . }}).
{{ end -}}
`)
