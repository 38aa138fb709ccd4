package prompttmpl

import (
	"bytes"
	"strings"
	"text/template"
)

// DefaultFuncs are available to every template built with Parse.
var DefaultFuncs = template.FuncMap{
	"join": strings.Join,
	"oneline": func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	},
	"orDefault": func(fallback, s string) string {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	},
}

// Parse builds a template that fails on missing map keys. funcs are layered
// over DefaultFuncs.
func Parse(name, source string, funcs template.FuncMap) (*template.Template, error) {
	t := template.New(name).Option("missingkey=error").Funcs(DefaultFuncs)
	if funcs != nil {
		t = t.Funcs(funcs)
	}
	return t.Parse(source)
}

func MustParse(name, source string, funcs template.FuncMap) *template.Template {
	t, err := Parse(name, source, funcs)
	if err != nil {
		panic(err)
	}
	return t
}

func Render(t *template.Template, data any) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
