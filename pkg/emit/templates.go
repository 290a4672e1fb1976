package emit

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mash-protocol/regtokens/pkg/version"
)

var templates = template.Must(template.New("").Parse(blockTmpl + commentsTmpl))

// renderTemplate executes a named template and panics on failure. Template
// errors are generator bugs, not input errors.
func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

// Header is the first line of every generated file.
const Header = "// Code generated by " + version.Generator + ". DO NOT EDIT."

type blockData struct {
	Header     string
	Doc        []string
	Package    string
	Imports    []Spec
	RootAlias  string
	TokenAlias string
	Param      string
	Regs       []regData
}

type regData struct {
	TypeDoc  []string
	ValueDoc []string
	ShortDoc []string
	Type     string
	Value    string
	Short    string
	Impl     string
}

const commentsTmpl = `
{{- define "comments"}}{{range .}}//{{if .}} {{.}}{{end}}
{{end}}{{end}}`

const blockTmpl = `
{{- define "block"}}{{.Header}}

{{template "comments" .Doc}}package {{.Package}}
{{- if .Regs}}

import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)
{{- range .Regs}}

{{template "comments" .TypeDoc}}type {{.Type}}[{{$.Param}} {{$.TokenAlias}}.Tag] = {{$.RootAlias}}.{{.Impl}}Reg[{{$.Param}}]

{{template "comments" .ValueDoc}}var {{.Value}} = {{$.RootAlias}}.{{.Impl}}

{{template "comments" .ShortDoc}}var {{.Short}} = {{.Value}}
{{- end}}
{{- end}}
{{end}}`
