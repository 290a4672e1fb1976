package compose

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mash-protocol/regtokens/pkg/emit"
	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// chainNamespace is the UUID namespace of chain fingerprints.
var chainNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mash-protocol/regtokens/chain"))

// Capability is the rendered capability struct.
type Capability struct {
	Struct StructSig
	// Terminal is the generator that rendered the struct.
	Terminal string
	Fields   []Field
	Ctors    []Ctor
	// ChainID fingerprints the package, struct name and ordered fields.
	ChainID string
	File    *emit.File
}

// ChainID computes the fingerprint of an ordered field list for the
// struct name in pkg.
func ChainID(pkg, name string, fields []Field) string {
	var b strings.Builder
	b.WriteString(pkg + "." + name)
	for _, f := range fields {
		fmt.Fprintf(&b, "\n%s %s.%s", f.Long, f.Type.Import, f.Type.Name)
	}
	return uuid.NewSHA1(chainNamespace, []byte(b.String())).String()
}

// Render writes the capability struct for sig holding the fields of acc.
// terminal names the generator that renders it and genAttrs are that
// generator's attributes, documented below the struct summary.
func Render(sig StructSig, acc Accumulator, terminal string, genAttrs []specparse.Attribute) (*Capability, error) {
	if _, err := (Invocation{Struct: sig, Group: &acc}).Shape(); err != nil {
		return nil, err
	}
	if err := checkDuplicates(acc.Fields); err != nil {
		return nil, err
	}
	if err := checkImports(sig.Package, acc); err != nil {
		return nil, err
	}

	name := exportAs(sig.Name, sig.Public)
	d := capabilityData{
		Header:      emit.Header,
		Package:     emit.PackageName(sig.Package),
		Name:        name,
		CtorName:    exportAs("Take"+upperFirst(name), sig.Public),
		ChainIDName: exportAs(upperFirst(name)+"ChainID", sig.Public),
		CountName:   exportAs(upperFirst(name)+"FieldCount", sig.Public),
		ClaimID:     sig.Package + "." + name,
		ChainID:     ChainID(sig.Package, name, acc.Fields),
		Doc: emit.WithSummary(
			fmt.Sprintf("%s holds the register tokens of the %s chain.", name, terminal),
			sig.Attrs),
	}
	if gen := emit.Comments(genAttrs); len(gen) > 0 {
		d.Doc = append(append(d.Doc, "", fmt.Sprintf("The %s generator:", terminal), ""), gen...)
	}

	im := emit.NewImports(name, d.CtorName, d.ChainIDName, d.CountName)
	d.Token = im.Add(emit.TokenImport)
	for _, c := range acc.Ctors {
		for _, p := range c.Imports {
			if alias := im.Add(p); alias != emit.PackageName(p) {
				return nil, fmt.Errorf("constructor of %s: import %s cannot be bound as %s", c.Field, p, emit.PackageName(p))
			}
		}
	}

	for i, f := range acc.Fields {
		typ := f.Type.Name
		if f.Type.Import != "" {
			typ = im.Add(f.Type.Import) + "." + typ
		}
		if f.Type.Tagged {
			typ += "[" + d.Token + ".Srt]"
		}
		ctor := acc.Ctors[i].Expr
		if ctor == "" {
			ctor = d.Token + ".Take[" + typ + "]()"
		}
		d.Fields = append(d.Fields, fieldData{
			Doc:    emit.Comments(f.Attrs),
			GoName: specparse.FieldName(f.Long),
			Long:   f.Long,
			Type:   typ,
			Ctor:   ctor,
		})
	}
	d.Imports = im.List()

	var sb strings.Builder
	renderTemplate(&sb, "capability", d)
	return &Capability{
		Struct:   sig,
		Terminal: terminal,
		Fields:   acc.Fields,
		Ctors:    acc.Ctors,
		ChainID:  d.ChainID,
		File: &emit.File{
			ImportPath: sig.Package,
			Name:       specparse.Snake(name) + "_gen.go",
			Source:     []byte(sb.String()),
		},
	}, nil
}

// checkDuplicates rejects two fields with the same long name or the same
// Go field name.
func checkDuplicates(fields []Field) error {
	byLong := make(map[string]Field, len(fields))
	byGo := make(map[string]Field, len(fields))
	for _, f := range fields {
		if first, dup := byLong[f.Long]; dup {
			return &DuplicateFieldError{Field: f.Long, First: layerName(first), Second: layerName(f)}
		}
		goName := specparse.FieldName(f.Long)
		if first, dup := byGo[goName]; dup {
			return &DuplicateFieldError{Field: goName, First: layerName(first), Second: layerName(f)}
		}
		byLong[f.Long] = f
		byGo[goName] = f
	}
	return nil
}

// checkImports rejects fields whose packages the capability package may
// not import, such as a private block of a layer outside its tree.
func checkImports(pkg string, acc Accumulator) error {
	for i, f := range acc.Fields {
		paths := append([]string{f.Type.Import}, acc.Ctors[i].Imports...)
		for _, p := range paths {
			if p != "" && !emit.CanImport(pkg, p) {
				return &InternalImportError{Field: f.Long, Layer: layerName(f), Import: p, Package: pkg}
			}
		}
	}
	return nil
}

func layerName(f Field) string {
	if f.Layer == "" {
		return "the invocation"
	}
	return f.Layer
}

func exportAs(name string, exported bool) string {
	r, size := utf8.DecodeRuneInString(name)
	if exported {
		return string(unicode.ToUpper(r)) + name[size:]
	}
	return string(unicode.ToLower(r)) + name[size:]
}

func upperFirst(name string) string {
	return exportAs(name, true)
}

type capabilityData struct {
	Header      string
	Package     string
	Imports     []emit.Spec
	Token       string
	Doc         []string
	Name        string
	CtorName    string
	ChainIDName string
	CountName   string
	ClaimID     string
	ChainID     string
	Fields      []fieldData
}

type fieldData struct {
	Doc    []string
	GoName string
	Long   string
	Type   string
	Ctor   string
}

var templates = template.Must(template.New("").Parse(capabilityTmpl))

func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

const capabilityTmpl = `
{{- define "capability"}}{{.Header}}

package {{.Package}}

import (
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
)

// {{.ChainIDName}} fingerprints the ordered field list of {{.Name}}.
const {{.ChainIDName}} = "{{.ChainID}}"

// {{.CountName}} is the number of register tokens held by {{.Name}}.
const {{.CountName}} = {{len .Fields}}

{{range .Doc}}//{{if .}} {{.}}{{end}}
{{end}}type {{.Name}} struct {
{{- range .Fields}}
{{- range .Doc}}
	//{{if .}} {{.}}{{end}}
{{- end}}
	{{.GoName}} {{.Type}} ` + "`" + `reg:"{{.Long}}"` + "`" + `
{{- end}}
}

// {{.CtorName}} constructs {{.Name}}. It must be called at most once per
// process; a second call panics with a *token.ClaimError.
func {{.CtorName}}() {{.Name}} {
	{{.Token}}.Claim({{printf "%q" .ClaimID}})
	return {{.Name}}{
{{- range .Fields}}
		{{.GoName}}: {{.Ctor}},
{{- end}}
	}
}
{{end}}`
