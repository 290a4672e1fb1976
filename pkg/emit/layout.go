package emit

import (
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/mash-protocol/regtokens/pkg/specparse"
)

// TokenImport is the import path of the runtime token contract used by
// generated code.
const TokenImport = "github.com/mash-protocol/regtokens/pkg/token"

// RootImport resolves a register root path against a layer scope. A path
// starting with the crate segment is relative to the scope; anything else
// is already an import path.
func RootImport(scope, root string) string {
	if root == "crate" {
		return scope
	}
	if rest, ok := strings.CutPrefix(root, "crate/"); ok {
		return path.Join(scope, rest)
	}
	return root
}

// BlockImport returns the import path of the package generated for block
// b of a layer. Public blocks are placed directly under the crate path.
// Every other visibility goes under the internal directory of the scope,
// so any package of the layer scope can import it:
//
//	pub mod gpioa  ->  <scope>/<crate>/gpioa
//	mod rcc        ->  <scope>/internal/<crate>/rcc
func BlockImport(scope, crate string, b specparse.Block) string {
	if !b.Vis.IsPublic() {
		return path.Join(scope, "internal", crate, specparse.PackageName(b.Ident))
	}
	return path.Join(scope, crate, specparse.PackageName(b.Ident))
}

// CanImport reports whether the package from may import importPath under
// the internal package rule of the go command: a path with an internal
// element is only importable from the tree rooted at the parent of its
// last internal element.
func CanImport(from, importPath string) bool {
	elems := strings.Split(importPath, "/")
	for i := len(elems) - 1; i >= 0; i-- {
		if elems[i] != "internal" {
			continue
		}
		parent := strings.Join(elems[:i], "/")
		return parent != "" && (from == parent || strings.HasPrefix(from, parent+"/"))
	}
	return true
}

// PackageName derives the Go package name for an import path: the last
// element, skipping a major version suffix, reduced to a valid identifier.
func PackageName(importPath string) string {
	elems := strings.Split(importPath, "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			if b.Len() == 0 {
				b.WriteString("pkg")
			}
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "pkg"
	}
	return specparse.Escape(b.String())
}

func isMajorVersion(elem string) bool {
	if len(elem) < 2 || elem[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(elem[1:])
	return err == nil
}

// uniqueName returns base, or base with the smallest numeric suffix that
// is not yet taken, and marks the result as taken.
func uniqueName(base string, taken map[string]bool) string {
	name := base
	for n := 1; taken[name]; n++ {
		name = base + strconv.Itoa(n)
	}
	taken[name] = true
	return name
}

// Imports assigns collision-free aliases to import paths.
type Imports struct {
	taken  map[string]bool
	byPath map[string]string
	order  []string
}

// NewImports returns an alias table where every name in reserved is
// unavailable as an alias.
func NewImports(reserved ...string) *Imports {
	im := &Imports{taken: make(map[string]bool), byPath: make(map[string]string)}
	for _, name := range reserved {
		im.taken[name] = true
	}
	return im
}

// Add returns the alias for importPath, allocating one on first use.
func (im *Imports) Add(importPath string) string {
	if alias, ok := im.byPath[importPath]; ok {
		return alias
	}
	alias := uniqueName(PackageName(importPath), im.taken)
	im.byPath[importPath] = alias
	im.order = append(im.order, importPath)
	return alias
}

// Spec is one aliased import.
type Spec struct {
	Alias string
	Path  string
}

// List returns the imports sorted by path.
func (im *Imports) List() []Spec {
	specs := make([]Spec, 0, len(im.order))
	for _, p := range im.order {
		specs = append(specs, Spec{Alias: im.byPath[p], Path: p})
	}
	slices.SortFunc(specs, func(a, b Spec) int { return strings.Compare(a.Path, b.Path) })
	return specs
}
