package generate

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/regtokens/pkg/manifest"
)

const tokenImport = "github.com/mash-protocol/regtokens/pkg/token"

// appSrc uses the generated packages the way firmware code outside the
// block packages does.
const appSrc = `package app

import (
	"example.com/board/chip/gpioa"
	"example.com/board/device"

	"github.com/mash-protocol/regtokens/pkg/token"
)

var regs = device.TakeRegs()

var Led gpioa.Odr[token.Srt] = regs.GpioaOdr

var Input = gpioa.IdrValue

var Output gpioa.Odr[token.Urt]

const Fields = device.RegsFieldCount

var ChainID string = device.RegsChainID
`

// sourceImporter type-checks packages from parsed sources and falls back
// to the standard library for everything else.
type sourceImporter struct {
	fset     *token.FileSet
	sources  map[string][]*ast.File
	packages map[string]*types.Package
	fallback types.Importer
}

func newSourceImporter(fset *token.FileSet) *sourceImporter {
	return &sourceImporter{
		fset:     fset,
		sources:  make(map[string][]*ast.File),
		packages: make(map[string]*types.Package),
		fallback: importer.ForCompiler(fset, "source", nil),
	}
}

func (im *sourceImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := im.packages[path]; ok {
		return pkg, nil
	}
	files, ok := im.sources[path]
	if !ok {
		return im.fallback.Import(path)
	}
	conf := types.Config{Importer: im}
	pkg, err := conf.Check(path, im.fset, files, nil)
	if err != nil {
		return nil, err
	}
	im.packages[path] = pkg
	return pkg, nil
}

func (im *sourceImporter) parse(t *testing.T, importPath, name string, src []byte) *ast.File {
	t.Helper()
	f, err := parser.ParseFile(im.fset, name, src, parser.ParseComments)
	require.NoError(t, err, name)
	im.sources[importPath] = append(im.sources[importPath], f)
	return f
}

// parseDir adds the non-test Go files of dir as package importPath.
func (im *sourceImporter) parseDir(t *testing.T, importPath, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		im.parse(t, importPath, filepath.Join(dir, name), src)
	}
}

// importAllowed applies the go command's rule for internal packages.
func importAllowed(from, path string) bool {
	p := "/" + path + "/"
	i := strings.LastIndex(p, "/internal/")
	switch {
	case i < 0:
		return true
	case i == 0:
		return false
	}
	parent := p[1:i]
	return from == parent || strings.HasPrefix(from, parent+"/")
}

func assertImportsAllowed(t *testing.T, from string, f *ast.File) {
	t.Helper()
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		require.NoError(t, err)
		assert.True(t, importAllowed(from, p), "%s imports %s", from, p)
	}
}

func examplePlan(t *testing.T) *manifest.Plan {
	t.Helper()
	m, err := manifest.Load(filepath.Join("..", "..", "examples", "board", "regtokens.yaml"))
	require.NoError(t, err)
	plan, err := manifest.Resolve(m, nil)
	require.NoError(t, err)
	return plan
}

func TestRun_GeneratedCodeTypeChecks(t *testing.T) {
	plans := map[string]func(t *testing.T) *manifest.Plan{
		"example": examplePlan,
		"fixture": func(t *testing.T) *manifest.Plan {
			_, plan := setup(t)
			return plan
		},
	}
	for name, load := range plans {
		t.Run(name, func(t *testing.T) {
			res, err := Run(load(t), nil)
			require.NoError(t, err)

			im := newSourceImporter(token.NewFileSet())
			im.parseDir(t, tokenImport, filepath.Join("..", "token"))
			im.parseDir(t, "example.com/mcu/regs", filepath.Join("testdata", "mcuregs"))

			var generated []string
			for _, f := range res.Files {
				src, err := Format(f)
				require.NoError(t, err)
				if _, seen := im.sources[f.ImportPath]; !seen {
					generated = append(generated, f.ImportPath)
				}
				assertImportsAllowed(t, f.ImportPath, im.parse(t, f.ImportPath, f.Path, src))
			}
			for _, p := range generated {
				_, err := im.Import(p)
				assert.NoError(t, err, p)
			}

			app := im.parse(t, "example.com/board/app", "app.go", []byte(appSrc))
			assertImportsAllowed(t, "example.com/board/app", app)
			pkg, err := im.Import("example.com/board/app")
			require.NoError(t, err)
			assert.NotNil(t, pkg.Scope().Lookup("Led"))
		})
	}
}

func TestImportAllowed(t *testing.T) {
	assert.True(t, importAllowed("example.com/board/device", "example.com/board/chip/gpioa"))
	assert.True(t, importAllowed("example.com/board/device", "example.com/board/internal/chip/rcc"))
	assert.True(t, importAllowed("example.com/board", "example.com/board/internal/chip/rcc"))
	assert.False(t, importAllowed("example.com/board/device", "example.com/board/chip/internal/rcc"))
	assert.False(t, importAllowed("example.com/other", "example.com/board/internal/rcc"))
	assert.False(t, importAllowed("example.com/app", "internal/rcc"))
}
