package specparse

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/scanner"
)

// tokDoc is returned by the parser's scanner wrapper for /// comments.
const tokDoc rune = -100

// ParseFile loads and parses a specification from a file.
func ParseFile(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses a specification from source bytes. The name is used in
// error positions. On failure the returned error is a *SyntaxError and no
// partial specification is returned.
func Parse(name string, src []byte) (*Specification, error) {
	p := &parser{file: name, src: src}
	p.s.Init(bytes.NewReader(src))
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings |
		scanner.ScanRawStrings | scanner.ScanComments
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.scanErr != nil {
			return
		}
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.scanErr = &SyntaxError{File: name, Pos: Pos{Line: pos.Line, Col: pos.Column}, Msg: msg}
	}
	p.next()

	spec, err := p.parseSpec()
	if p.scanErr != nil {
		return nil, p.scanErr
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

type parser struct {
	file string
	src  []byte
	s    scanner.Scanner

	tok   rune
	text  string
	pos   Pos
	start int // byte offset of the current token
	end   int // byte offset just past the current token

	scanErr *SyntaxError
}

func (p *parser) next() {
	for {
		p.tok = p.s.Scan()
		p.text = p.s.TokenText()
		p.start = p.s.Position.Offset
		p.end = p.s.Pos().Offset
		p.pos = Pos{Line: p.s.Position.Line, Col: p.s.Position.Column}
		if p.tok != scanner.Comment {
			return
		}
		if isDocComment(p.text) {
			p.tok = tokDoc
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	if p.scanErr != nil {
		return p.scanErr
	}
	return &SyntaxError{File: p.file, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) describe() string {
	switch p.tok {
	case scanner.EOF:
		return "end of input"
	case scanner.Ident:
		return fmt.Sprintf("identifier %q", p.text)
	case scanner.Int:
		return "number " + p.text
	case scanner.String, scanner.RawString:
		return "string " + p.text
	case tokDoc:
		return "doc comment"
	default:
		return strconv.QuoteRune(p.tok)
	}
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok == scanner.Ident && p.text == kw
}

func (p *parser) expect(tok rune, context string) error {
	if p.tok != tok {
		return p.errorf("expected %s %s, found %s", strconv.QuoteRune(tok), context, p.describe())
	}
	p.next()
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errorf("expected %s, found %s", kw, p.describe())
	}
	p.next()
	return nil
}

func (p *parser) parseIdent(what string) (string, error) {
	if p.tok != scanner.Ident {
		return "", p.errorf("expected %s, found %s", what, p.describe())
	}
	if strings.Trim(p.text, "_") == "" {
		return "", p.errorf("invalid %s %q", what, p.text)
	}
	ident := p.text
	p.next()
	return ident, nil
}

func (p *parser) parseSpec() (*Specification, error) {
	spec := &Specification{File: p.file}
	var err error

	if spec.Attrs, err = p.parseAttrs(); err != nil {
		return nil, err
	}
	if spec.Vis, err = p.parseVis(); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("macro"); err != nil {
		return nil, err
	}
	if spec.Next, err = p.parseIdent("generator name"); err != nil {
		return nil, err
	}
	if err := p.expect(';', "after generator name"); err != nil {
		return nil, err
	}

	if p.isKeyword("use") {
		p.next()
		if err := p.expectKeyword("macro"); err != nil {
			return nil, err
		}
		if spec.Prev, err = p.parseIdent("predecessor generator name"); err != nil {
			return nil, err
		}
		if err := p.expect(';', "after predecessor generator name"); err != nil {
			return nil, err
		}
	}

	if spec.Root, err = p.parsePath("register root path"); err != nil {
		return nil, err
	}
	if err := p.expect(';', "after register root path"); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("crate"); err != nil {
		return nil, err
	}
	if p.tok != ';' {
		if spec.Crate, err = p.parseCratePath(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(';', "after crate path"); err != nil {
		return nil, err
	}

	seen := make(map[string]Pos)
	for p.tok != scanner.EOF {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		key := Snake(block.Ident)
		if first, dup := seen[key]; dup {
			return nil, &SyntaxError{
				File: p.file,
				Pos:  block.Pos,
				Msg:  fmt.Sprintf("duplicate block %q (first declared at %s)", block.Ident, first),
			}
		}
		seen[key] = block.Pos
		spec.Blocks = append(spec.Blocks, block)
	}
	return spec, nil
}

func (p *parser) parseAttrs() ([]Attribute, error) {
	var attrs []Attribute
	for {
		switch p.tok {
		case tokDoc:
			attrs = append(attrs, Attribute{Text: "doc = " + strconv.Quote(docText(p.text)), Pos: p.pos})
			p.next()
		case '#':
			at := p.pos
			p.next()
			if p.tok != '[' {
				return nil, p.errorf("expected '[' after '#', found %s", p.describe())
			}
			open := p.end
			for depth := 1; depth > 0; {
				p.next()
				switch p.tok {
				case '[':
					depth++
				case ']':
					depth--
				case scanner.EOF:
					return nil, p.errorf("unterminated attribute")
				}
			}
			text := strings.TrimSpace(string(p.src[open:p.start]))
			if text == "" {
				return nil, p.errorf("empty attribute")
			}
			attrs = append(attrs, Attribute{Text: text, Pos: at})
			p.next()
		default:
			return attrs, nil
		}
	}
}

func (p *parser) parseVis() (Visibility, error) {
	if !p.isKeyword("pub") {
		return Visibility{}, nil
	}
	p.next()
	if p.tok != '(' {
		return Visibility{Kind: VisPublic}, nil
	}
	p.next()

	var vis Visibility
	switch {
	case p.isKeyword("crate"):
		vis.Kind = VisCrate
		p.next()
	case p.isKeyword("super"):
		vis.Kind = VisSuper
		p.next()
	case p.isKeyword("self"):
		vis.Kind = VisSelf
		p.next()
	case p.isKeyword("in"):
		p.next()
		path, err := p.parsePath("visibility path")
		if err != nil {
			return Visibility{}, err
		}
		vis = Visibility{Kind: VisIn, Path: path}
	default:
		return Visibility{}, p.errorf("malformed visibility: expected crate, super, self or in, found %s", p.describe())
	}
	if p.tok != ')' {
		return Visibility{}, p.errorf("malformed visibility: expected ')', found %s", p.describe())
	}
	p.next()
	return vis, nil
}

// parsePath reads an import path written either as a quoted string or as
// adjacent segments joined by '/', '.', '-' or '::'. The '::' separator is
// normalised to '/'.
func (p *parser) parsePath(what string) (string, error) {
	if p.tok == scanner.String || p.tok == scanner.RawString {
		path, err := strconv.Unquote(p.text)
		if err != nil || !validPath(path) {
			return "", p.errorf("invalid %s %s", what, p.text)
		}
		p.next()
		return path, nil
	}
	if p.tok != scanner.Ident {
		return "", p.errorf("expected %s, found %s", what, p.describe())
	}

	var b strings.Builder
	b.WriteString(p.text)
	end := p.end
	p.next()
	for p.start == end && isPathSep(p.tok) {
		if p.tok == ':' {
			p.next()
			if p.tok != ':' || p.start != end+1 {
				return "", p.errorf("expected '::' in %s %q", what, b.String())
			}
			b.WriteByte('/')
		} else {
			b.WriteRune(p.tok)
		}
		end = p.end
		p.next()
		if p.start != end || (p.tok != scanner.Ident && p.tok != scanner.Int) {
			return "", p.errorf("incomplete %s %q", what, b.String())
		}
		b.WriteString(p.text)
		end = p.end
		p.next()
	}
	return b.String(), nil
}

// parseCratePath reads the optional path after the crate keyword. A
// leading '::' or '/' is accepted and dropped.
func (p *parser) parseCratePath() (string, error) {
	switch p.tok {
	case ':':
		end := p.end
		p.next()
		if p.tok != ':' || p.start != end {
			return "", p.errorf("expected '::' after crate, found %s", p.describe())
		}
		p.next()
	case '/':
		p.next()
	}
	return p.parsePath("crate path")
}

func (p *parser) parseBlock() (Block, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return Block{}, err
	}
	vis, err := p.parseVis()
	if err != nil {
		return Block{}, err
	}
	if err := p.expectKeyword("mod"); err != nil {
		return Block{}, err
	}

	block := Block{Attrs: attrs, Vis: vis, Pos: p.pos}
	if block.Ident, err = p.parseIdent("block name"); err != nil {
		return Block{}, err
	}
	if err := p.expect('{', "after block "+block.Ident); err != nil {
		return Block{}, err
	}

	seen := make(map[string]Pos)
	types := make(map[string]Register)
	for p.tok != '}' && p.tok != scanner.EOF {
		reg, err := p.parseRegister()
		if err != nil {
			return Block{}, err
		}
		key := Snake(reg.Ident)
		if first, dup := seen[key]; dup {
			return Block{}, &SyntaxError{
				File: p.file,
				Pos:  reg.Pos,
				Msg:  fmt.Sprintf("duplicate register %q in block %s (first declared at %s)", reg.Ident, block.Ident, first),
			}
		}
		typeName := Pascal(reg.Ident)
		for _, name := range []string{typeName, ValueName(typeName)} {
			if other, dup := types[name]; dup {
				return Block{}, &SyntaxError{
					File: p.file,
					Pos:  reg.Pos,
					Msg:  fmt.Sprintf("register %q and %q in block %s both map to %s", other.Ident, reg.Ident, block.Ident, name),
				}
			}
		}
		seen[key] = reg.Pos
		types[typeName] = reg
		types[ValueName(typeName)] = reg
		block.Regs = append(block.Regs, reg)
	}
	if err := p.expect('}', "to close block "+block.Ident); err != nil {
		return Block{}, err
	}
	return block, nil
}

func (p *parser) parseRegister() (Register, error) {
	attrs, err := p.parseAttrs()
	if err != nil {
		return Register{}, err
	}
	reg := Register{Attrs: attrs}
	if p.tok == '!' {
		reg.Excluded = true
		p.next()
	}
	reg.Pos = p.pos
	if reg.Ident, err = p.parseIdent("register name"); err != nil {
		return Register{}, err
	}
	if err := p.expect(';', "after register "+reg.Ident); err != nil {
		return Register{}, err
	}
	return reg, nil
}

func isDocComment(text string) bool {
	return strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////")
}

func docText(comment string) string {
	text := strings.TrimPrefix(comment, "///")
	text = strings.TrimPrefix(text, " ")
	return strings.TrimRight(text, " \t\r")
}

func isPathSep(tok rune) bool {
	return tok == '/' || tok == '.' || tok == '-' || tok == ':'
}

func validPath(path string) bool {
	if path == "" || strings.ContainsAny(path, " \t\n\"\\") {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return false
		}
	}
	return true
}
