package specparse

import (
	"strings"
	"unicode"
)

// NamePair holds the names derived for one register of one block.
type NamePair struct {
	// Long is the capability field name, block_register in snake case.
	Long string
	// Short is the escaped snake-case value binding inside the block package.
	Short string
	// Type is the PascalCase type binding inside the block package.
	Type string
}

// Names derives the canonical names for register reg of block block.
func Names(block, reg string) NamePair {
	snake := Snake(reg)
	return NamePair{
		Long:  Snake(block) + "_" + snake,
		Short: Escape(snake),
		Type:  Pascal(reg),
	}
}

// PackageName returns the Go package name of a block.
func PackageName(block string) string {
	return Escape(Snake(block))
}

// FieldName returns the exported Go struct field name for a long name,
// e.g. "gpioa_odr" -> "GpioaOdr".
func FieldName(long string) string {
	return Pascal(long)
}

// ValueName returns the exported name of the value binding of a register
// type, e.g. "Odr" -> "OdrValue".
func ValueName(typeName string) string {
	return typeName + "Value"
}

// Snake converts an identifier to snake_case. Acronyms stay together
// ("HTTPSConn" -> "https_conn") and digits never start a new word
// ("I2C1" -> "i2c1").
func Snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if r == '_' || r == '-' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if i > 0 && unicode.IsUpper(r) && wordBreak(runes, i) && !strings.HasSuffix(b.String(), "_") {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSuffix(b.String(), "_")
}

// wordBreak reports whether the upper-case rune at i starts a new word.
func wordBreak(runes []rune, i int) bool {
	prev := runes[i-1]
	switch {
	case unicode.IsLower(prev):
		return true
	case unicode.IsDigit(prev):
		return !isAcronymDigit(runes, i)
	case unicode.IsUpper(prev):
		// end of an acronym: "HTTPSConn" breaks before the C
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}
	return false
}

// isAcronymDigit reports whether the digit before position i belongs to an
// upper-case run such as "I2C", in which case no word break is inserted.
func isAcronymDigit(runes []rune, i int) bool {
	j := i - 1
	for j >= 0 && unicode.IsDigit(runes[j]) {
		j--
	}
	return j >= 0 && unicode.IsUpper(runes[j])
}

// Pascal converts an identifier to PascalCase by way of its snake form,
// so "RST" -> "Rst" and "gpio_a" -> "GpioA".
func Pascal(s string) string {
	var b strings.Builder
	for _, part := range strings.Split(Snake(s), "_") {
		if part == "" {
			continue
		}
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}

// Escape makes a snake-case name safe to bind in Go source. Names whose
// underscore-trimmed stem is reserved get one trailing underscore; the
// transformation is reversed by Unescape.
func Escape(name string) string {
	if IsReserved(strings.TrimRight(name, "_")) {
		return name + "_"
	}
	return name
}

// Unescape reverses Escape.
func Unescape(name string) string {
	if strings.HasSuffix(name, "_") && IsReserved(strings.TrimRight(name, "_")) {
		return strings.TrimSuffix(name, "_")
	}
	return name
}

// IsReserved reports whether name is a Go keyword, a predeclared
// identifier, or a name with special meaning at package scope.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

var reserved = map[string]struct{}{
	// keywords
	"break": {}, "case": {}, "chan": {}, "const": {}, "continue": {},
	"default": {}, "defer": {}, "else": {}, "fallthrough": {}, "for": {},
	"func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "return": {},
	"select": {}, "struct": {}, "switch": {}, "type": {}, "var": {},

	// predeclared identifiers
	"any": {}, "bool": {}, "byte": {}, "comparable": {}, "complex64": {},
	"complex128": {}, "error": {}, "float32": {}, "float64": {}, "int": {},
	"int8": {}, "int16": {}, "int32": {}, "int64": {}, "rune": {},
	"string": {}, "uint": {}, "uint8": {}, "uint16": {}, "uint32": {},
	"uint64": {}, "uintptr": {}, "true": {}, "false": {}, "iota": {},
	"nil": {}, "append": {}, "cap": {}, "clear": {}, "close": {},
	"complex": {}, "copy": {}, "delete": {}, "imag": {}, "len": {},
	"make": {}, "max": {}, "min": {}, "new": {}, "panic": {},
	"print": {}, "println": {}, "real": {}, "recover": {},

	// special at package scope
	"init": {}, "main": {},
}
