package symbols

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quill/internal/diag"
)

// ValidateNames warns about declarations that break the naming convention:
// structs are UpperCamelCase, functions and parameters are lower_snake_case.
// Builtins are exempt.
func ValidateNames(table *Table, r diag.Reporter) {
	strs := table.Strings()
	for _, e := range table.Structs() {
		name := strs.MustLookup(e.Name)
		if !isUpperCamel(name) {
			r.Report(diag.SemaNameStyle, diag.SevWarning, e.Span,
				fmt.Sprintf("struct %s should be UpperCamelCase, e.g. %s", name, suggestUpperCamel(name)), nil)
		}
	}
	for _, s := range table.Funcs() {
		if s.Builtin {
			continue
		}
		name := strs.MustLookup(s.Name)
		// Methods validate the bare name; the receiver is checked with
		// its struct declaration.
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if !isLowerSnake(name) {
			r.Report(diag.SemaNameStyle, diag.SevWarning, s.Span,
				fmt.Sprintf("function %s should be lower_snake_case", name), nil)
		}
	}
}

func isUpperCamel(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if r == '_' {
			return false
		}
	}
	return true
}

func isLowerSnake(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// suggestUpperCamel title-cases each underscore-separated word, so a
// warning for "bell_pair" suggests "BellPair".
func suggestUpperCamel(name string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	parts := strings.Split(name, "_")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, "")
}
