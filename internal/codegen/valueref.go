package codegen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/remap"
)

// reservedWords are ECMAScript keywords (plus strict-mode and contextual
// reservations) that can never name a runtime binding. A type whose name
// collides with one is emitted descriptor-only.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true,
	"true": true, "try": true, "typeof": true, "var": true, "void": true,
	"while": true, "with": true, "yield": true, "let": true, "static": true,
	"implements": true, "interface": true, "package": true, "private": true,
	"protected": true, "public": true, "await": true, "arguments": true,
	"eval": true,
}

// Import is one module binding a payload's value references depend on. The
// runtime materializes each as a namespace import under Alias.
type Import struct {
	Alias  string `json:"alias"`
	Module string `json:"module"`
}

// RefResolver resolves runtime value references for the descriptors of one
// source file. It accumulates the cross-file imports those references need,
// deduplicated by module, in first-use order.
type RefResolver struct {
	file    string // module path of the file being extracted
	table   *remap.Table
	aliases map[string]string // resolved module → alias
	used    map[string]bool   // alias collision guard
	imports []Import
}

// NewRefResolver creates a resolver for one source file. file is the module
// specifier under which same-file types resolve; table maps declaration-only
// modules onto their runtime packages, nil for identity.
func NewRefResolver(file string, table *remap.Table) *RefResolver {
	if table == nil {
		table = remap.New(nil)
	}
	return &RefResolver{
		file:    file,
		table:   table,
		aliases: make(map[string]string),
		used:    make(map[string]bool),
	}
}

// ForEntry resolves the reference for an explicitly exposed value: the
// original call-site expression when recorded, otherwise the accessor path
// reconstructed from the entry. An entry whose only handle is a checker-
// synthesized "__" name has no runtime binding and gets no reference.
func (r *RefResolver) ForEntry(e descriptor.ScopeEntry) string {
	if e.Expr != "" {
		return e.Expr
	}
	if len(e.Path) > 0 {
		return strings.Join(e.Path, ".")
	}
	if isValidIdentifier(e.Name) && !strings.HasPrefix(e.Name, "__") {
		return e.Name
	}
	return ""
}

// ForType resolves the reference for a transitively discovered nominal type.
// Only constructible runtime values qualify: classes and enums with a legal
// declared name. Interfaces, anonymous shapes and system types exist purely
// at the type level and get no reference.
func (r *RefResolver) ForType(d *descriptor.Desc) string {
	switch d.Kind {
	case descriptor.KindClass, descriptor.KindEnum:
	default:
		return ""
	}
	if d.System || !isValidIdentifier(d.Name) {
		return ""
	}
	if strings.HasPrefix(d.Name, "AnonymousType") {
		return ""
	}
	if d.Module == "" || d.Module == r.file {
		return d.Name
	}
	return r.aliasFor(r.table.Resolve(d.Module)) + "." + d.Name
}

// Imports returns the accumulated cross-file imports in first-use order.
func (r *RefResolver) Imports() []Import { return r.imports }

// aliasFor returns the namespace alias for a resolved module specifier,
// registering the import on first use.
func (r *RefResolver) aliasFor(module string) string {
	if alias, ok := r.aliases[module]; ok {
		return alias
	}
	alias := moduleAlias(module)
	for r.used[alias] || reservedWords[alias] {
		alias += "_"
	}
	r.aliases[module] = alias
	r.used[alias] = true
	r.imports = append(r.imports, Import{Alias: alias, Module: module})
	return alias
}

// moduleAlias derives a camelCase identifier from a module specifier:
// "@acme/geo-utils" becomes "acmeGeoUtils". Characters that cannot appear
// in an identifier act as word boundaries.
func moduleAlias(module string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	word := strings.Builder{}
	first := true
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		word.Reset()
		if first {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
			first = false
			return
		}
		b.WriteString(title.String(w))
	}
	for _, c := range module {
		if isIdentChar(c) {
			word.WriteRune(c)
			continue
		}
		flush()
	}
	flush()
	alias := b.String()
	if alias == "" || !isValidIdentifier(alias) {
		return "mod"
	}
	return alias
}

func isIdentChar(c rune) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isValidIdentifier reports whether name is a legal, non-reserved ECMAScript
// identifier. The checker's internal synthesized names ("__type" and
// friends) start legally but are rejected by the caller via descriptor
// naming, not here.
func isValidIdentifier(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	for i, c := range name {
		if c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}
