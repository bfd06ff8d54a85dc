// Package scope locates bridge function call sites in TypeScript source
// files and extracts the values each site exposes to the remote agent. It
// is a pure AST pass; typing the extracted expressions is the pipeline's
// job, via the checker.
package scope

import (
	"fmt"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsbridge/tsbridge/internal/diagnostic"
)

// Call is one bridge invocation found in a source file, in source order.
type Call struct {
	// ID is the per-file site id, starting at 1.
	ID int
	// Doc is the JSDoc body text preceding the call's statement, if any.
	Doc string
	// Node is the CallExpression itself.
	Node *ast.Node
	// Output is the explicit output type argument, nil when the output
	// type must be inferred from the call's return type.
	Output *ast.Node
	// Args are the exposed values, one per scope argument (object-literal
	// arguments contribute one Arg per property).
	Args []Arg
}

// Arg is one value exposed at a call site.
type Arg struct {
	// Name is the identifier the remote side binds the value to.
	Name string
	// Path is the accessor path from module scope, when reconstructable.
	Path []string
	// Expr is the original source expression, when it is a plain
	// identifier or property chain.
	Expr string
	// Node is the value expression, handed to the checker for typing.
	Node *ast.Node
}

// Extractor finds call sites of the configured bridge functions.
type Extractor struct {
	functions map[string]bool
	diags     *diagnostic.Collector
}

// NewExtractor creates an extractor for the given bridge function names.
func NewExtractor(functions []string, diags *diagnostic.Collector) *Extractor {
	set := make(map[string]bool, len(functions))
	for _, fn := range functions {
		set[fn] = true
	}
	return &Extractor{functions: set, diags: diags}
}

// ExtractFile walks one source file and returns its call sites in source
// order. Site ids restart at 1 for every file.
func (e *Extractor) ExtractFile(sf *ast.SourceFile) []Call {
	imported := e.importedNames(sf)

	var calls []Call
	var walk func(node *ast.Node)
	walk = func(node *ast.Node) {
		if node == nil {
			return
		}
		if node.Kind == ast.KindCallExpression {
			if c, ok := e.parseCall(sf, node, imported, len(calls)+1); ok {
				calls = append(calls, c)
			}
		}
		node.ForEachChild(func(child *ast.Node) bool {
			walk(child)
			return false
		})
	}
	for _, stmt := range sf.Statements.Nodes {
		walk(stmt)
	}
	return calls
}

// importedNames maps local import bindings onto the bridge function they
// alias: `import { runInAgent as run } from "..."` lets `run(...)` match.
// Type-only imports never produce call sites.
func (e *Extractor) importedNames(sf *ast.SourceFile) map[string]string {
	result := make(map[string]string)
	for _, stmt := range sf.Statements.Nodes {
		if stmt.Kind != ast.KindImportDeclaration {
			continue
		}
		decl := stmt.AsImportDeclaration()
		if decl.ImportClause == nil {
			continue
		}
		clause := decl.ImportClause.AsImportClause()
		if clause.IsTypeOnly || clause.NamedBindings == nil {
			continue
		}
		if clause.NamedBindings.Kind != ast.KindNamedImports {
			continue
		}
		for _, elem := range clause.NamedBindings.AsNamedImports().Elements.Nodes {
			spec := elem.AsImportSpecifier()
			if spec.IsTypeOnly {
				continue
			}
			localName := spec.Name().Text()
			originalName := localName
			if spec.PropertyName != nil {
				originalName = spec.PropertyName.AsIdentifier().Text
			}
			if e.functions[originalName] {
				result[localName] = originalName
			}
		}
	}
	return result
}

// parseCall decides whether a CallExpression is a bridge invocation and
// extracts its site data.
func (e *Extractor) parseCall(sf *ast.SourceFile, node *ast.Node, imported map[string]string, id int) (Call, bool) {
	call := node.AsCallExpression()
	if !e.matches(call.Expression, imported) {
		return Call{}, false
	}

	c := Call{ID: id, Node: node, Doc: docFor(node)}
	if call.TypeArguments != nil && len(call.TypeArguments.Nodes) > 0 {
		c.Output = call.TypeArguments.Nodes[0]
	}

	if call.Arguments != nil {
		for i, arg := range call.Arguments.Nodes {
			args, ok := e.parseArg(arg)
			if !ok {
				e.warnf(sf, node, "argument %d of %s is not an identifier, property access, or object literal; it will not be exposed",
					i+1, calleeText(call.Expression))
				continue
			}
			c.Args = append(c.Args, args...)
		}
	}
	return c, true
}

// matches reports whether the callee names a configured bridge function:
// a bare identifier (direct or aliased import) or the final name of a
// property access like sdk.runInAgent.
func (e *Extractor) matches(callee *ast.Node, imported map[string]string) bool {
	switch callee.Kind {
	case ast.KindIdentifier:
		name := callee.AsIdentifier().Text
		if _, ok := imported[name]; ok {
			return true
		}
		return e.functions[name]
	case ast.KindPropertyAccessExpression:
		pa := callee.AsPropertyAccessExpression()
		if pa.Name().Kind != ast.KindIdentifier {
			return false
		}
		return e.functions[pa.Name().AsIdentifier().Text]
	}
	return false
}

// parseArg turns one call argument into scope entries. Object literals
// expand to one entry per property; anything that is not an identifier,
// property chain or object literal is rejected.
func (e *Extractor) parseArg(arg *ast.Node) ([]Arg, bool) {
	switch arg.Kind {
	case ast.KindIdentifier:
		name := arg.AsIdentifier().Text
		return []Arg{{Name: name, Path: []string{name}, Expr: name, Node: arg}}, true

	case ast.KindPropertyAccessExpression:
		path, ok := accessorPath(arg)
		if !ok {
			return nil, false
		}
		return []Arg{{
			Name: path[len(path)-1],
			Path: path,
			Expr: strings.Join(path, "."),
			Node: arg,
		}}, true

	case ast.KindObjectLiteralExpression:
		return e.parseObjectLiteral(arg)
	}
	return nil, false
}

func (e *Extractor) parseObjectLiteral(objLit *ast.Node) ([]Arg, bool) {
	ole := objLit.AsObjectLiteralExpression()
	if ole.Properties == nil {
		return nil, true
	}
	var args []Arg
	for _, prop := range ole.Properties.Nodes {
		switch prop.Kind {
		case ast.KindPropertyAssignment:
			pa := prop.AsPropertyAssignment()
			name := propertyName(pa.Name())
			if name == "" || pa.Initializer == nil {
				continue
			}
			a := Arg{Name: name, Node: pa.Initializer}
			if path, ok := accessorPath(pa.Initializer); ok {
				a.Path = path
				a.Expr = strings.Join(path, ".")
			}
			args = append(args, a)

		case ast.KindShorthandPropertyAssignment:
			spa := prop.AsShorthandPropertyAssignment()
			name := propertyName(spa.Name())
			if name == "" {
				continue
			}
			args = append(args, Arg{
				Name: name,
				Path: []string{name},
				Expr: name,
				Node: spa.Name(),
			})
		}
	}
	return args, true
}

// accessorPath flattens an identifier or property chain into its segments.
// Chains rooted in anything other than an identifier (calls, indexing,
// `this`) cannot be re-evaluated remotely and report false.
func accessorPath(node *ast.Node) ([]string, bool) {
	switch node.Kind {
	case ast.KindIdentifier:
		return []string{node.AsIdentifier().Text}, true
	case ast.KindPropertyAccessExpression:
		pa := node.AsPropertyAccessExpression()
		if pa.Name().Kind != ast.KindIdentifier {
			return nil, false
		}
		base, ok := accessorPath(pa.Expression)
		if !ok {
			return nil, false
		}
		return append(base, pa.Name().AsIdentifier().Text), true
	}
	return nil, false
}

func propertyName(name *ast.Node) string {
	if name == nil {
		return ""
	}
	switch name.Kind {
	case ast.KindIdentifier:
		return name.AsIdentifier().Text
	case ast.KindStringLiteral:
		return name.AsStringLiteral().Text
	}
	return ""
}

func calleeText(callee *ast.Node) string {
	switch callee.Kind {
	case ast.KindIdentifier:
		return callee.AsIdentifier().Text
	case ast.KindPropertyAccessExpression:
		pa := callee.AsPropertyAccessExpression()
		if pa.Name().Kind == ast.KindIdentifier {
			return pa.Name().AsIdentifier().Text
		}
	}
	return "bridge call"
}

// docFor finds the JSDoc body attached to the call's enclosing statement.
// JSDoc binds to statements, so the walk climbs until it finds one.
func docFor(node *ast.Node) string {
	for n := node; n != nil; n = n.Parent {
		if jsdocs := n.JSDoc(nil); len(jsdocs) > 0 {
			jsdoc := jsdocs[len(jsdocs)-1].AsJSDoc()
			return jsdocText(jsdoc.Comment)
		}
		switch n.Kind {
		case ast.KindExpressionStatement, ast.KindVariableStatement, ast.KindReturnStatement, ast.KindSourceFile:
			return ""
		}
	}
	return ""
}

// jsdocText concatenates the text of a JSDoc comment node list.
func jsdocText(nodeList *ast.NodeList) string {
	if nodeList == nil {
		return ""
	}
	var parts []string
	for _, commentNode := range nodeList.Nodes {
		switch commentNode.Kind {
		case ast.KindJSDocText, ast.KindJSDocLink, ast.KindJSDocLinkCode, ast.KindJSDocLinkPlain:
			parts = append(parts, commentNode.Text())
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func (e *Extractor) warnf(sf *ast.SourceFile, node *ast.Node, format string, args ...any) {
	if e.diags == nil {
		return
	}
	line, _ := shimscanner.GetECMALineAndCharacterOfPosition(sf, node.Pos())
	e.diags.Warn(diagnostic.CategoryScopeExtraction, sf.FileName(), line+1, fmt.Sprintf(format, args...))
}
