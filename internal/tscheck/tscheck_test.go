package tscheck_test

import (
	"context"
	"path"
	"runtime"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tsbridge/tsbridge/internal/analyzer"
	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/tscheck"
	"github.com/tsbridge/tsbridge/internal/testutil"
	"github.com/tsbridge/tsbridge/internal/typesys"
	"github.com/tsbridge/tsbridge/internal/uid"
)

const checkerTSConfig = `{
  "compilerOptions": { "target": "es2022", "module": "esnext", "strict": true },
  "include": ["*.ts"]
}`

func checkerTestDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "testdata")
}

// checkerEnv holds a tsgo program, the adapted front end and a walker over
// it.
type checkerEnv struct {
	program    *shimcompiler.Program
	checker    *shimchecker.Checker
	sourceFile *ast.SourceFile
	front      *tscheck.Front
	walker     *analyzer.Walker
	sys        *analyzer.SystemTable
	release    func()
}

// setup creates a tsgo program from inline TypeScript source, obtains the
// type checker and wires the traversal on top of it. The caller must call
// env.release() when done.
func setup(t *testing.T, tsSource string) *checkerEnv {
	t.Helper()

	rootDir := checkerTestDir()
	fileName := "test.ts"
	virtualFiles := map[string]string{
		tspath.ResolvePath(rootDir, fileName):        tsSource,
		tspath.ResolvePath(rootDir, "tsconfig.json"): checkerTSConfig,
	}
	fs := testutil.NewDefaultOverlayVFS(virtualFiles)
	host := shimcompiler.NewCompilerHost(rootDir, fs, bundled.LibPath(), nil, nil)

	configParseResult, diags := tsoptions.GetParsedCommandLineOfConfigFile(
		"tsconfig.json", &core.CompilerOptions{}, nil, host, nil,
	)
	if len(diags) > 0 {
		t.Fatalf("tsconfig parse errors: %v", diags[0].String())
	}

	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:                      configParseResult,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	})
	if program == nil {
		t.Fatal("failed to create program")
	}
	program.BindSourceFiles()

	sourceFile := program.GetSourceFile(fileName)
	if sourceFile == nil {
		t.Fatalf("source file %q not found in program", fileName)
	}

	checker, release := shimcompiler.Program_GetTypeChecker(program, context.Background())
	if checker == nil {
		t.Fatal("failed to get type checker")
	}

	front := tscheck.New(checker)
	sys := analyzer.NewSystemTable()
	return &checkerEnv{
		program:    program,
		checker:    checker,
		sourceFile: sourceFile,
		front:      front,
		walker:     analyzer.NewWalker(front, sys, analyzer.Options{}),
		sys:        sys,
		release:    release,
	}
}

// typeNamed resolves a top-level declaration by name through the front end.
func (env *checkerEnv) typeNamed(t *testing.T, typeName string) typesys.Type {
	t.Helper()

	for _, stmt := range env.sourceFile.Statements.Nodes {
		switch stmt.Kind {
		case ast.KindTypeAliasDeclaration:
			decl := stmt.AsTypeAliasDeclaration()
			if decl.Name().Text() == typeName {
				return env.front.FromTypeNode(decl.Type)
			}
		case ast.KindInterfaceDeclaration:
			decl := stmt.AsInterfaceDeclaration()
			if decl.Name().Text() == typeName {
				return env.front.DeclaredTypeAt(decl.Name())
			}
		case ast.KindEnumDeclaration:
			decl := stmt.AsEnumDeclaration()
			if decl.Name().Text() == typeName {
				return env.front.DeclaredTypeAt(decl.Name())
			}
		case ast.KindClassDeclaration:
			decl := stmt.AsClassDeclaration()
			if decl.Name() != nil && decl.Name().Text() == typeName {
				return env.front.DeclaredTypeAt(decl.Name())
			}
		}
	}
	t.Fatalf("type %q not found in source file", typeName)
	return nil
}

// walkNamed walks a top-level declaration and returns its descriptor UID.
func (env *checkerEnv) walkNamed(t *testing.T, typeName string) uid.ID {
	t.Helper()
	id, err := env.walker.WalkType(env.typeNamed(t, typeName))
	if err != nil {
		t.Fatalf("WalkType(%s): %v", typeName, err)
	}
	return id
}

// desc finalizes the pass and returns the descriptor behind a UID.
func (env *checkerEnv) desc(t *testing.T, id uid.ID) *descriptor.Desc {
	t.Helper()
	if err := env.walker.ResolveAliases(); err != nil {
		t.Fatalf("ResolveAliases: %v", err)
	}
	rec := env.walker.Lookup(id)
	if rec == nil || rec.Desc == nil {
		t.Fatalf("no descriptor for uid %d", id)
	}
	return rec.Desc
}

func (env *checkerEnv) field(t *testing.T, d *descriptor.Desc, name string) descriptor.Field {
	t.Helper()
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not found on %s", name, d.Name)
	return descriptor.Field{}
}

// --- primitives and literals ---

func TestCheckerPrimitiveAliasCollapse(t *testing.T) {
	env := setup(t, `
export type S = string;
export type N = number;
export type B = boolean;
`)
	defer env.release()

	if id := env.walkNamed(t, "S"); id != env.sys.String.UID {
		t.Errorf("expected shared string uid %d, got %d", env.sys.String.UID, id)
	}
	if id := env.walkNamed(t, "N"); id != env.sys.Number.UID {
		t.Errorf("expected shared number uid %d, got %d", env.sys.Number.UID, id)
	}
	if id := env.walkNamed(t, "B"); id != env.sys.Boolean.UID {
		t.Errorf("expected shared boolean uid %d, got %d", env.sys.Boolean.UID, id)
	}
}

func TestCheckerStringLiteral(t *testing.T) {
	env := setup(t, `export type Mode = "strict";`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Mode"))
	if d.Kind != descriptor.KindLiteral {
		t.Fatalf("expected literal, got %s", d.Kind)
	}
	if d.LiteralKind != "string" || d.LiteralValue != "strict" {
		t.Errorf("unexpected literal: %s %v", d.LiteralKind, d.LiteralValue)
	}
}

func TestCheckerNumberLiteral(t *testing.T) {
	env := setup(t, `export type Answer = 42;`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Answer"))
	if d.Kind != descriptor.KindLiteral || d.LiteralKind != "number" {
		t.Fatalf("expected number literal, got %s %s", d.Kind, d.LiteralKind)
	}
	if v, ok := d.LiteralValue.(float64); !ok || v != 42 {
		t.Errorf("expected 42, got %v", d.LiteralValue)
	}
}

// --- structural types ---

func TestCheckerInterface(t *testing.T) {
	env := setup(t, `
export interface User {
  id: number;
  email: string;
  nickname?: string;
}
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "User"))
	if d.Kind != descriptor.KindInterface {
		t.Fatalf("expected interface, got %s", d.Kind)
	}
	if d.Name != "User" {
		t.Errorf("expected name User, got %q", d.Name)
	}
	if len(d.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(d.Fields))
	}
	if env.field(t, d, "id").Type != env.sys.Number.UID {
		t.Error("id should reference the shared number descriptor")
	}
	if !env.field(t, d, "nickname").Optional {
		t.Error("nickname should be optional")
	}
	if d.Ctor != nil {
		t.Error("interfaces have no constructor schema")
	}
}

func TestCheckerClass(t *testing.T) {
	env := setup(t, `
export class Session {
  token: string;
  private attempts: number;
  static origin = "api";

  constructor(token: string, ttl?: number) {
    this.token = token;
    this.attempts = 0;
  }

  refresh(force: boolean): string {
    return this.token;
  }
}
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Session"))
	if d.Kind != descriptor.KindClass {
		t.Fatalf("expected class, got %s", d.Kind)
	}

	if !env.field(t, d, "attempts").Private {
		t.Error("attempts should be private")
	}
	origin := env.field(t, d, "origin")
	if !origin.Static {
		t.Error("origin should be static")
	}
	for _, f := range d.Fields {
		if f.Name == "prototype" || f.Name == "name" || f.Name == "length" {
			t.Errorf("reserved static %q leaked into fields", f.Name)
		}
	}

	if d.Ctor == nil || len(d.Ctor) != 2 {
		t.Fatalf("expected 2 constructor params, got %v", d.Ctor)
	}
	if d.Ctor[0].Name != "token" || d.Ctor[0].Type != env.sys.String.UID {
		t.Errorf("unexpected first ctor param: %+v", d.Ctor[0])
	}
	if !d.Ctor[1].Optional {
		t.Error("ttl should be optional")
	}

	if len(d.Methods) != 1 || d.Methods[0].Name != "refresh" {
		t.Fatalf("expected method refresh, got %v", d.Methods)
	}
	fn := env.desc(t, d.Methods[0].Function)
	if fn.Kind != descriptor.KindFunction {
		t.Fatalf("expected function descriptor, got %s", fn.Kind)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "force" {
		t.Errorf("unexpected params: %v", fn.Params)
	}
	if fn.Return != env.sys.String.UID {
		t.Error("refresh should return string")
	}
}

func TestCheckerInheritance(t *testing.T) {
	env := setup(t, `
export class Animal {
  name: string = "";
}
export class Dog extends Animal {
  breed: string = "";
}
`)
	defer env.release()

	dogID := env.walkNamed(t, "Dog")
	animalID := env.walkNamed(t, "Animal")
	d := env.desc(t, dogID)
	if len(d.Bases) != 1 || d.Bases[0] != animalID {
		t.Errorf("expected base %d, got %v", animalID, d.Bases)
	}
}

func TestCheckerRecursiveType(t *testing.T) {
	env := setup(t, `
export interface Tree {
  value: number;
  children: Tree[];
}
`)
	defer env.release()

	id := env.walkNamed(t, "Tree")
	d := env.desc(t, id)
	arr := env.desc(t, env.field(t, d, "children").Type)
	if arr.Kind != descriptor.KindArray {
		t.Fatalf("expected array, got %s", arr.Kind)
	}
	if arr.Element != id {
		t.Errorf("children element should point back at Tree (%d), got %d", id, arr.Element)
	}
}

func TestCheckerDedup(t *testing.T) {
	env := setup(t, `
export interface Point { x: number; y: number; }
export type Alias = Point;
`)
	defer env.release()

	a := env.walkNamed(t, "Point")
	b := env.walkNamed(t, "Alias")
	if a != b {
		t.Errorf("alias and target should share a uid: %d vs %d", a, b)
	}
}

func TestCheckerDocComment(t *testing.T) {
	env := setup(t, `
/** A registered account. */
export interface Account {
  id: number;
}
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Account"))
	if d.Doc != "A registered account." {
		t.Errorf("unexpected doc: %q", d.Doc)
	}
}

// --- compound types ---

func TestCheckerUnion(t *testing.T) {
	env := setup(t, `export type ID = string | number | null;`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "ID"))
	if d.Kind != descriptor.KindUnion {
		t.Fatalf("expected union, got %s", d.Kind)
	}
	if len(d.Members) != 3 {
		t.Fatalf("expected 3 members, got %v", d.Members)
	}
	if d.Members[2] != env.sys.Null.UID {
		t.Errorf("nullish member should sort last, got %v", d.Members)
	}
	seen := map[uid.ID]bool{d.Members[0]: true, d.Members[1]: true}
	if !seen[env.sys.String.UID] || !seen[env.sys.Number.UID] {
		t.Errorf("expected string and number members, got %v", d.Members)
	}
}

func TestCheckerBooleanUnionCollapse(t *testing.T) {
	env := setup(t, `export type Flag = true | false;`)
	defer env.release()

	if id := env.walkNamed(t, "Flag"); id != env.sys.Boolean.UID {
		t.Errorf("true|false should collapse to boolean, got %d", id)
	}
}

func TestCheckerArray(t *testing.T) {
	env := setup(t, `export type Names = string[];`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Names"))
	if d.Kind != descriptor.KindArray || d.Element != env.sys.String.UID {
		t.Errorf("expected array of string, got %s element %d", d.Kind, d.Element)
	}
}

func TestCheckerTuple(t *testing.T) {
	env := setup(t, `export type Pair = [string, number];`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Pair"))
	if d.Kind != descriptor.KindTuple {
		t.Fatalf("expected tuple, got %s", d.Kind)
	}
	if len(d.Elements) != 2 || d.Elements[0] != env.sys.String.UID || d.Elements[1] != env.sys.Number.UID {
		t.Errorf("unexpected elements: %v", d.Elements)
	}
}

func TestCheckerVariadicTupleDegrades(t *testing.T) {
	env := setup(t, `export type Row = [string, ...number[]];`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Row"))
	if d.Kind != descriptor.KindArray {
		t.Fatalf("variadic tuple should degrade to array, got %s", d.Kind)
	}
	elem := env.desc(t, d.Element)
	if elem.Kind != descriptor.KindUnion {
		t.Errorf("expected union element, got %s", elem.Kind)
	}
}

func TestCheckerPromise(t *testing.T) {
	env := setup(t, `export type Pending = Promise<number>;`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Pending"))
	if d.Kind != descriptor.KindFuture || d.Element != env.sys.Number.UID {
		t.Errorf("expected future of number, got %s element %d", d.Kind, d.Element)
	}
}

func TestCheckerMapAndSet(t *testing.T) {
	env := setup(t, `
export type Lookup = Map<string, number>;
export type Tags = Set<string>;
`)
	defer env.release()

	m := env.desc(t, env.walkNamed(t, "Lookup"))
	if m.Kind != descriptor.KindMap || m.Key != env.sys.String.UID || m.Value != env.sys.Number.UID {
		t.Errorf("unexpected map descriptor: %+v", m)
	}
	s := env.desc(t, env.walkNamed(t, "Tags"))
	if s.Kind != descriptor.KindSet || s.Element != env.sys.String.UID {
		t.Errorf("unexpected set descriptor: %+v", s)
	}
}

func TestCheckerRecord(t *testing.T) {
	env := setup(t, `export type Counts = Record<string, number>;`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Counts"))
	if d.Kind != descriptor.KindRecord {
		t.Fatalf("expected record, got %s", d.Kind)
	}
	backing := env.desc(t, d.BackingMap)
	if backing.Kind != descriptor.KindMap || backing.Key != d.Key || backing.Value != d.Value {
		t.Errorf("backing map should mirror the record pair: %+v", backing)
	}
}

func TestCheckerEnum(t *testing.T) {
	env := setup(t, `
export enum Color {
  Red,
  Green,
  Blue = "blue",
}
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Color"))
	if d.Kind != descriptor.KindEnum {
		t.Fatalf("expected enum, got %s", d.Kind)
	}
	if len(d.EnumKeys) != 3 || d.EnumKeys[0] != "Red" || d.EnumKeys[2] != "Blue" {
		t.Errorf("unexpected keys: %v", d.EnumKeys)
	}
	if v, ok := d.EnumValues[1].(float64); !ok || v != 1 {
		t.Errorf("expected Green = 1, got %v", d.EnumValues[1])
	}
	if d.EnumValues[2] != "blue" {
		t.Errorf("expected Blue = %q, got %v", "blue", d.EnumValues[2])
	}
}

// --- generics and resolution ---

func TestCheckerGenericInstantiation(t *testing.T) {
	env := setup(t, `
export class Box<T> {
  value: T;
  constructor(value: T) { this.value = value; }
}
export type StringBox = Box<string>;
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "StringBox"))
	if d.Kind != descriptor.KindClass {
		t.Fatalf("expected class, got %s", d.Kind)
	}
	if env.field(t, d, "value").Type != env.sys.String.UID {
		t.Error("T should substitute to string")
	}
	if len(d.Substitutions) != 1 || d.Substitutions[0].Param != "T" || d.Substitutions[0].Type != env.sys.String.UID {
		t.Errorf("unexpected substitutions: %v", d.Substitutions)
	}
}

func TestCheckerDistinctInstantiations(t *testing.T) {
	env := setup(t, `
export class Box<T> { value: T; constructor(v: T) { this.value = v; } }
export type A = Box<string>;
export type B = Box<number>;
`)
	defer env.release()

	a := env.walkNamed(t, "A")
	b := env.walkNamed(t, "B")
	if a == b {
		t.Error("distinct instantiations must not share a uid")
	}
}

func TestCheckerResolvedConditional(t *testing.T) {
	env := setup(t, `
type Unbox<T> = T extends Array<infer U> ? U : T;
export type Flat = Unbox<string[]>;
`)
	defer env.release()

	if id := env.walkNamed(t, "Flat"); id != env.sys.String.UID {
		t.Errorf("resolved conditional should collapse to string, got %d", id)
	}
}

func TestCheckerIndexSignature(t *testing.T) {
	env := setup(t, `
export interface Bag {
  label: string;
  [key: string]: string;
}
`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Bag"))
	if d.Index == nil {
		t.Fatal("expected an index signature")
	}
	if d.Index.Key != env.sys.String.UID || d.Index.Value != env.sys.String.UID {
		t.Errorf("unexpected index signature: %+v", d.Index)
	}
	backing := env.desc(t, d.Index.BackingMap)
	if backing.Kind != descriptor.KindMap {
		t.Errorf("expected a backing map, got %s", backing.Kind)
	}
}

func TestCheckerFunctionType(t *testing.T) {
	env := setup(t, `export type Handler = (event: string, retries?: number) => boolean;`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Handler"))
	if d.Kind != descriptor.KindFunction {
		t.Fatalf("expected function, got %s", d.Kind)
	}
	if len(d.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(d.Params))
	}
	if d.Params[0].Name != "event" || d.Params[0].Type != env.sys.String.UID {
		t.Errorf("unexpected first param: %+v", d.Params[0])
	}
	if !d.Params[1].Optional {
		t.Error("retries should be optional")
	}
	if d.Return != env.sys.Boolean.UID {
		t.Error("expected boolean return")
	}
}

// --- call-site positions ---

func TestCheckerBareFutureValueRejected(t *testing.T) {
	env := setup(t, `export type Pending = Promise<string>;`)
	defer env.release()

	_, err := env.walker.WalkValue(env.typeNamed(t, "Pending"))
	if err == nil {
		t.Fatal("a bare future as a value must be rejected")
	}
}

func TestCheckerInterfaceReturnRejected(t *testing.T) {
	env := setup(t, `export interface Shape { area: number; }`)
	defer env.release()

	_, err := env.walker.WalkReturn(env.typeNamed(t, "Shape"))
	if err == nil {
		t.Fatal("an interface as a return type must be rejected")
	}
}

func TestCheckerModulePath(t *testing.T) {
	env := setup(t, `export class Widget { id: number = 0; }`)
	defer env.release()

	d := env.desc(t, env.walkNamed(t, "Widget"))
	if d.Module == "" {
		t.Error("user-declared class should carry its module path")
	}
}
