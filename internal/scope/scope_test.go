package scope_test

import (
	"path"
	"runtime"
	"strings"
	"testing"

	"github.com/microsoft/typescript-go/shim/ast"
	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tsbridge/tsbridge/internal/diagnostic"
	"github.com/tsbridge/tsbridge/internal/scope"
	"github.com/tsbridge/tsbridge/internal/testutil"
)

const scopeTSConfig = `{
  "compilerOptions": { "target": "es2022", "module": "esnext", "strict": true },
  "include": ["*.ts"]
}`

// scopeTestDir returns the absolute path used as the virtual project root.
func scopeTestDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(filename), "testdata")
}

// parseFile creates a tsgo program from inline TypeScript source and returns
// the bound source file. Both the source and the tsconfig live in the overlay
// filesystem, so no files touch disk.
func parseFile(t *testing.T, tsSource string) *ast.SourceFile {
	t.Helper()

	rootDir := scopeTestDir()
	fileName := "test.ts"
	virtualFiles := map[string]string{
		tspath.ResolvePath(rootDir, fileName):        tsSource,
		tspath.ResolvePath(rootDir, "tsconfig.json"): scopeTSConfig,
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
	return sourceFile
}

// extract runs the extractor over inline source with the given bridge
// function names (default runInAgent).
func extract(t *testing.T, tsSource string, functions ...string) ([]scope.Call, *diagnostic.Collector) {
	t.Helper()
	if len(functions) == 0 {
		functions = []string{"runInAgent"}
	}
	sf := parseFile(t, tsSource)
	diags := diagnostic.NewCollector(false, false)
	ex := scope.NewExtractor(functions, diags)
	return ex.ExtractFile(sf), diags
}

func argNames(c scope.Call) []string {
	names := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
	}
	return names
}

// --- call detection ---

func TestExtractDirectCall(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const user = { id: 1 };
const result = runInAgent<string>(user);
`)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	c := calls[0]
	if c.ID != 1 {
		t.Errorf("expected site id 1, got %d", c.ID)
	}
	if c.Output == nil {
		t.Error("expected a type argument on the call")
	}
	if len(c.Args) != 1 || c.Args[0].Name != "user" {
		t.Errorf("expected single arg user, got %v", argNames(c))
	}
}

func TestExtractAliasedImport(t *testing.T) {
	calls, _ := extract(t, `
import { runInAgent as run } from "tsbridge";
const data = { rows: [] };
run<number>(data);
`)
	if len(calls) != 1 {
		t.Fatalf("expected aliased import call to match, got %d calls", len(calls))
	}
	if calls[0].Args[0].Name != "data" {
		t.Errorf("expected arg data, got %q", calls[0].Args[0].Name)
	}
}

func TestExtractTypeOnlyImportIgnored(t *testing.T) {
	calls, _ := extract(t, `
import type { runInAgent as ra } from "tsbridge";
declare function ra<T>(...scope: unknown[]): Promise<T>;
ra<string>(1);
`)
	if len(calls) != 0 {
		t.Fatalf("type-only import alias must not match, got %d calls", len(calls))
	}
}

func TestExtractPropertyAccessCallee(t *testing.T) {
	calls, _ := extract(t, `
import * as sdk from "tsbridge";
const cfg = { retries: 3 };
sdk.runInAgent<boolean>(cfg);
`)
	if len(calls) != 1 {
		t.Fatalf("expected sdk.runInAgent to match, got %d calls", len(calls))
	}
}

func TestExtractIgnoresOtherCalls(t *testing.T) {
	calls, _ := extract(t, `
declare function runLocally<T>(...scope: unknown[]): Promise<T>;
runLocally<string>(1);
console.log("hi");
`)
	if len(calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(calls))
	}
}

func TestExtractSequentialSiteIDs(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const a = 1;
const b = 2;
runInAgent<number>(a);
async function helper() {
  await runInAgent<string>(b);
}
runInAgent<boolean>();
`)
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	for i, c := range calls {
		if c.ID != i+1 {
			t.Errorf("call %d: expected id %d, got %d", i, i+1, c.ID)
		}
	}
}

func TestExtractMissingTypeArgument(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
runInAgent({ x: 1 });
`)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Output != nil {
		t.Error("expected no output type node when the type argument is omitted")
	}
}

func TestExtractCustomFunctionNames(t *testing.T) {
	calls, _ := extract(t, `
declare function dispatch<T>(...scope: unknown[]): Promise<T>;
dispatch<string>();
`, "dispatch", "runInAgent")
	if len(calls) != 1 {
		t.Fatalf("expected dispatch to match, got %d calls", len(calls))
	}
}

// --- argument parsing ---

func TestExtractIdentifierArg(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const session = { token: "x" };
runInAgent<void>(session);
`)
	a := calls[0].Args[0]
	if a.Name != "session" || a.Expr != "session" {
		t.Errorf("unexpected arg: %+v", a)
	}
	if len(a.Path) != 1 || a.Path[0] != "session" {
		t.Errorf("unexpected path: %v", a.Path)
	}
	if a.Node == nil {
		t.Error("expected arg node to be set")
	}
}

func TestExtractPropertyChainArg(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const app = { db: { users: [] } };
runInAgent<void>(app.db.users);
`)
	a := calls[0].Args[0]
	if a.Name != "users" {
		t.Errorf("expected name users, got %q", a.Name)
	}
	if a.Expr != "app.db.users" {
		t.Errorf("expected expr app.db.users, got %q", a.Expr)
	}
	if strings.Join(a.Path, "/") != "app/db/users" {
		t.Errorf("unexpected path: %v", a.Path)
	}
}

func TestExtractObjectLiteralArg(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const db = { users: [] };
const limit = 10;
runInAgent<void>({ store: db.users, limit });
`)
	c := calls[0]
	if len(c.Args) != 2 {
		t.Fatalf("expected 2 args from object literal, got %v", argNames(c))
	}
	store := c.Args[0]
	if store.Name != "store" || store.Expr != "db.users" {
		t.Errorf("unexpected property assignment arg: %+v", store)
	}
	short := c.Args[1]
	if short.Name != "limit" || short.Expr != "limit" {
		t.Errorf("unexpected shorthand arg: %+v", short)
	}
}

func TestExtractObjectLiteralComputedValue(t *testing.T) {
	// A property whose initializer is not an identifier or property chain
	// keeps its name but has no re-evaluable expression.
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
runInAgent<void>({ total: 1 + 2 });
`)
	a := calls[0].Args[0]
	if a.Name != "total" {
		t.Errorf("expected name total, got %q", a.Name)
	}
	if a.Expr != "" || a.Path != nil {
		t.Errorf("expected no expr for computed initializer, got %+v", a)
	}
}

func TestExtractSkipsNonExtractableArg(t *testing.T) {
	calls, diags := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
declare function make(): object;
const ok = 1;
runInAgent<void>(make(), ok);
`)
	c := calls[0]
	if len(c.Args) != 1 || c.Args[0].Name != "ok" {
		t.Fatalf("expected the call-expression arg to be skipped, got %v", argNames(c))
	}
	if diags.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", diags.WarningCount())
	}
	found := false
	for _, d := range diags.Diagnostics() {
		if d.Category == diagnostic.CategoryScopeExtraction {
			found = true
			if d.Line <= 0 {
				t.Errorf("expected a positive line number, got %d", d.Line)
			}
		}
	}
	if !found {
		t.Error("expected a scope-extraction diagnostic")
	}
}

func TestExtractThisRootedChainSkipped(t *testing.T) {
	calls, diags := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
class Service {
  data = [1];
  go() {
    return runInAgent<void>(this.data);
  }
}
`)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if len(calls[0].Args) != 0 {
		t.Errorf("chains rooted in this cannot be re-evaluated, got %v", argNames(calls[0]))
	}
	if diags.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", diags.WarningCount())
	}
}

// --- doc extraction ---

func TestExtractDocComment(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
const rows = [1, 2];

/** Sums the visible rows. */
const total = runInAgent<number>(rows);
`)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Doc != "Sums the visible rows." {
		t.Errorf("unexpected doc: %q", calls[0].Doc)
	}
}

func TestExtractNoDocComment(t *testing.T) {
	calls, _ := extract(t, `
declare function runInAgent<T>(...scope: unknown[]): Promise<T>;
runInAgent<void>();
`)
	if calls[0].Doc != "" {
		t.Errorf("expected empty doc, got %q", calls[0].Doc)
	}
}
