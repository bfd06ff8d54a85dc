package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"

	"github.com/tsbridge/tsbridge/internal/analyzer"
	"github.com/tsbridge/tsbridge/internal/buildcache"
	"github.com/tsbridge/tsbridge/internal/codegen"
	"github.com/tsbridge/tsbridge/internal/compiler"
	"github.com/tsbridge/tsbridge/internal/config"
	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/diagnostic"
	"github.com/tsbridge/tsbridge/internal/remap"
	"github.com/tsbridge/tsbridge/internal/scope"
	"github.com/tsbridge/tsbridge/internal/tscheck"
)

// runExtract executes the full extraction pipeline:
// load program -> locate call sites -> walk types -> generate payloads -> manifest.
func runExtract(args []string) int {
	extractFlags := flag.NewFlagSet("extract", flag.ExitOnError)

	var (
		configPath   string
		tsconfigPath string
		strict       bool
		quiet        bool
		clean        bool
		force        bool
	)

	extractFlags.StringVar(&configPath, "config", "", "Path to tsbridge config file (tsbridge.config.json or .yaml)")
	extractFlags.StringVar(&tsconfigPath, "project", "", "Path to tsconfig.json (or use -p)")
	extractFlags.StringVar(&tsconfigPath, "p", "", "Path to tsconfig.json (shorthand for --project)")
	extractFlags.BoolVar(&strict, "strict", false, "Treat extraction warnings as errors")
	extractFlags.BoolVar(&quiet, "quiet", false, "Suppress extraction warnings")
	extractFlags.BoolVar(&clean, "clean", false, "Clean output directory before extracting")
	extractFlags.BoolVar(&force, "force", false, "Ignore the extraction cache")

	extractFlags.Usage = func() {
		fmt.Println("Usage: tsbridge extract [flags]")
		fmt.Println()
		fmt.Println("Flags:")
		extractFlags.PrintDefaults()
	}

	extractFlags.Parse(args)

	extractStart := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}

	cfg, configDir, configFile, err := loadConfig(configPath, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if configFile != "" {
		fmt.Fprintf(os.Stderr, "loaded config from %s\n", filepath.Base(configFile))
	}

	validation := cfg.ValidateDetailed()
	for _, w := range validation.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !validation.IsValid() {
		for _, e := range validation.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		return 1
	}

	outputDir := cfg.Output
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(configDir, outputDir)
	}

	// Resolve tsconfig: CLI flag > config file > tsconfig.json next to config
	if tsconfigPath == "" {
		if cfg.TSConfig != "" {
			tsconfigPath = cfg.TSConfig
			if !filepath.IsAbs(tsconfigPath) {
				tsconfigPath = filepath.Join(configDir, tsconfigPath)
			}
		} else {
			tsconfigPath = "tsconfig.json"
		}
	}

	// Step 1: Parse tsconfig using tsgo's native JSONC parser (handles
	// comments, trailing commas, extends).
	tsconfigStart := time.Now()
	tsFS := compiler.CreateDefaultFS()
	host := compiler.CreateDefaultHost(cwd, tsFS)

	fmt.Fprintf(os.Stderr, "loading program with tsconfig: %s\n", tsconfigPath)

	parsedConfig, diags, err := compiler.ParseTSConfig(tsFS, cwd, tsconfigPath, host, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(diags) > 0 {
		fmt.Fprint(os.Stderr, compiler.FormatDiagnostics(diags))
		return 1
	}

	if clean {
		if cleanErr := cleanDir(outputDir); cleanErr != nil {
			fmt.Fprintf(os.Stderr, "warning: clean: %v\n", cleanErr)
		}
	}
	tsconfigDur := time.Since(tsconfigStart)

	// Step 2: Create the program.
	programStart := time.Now()
	program, programDiags, err := compiler.NewProgram(true, parsedConfig, host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if len(programDiags) > 0 {
		fmt.Fprint(os.Stderr, compiler.FormatDiagnostics(programDiags))
		return 1
	}
	programDur := time.Since(programStart)

	// Select the source files extraction will visit.
	sources := compiler.GetSourceFiles(program)
	var targets []*ast.SourceFile
	for _, sf := range sources {
		if scope.MatchesGlob(sf.FileName(), cfg.Extract.Include, cfg.Extract.Exclude) {
			targets = append(targets, sf)
		}
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "no source files match extract.include")
		return 0
	}

	// Cache check: skip the pipeline when nothing changed since the last run.
	sourcePaths := make([]string, 0, len(sources))
	for _, sf := range sources {
		sourcePaths = append(sourcePaths, sf.FileName())
	}
	sourceDigest := buildcache.DigestSources(sourcePaths)
	configHash := ""
	if configFile != "" {
		configHash = buildcache.HashFile(configFile)
	}
	cachePath := buildcache.CachePath(outputDir, tsconfigPath)
	if !clean && !force {
		if cached := buildcache.Load(cachePath); cached.IsValid(configHash, sourceDigest) {
			fmt.Fprintln(os.Stderr, "payloads up to date, skipping extraction (use --force to override)")
			return 0
		}
	}

	// Step 3: Type-check and report compiler diagnostics. Files with syntax
	// errors are skipped rather than walked.
	checkStart := time.Now()
	tsDiags := compiler.GatherDiagnostics(program, false)
	if len(tsDiags) > 0 {
		pretty := compiler.IsPrettyOutput()
		report := compiler.NewDiagnosticReporter(os.Stderr, cwd, pretty)
		for _, d := range tsDiags {
			report(d)
		}
		compiler.WriteErrorSummary(os.Stderr, tsDiags, cwd)
	}
	brokenFiles := compiler.FilesWithSyntaxErrors(compiler.GetSyntacticDiagnostics(program))
	if strict && compiler.CountErrors(tsDiags) > 0 {
		return 1
	}

	checker, release, err := compiler.GetTypeChecker(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer release()
	checkDur := time.Since(checkStart)

	// Step 4: Extract call sites and walk their types. The system table is
	// shared so primitive UIDs agree across files; each file gets its own
	// walker so UIDs restart per file.
	walkStart := time.Now()
	collector := diagnostic.NewCollector(strict, quiet)
	front := tscheck.New(checker)
	sys := analyzer.NewSystemTable()
	table := remap.New(cfg.Extract.Remap)
	extractor := scope.NewExtractor(cfg.Extract.Functions, collector)
	manifest := codegen.NewManifest(version)

	var outputs []string
	siteCount := 0
	for _, sf := range targets {
		if brokenFiles[sf.FileName()] {
			continue
		}
		relFile := relativeTo(sf.FileName(), cwd)

		calls := extractor.ExtractFile(sf)
		if len(calls) == 0 {
			continue
		}

		walker := analyzer.NewWalker(front, sys, analyzer.Options{
			DepthLimit:  cfg.Extract.DepthLimit,
			Diagnostics: collector,
		})

		sites, ok := walkCalls(sf, relFile, calls, front, walker, collector)
		if !ok {
			continue
		}

		if err := walker.ResolveAliases(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", relFile, err)
			return 1
		}

		gen := codegen.NewGenerator(relFile, walker.Lookup, table)
		for _, site := range sites {
			payload, genErr := gen.Generate(site)
			if genErr != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", relFile, genErr)
				return 1
			}
			data, marshalErr := codegen.MarshalPayload(payload)
			if marshalErr != nil {
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", relFile, marshalErr)
				return 1
			}

			payloadRel := payloadPath(relFile, site.ID)
			payloadAbs := filepath.Join(outputDir, payloadRel)
			if err := os.MkdirAll(filepath.Dir(payloadAbs), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "error: creating %s: %v\n", filepath.Dir(payloadAbs), err)
				return 1
			}
			if err := os.WriteFile(payloadAbs, data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "error: writing %s: %v\n", payloadAbs, err)
				return 1
			}

			manifest.Add(relFile, site.ID, payloadRel)
			outputs = append(outputs, payloadAbs)
			siteCount++
		}
	}
	walkDur := time.Since(walkStart)

	if siteCount == 0 {
		fmt.Fprintln(os.Stderr, "no call sites found")
	} else {
		fmt.Fprintf(os.Stderr, "extracted %d call site(s) into %s\n", siteCount, outputDir)
	}

	// Step 5: Write the manifest and refresh the cache.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating output directory %s: %v\n", outputDir, err)
		return 1
	}
	if err := manifest.Write(outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing manifest: %v\n", err)
		return 1
	}
	outputs = append(outputs, filepath.Join(outputDir, codegen.ManifestName))

	checkRuntimeConstraint(cfg, cwd)

	if !collector.HasErrors() {
		cache := buildcache.New(configHash, sourceDigest, outputs)
		if err := buildcache.Save(cachePath, cache); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving cache: %v\n", err)
		}
	}

	collector.WriteAll(os.Stderr, compiler.IsPrettyOutput())

	totalDur := time.Since(extractStart)

	fmt.Fprintf(os.Stderr, "\n--- timing ---\n")
	fmt.Fprintf(os.Stderr, "  tsconfig:    %s\n", tsconfigDur.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  program:     %s\n", programDur.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  check:       %s\n", checkDur.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  extraction:  %s\n", walkDur.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  total:       %s\n", totalDur.Round(time.Millisecond))

	if collector.HasErrors() {
		return 1
	}
	return 0
}

// walkCalls turns one file's extracted calls into call sites with walked
// type graphs. Fatal type errors abort the whole file: a payload missing a
// site would silently change the remote surface.
func walkCalls(sf *ast.SourceFile, relFile string, calls []scope.Call, front *tscheck.Front, walker *analyzer.Walker, collector *diagnostic.Collector) ([]descriptor.CallSite, bool) {
	var sites []descriptor.CallSite
	for _, call := range calls {
		site := descriptor.CallSite{ID: call.ID, Doc: call.Doc}

		if call.Output != nil {
			t := front.FromTypeNode(call.Output)
			id, err := walker.WalkReturn(t)
			if err != nil {
				reportWalkError(collector, sf, relFile, call.Node, err)
				return nil, false
			}
			site.Output = id
		}

		for _, arg := range call.Args {
			t := front.TypeOfValueAt(arg.Node)
			if t == nil {
				line, _ := shimscanner.GetECMALineAndCharacterOfPosition(sf, arg.Node.Pos())
				collector.Warn(diagnostic.CategoryScopeExtraction, relFile, line+1,
					fmt.Sprintf("could not resolve the type of %q, value skipped", arg.Name))
				continue
			}
			id, err := walker.WalkValue(t)
			if err != nil {
				reportWalkError(collector, sf, relFile, call.Node, err)
				return nil, false
			}
			site.Entries = append(site.Entries, descriptor.ScopeEntry{
				Name:     arg.Name,
				Type:     id,
				Path:     arg.Path,
				Explicit: true,
				Expr:     arg.Expr,
			})
		}

		sites = append(sites, site)
	}
	return sites, true
}

func reportWalkError(collector *diagnostic.Collector, sf *ast.SourceFile, relFile string, node *ast.Node, err error) {
	line, _ := shimscanner.GetECMALineAndCharacterOfPosition(sf, node.Pos())
	collector.Error(diagnostic.CategoryTypeUnsupported, relFile, line+1, err.Error())
}

// loadConfig loads the tsbridge config from the explicit path, or probes the
// default file names next to cwd. Returns the effective config, the
// directory relative paths resolve from, and the config file path ("" when
// defaults are in effect).
func loadConfig(configPath, cwd string) (*config.Config, string, string, error) {
	if configPath != "" {
		resolved := configPath
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(cwd, resolved)
		}
		cfg, err := config.Load(resolved)
		if err != nil {
			return nil, "", "", err
		}
		return cfg, filepath.Dir(resolved), resolved, nil
	}

	for _, name := range []string{"tsbridge.config.json", "tsbridge.config.yaml", "tsbridge.config.yml"} {
		p := filepath.Join(cwd, name)
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.Load(p)
			if err != nil {
				return nil, "", "", err
			}
			return cfg, cwd, p, nil
		}
	}

	cfg := config.DefaultConfig()
	return &cfg, cwd, "", nil
}

// payloadPath derives the payload file path, relative to the output
// directory, from the source file's project-relative path and the site id:
// src/agents/chat.ts site 2 -> src/agents/chat.2.payload.json.
func payloadPath(relFile string, siteID int) string {
	base := relFile
	for _, ext := range []string{".tsx", ".mts", ".cts", ".ts"} {
		if strings.HasSuffix(base, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	return fmt.Sprintf("%s.%d.payload.json", base, siteID)
}

// checkRuntimeConstraint verifies the installed agent runtime against the
// configured semver constraint, when both are known.
func checkRuntimeConstraint(cfg *config.Config, cwd string) {
	if cfg.Runtime.Package == "" || cfg.Runtime.Version == "" {
		return
	}
	installed, found := installedPackageVersion(cwd, cfg.Runtime.Package)
	if !found {
		fmt.Fprintf(os.Stderr, "warning: runtime package %q not found under node_modules, skipping version check\n", cfg.Runtime.Package)
		return
	}
	ok, err := cfg.RuntimeSatisfied(installed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: runtime version check: %v\n", err)
		return
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "warning: installed %s@%s does not satisfy the configured constraint %q\n",
			cfg.Runtime.Package, installed, cfg.Runtime.Version)
	}
}

// installedPackageVersion reads the version field of an installed npm
// package's package.json, walking up from cwd like node's resolver.
func installedPackageVersion(cwd, pkg string) (string, bool) {
	dir := cwd
	for {
		manifest := filepath.Join(dir, "node_modules", pkg, "package.json")
		if data, err := os.ReadFile(manifest); err == nil {
			var meta struct {
				Version string `json:"version"`
			}
			if json.Unmarshal(data, &meta) == nil && meta.Version != "" {
				return meta.Version, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// cleanDir removes a directory after safety checks.
func cleanDir(outDir string) error {
	if outDir == "/" || outDir == "." || outDir == ".." {
		return fmt.Errorf("refusing to clean dangerous path: %s", outDir)
	}

	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		return nil
	}

	fmt.Fprintf(os.Stderr, "cleaning output directory: %s\n", outDir)
	return os.RemoveAll(outDir)
}

// relativeTo shortens a path relative to base when possible.
func relativeTo(path, base string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
