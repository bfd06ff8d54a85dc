// Package compiler loads TypeScript programs for extraction: tsconfig
// parsing, program construction, type checker access and diagnostic
// reporting. It wraps the tsgo toolchain; everything downstream of the
// checker lives in analyzer and tscheck.
package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
)

// Diagnostic is one compilation diagnostic message.
type Diagnostic struct {
	FilePath string
	Message  string
}

func (d Diagnostic) String() string {
	if d.FilePath != "" {
		return fmt.Sprintf("%s: %s", d.FilePath, d.Message)
	}
	return d.Message
}

// LoadResult contains the program and the parsed tsconfig for downstream
// use.
type LoadResult struct {
	Program      *shimcompiler.Program
	ParsedConfig *tsoptions.ParsedCommandLine
}

// ParseTSConfig parses a tsconfig.json file using tsgo's native JSONC
// parser, which handles comments, trailing commas and extends chains.
// cliOverrides, when non-nil, takes precedence over tsconfig values the way
// tsc CLI flags do.
func ParseTSConfig(fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost, cliOverrides *core.CompilerOptions) (*tsoptions.ParsedCommandLine, []Diagnostic, error) {
	resolvedConfigPath := tspath.ResolvePath(cwd, tsconfigPath)
	if !fs.FileExists(resolvedConfigPath) {
		return nil, nil, fmt.Errorf("could not find tsconfig at %v", resolvedConfigPath)
	}

	if cliOverrides == nil {
		cliOverrides = &core.CompilerOptions{}
	}

	configParseResult, diagnostics := tsoptions.GetParsedCommandLineOfConfigFile(tsconfigPath, cliOverrides, nil, host, nil)

	if len(diagnostics) > 0 {
		return nil, convertDiagnostics(diagnostics), nil
	}

	if configParseResult != nil && len(configParseResult.Errors) > 0 {
		return nil, convertDiagnostics(configParseResult.Errors), nil
	}

	return configParseResult, nil, nil
}

// NewProgram creates a bound TypeScript program from an already-parsed
// tsconfig. The caller can modify parsedConfig.CompilerOptions() first.
func NewProgram(singleThreaded bool, parsedConfig *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, []Diagnostic, error) {
	opts := shimcompiler.ProgramOptions{
		Config:                      parsedConfig,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	}
	if !singleThreaded {
		opts.SingleThreaded = core.TSFalse
	}

	program := shimcompiler.NewProgram(opts)
	if program == nil {
		return nil, nil, errors.New("failed to create program")
	}

	programDiags := program.GetProgramDiagnostics()
	if len(programDiags) > 0 {
		return nil, convertDiagnostics(programDiags), nil
	}

	program.BindSourceFiles()

	return program, nil, nil
}

// Load parses config and creates the program in one step.
func Load(singleThreaded bool, fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost) (*LoadResult, []Diagnostic, error) {
	parsedConfig, diags, err := ParseTSConfig(fs, cwd, tsconfigPath, host, nil)
	if err != nil || len(diags) > 0 {
		return nil, diags, err
	}

	program, programDiags, err := NewProgram(singleThreaded, parsedConfig, host)
	if err != nil || len(programDiags) > 0 {
		return nil, programDiags, err
	}

	return &LoadResult{
		Program:      program,
		ParsedConfig: parsedConfig,
	}, nil, nil
}

// GetTypeChecker returns the program's type checker. The release function
// must be called when extraction for this program is finished.
func GetTypeChecker(program *shimcompiler.Program) (*shimchecker.Checker, func(), error) {
	checker, release := shimcompiler.Program_GetTypeChecker(program, context.Background())
	if checker == nil {
		return nil, nil, errors.New("failed to get type checker")
	}
	return checker, release, nil
}

// GatherDiagnostics collects all diagnostics from a program using tsgo's
// GetDiagnosticsOfAnyProgram cascade:
//
//	config → syntactic → program → bind → options → global → semantic → declaration
//
// When noCheck=true, only syntactic diagnostics are collected, which avoids
// creating checkers for every file.
func GatherDiagnostics(program *shimcompiler.Program, noCheck bool) []*ast.Diagnostic {
	ctx := context.Background()

	if noCheck {
		return shimcompiler.Program_GetSyntacticDiagnostics(program, ctx, nil)
	}

	return shimcompiler.GetDiagnosticsOfAnyProgram(
		ctx,
		program,
		nil,   // file=nil → all files
		false, // skipNoEmitCheckForDtsDiagnostics
		func(ctx context.Context, file *ast.SourceFile) []*ast.Diagnostic {
			// Bind diagnostics already ran through BindSourceFiles.
			return nil
		},
		func(ctx context.Context, file *ast.SourceFile) []*ast.Diagnostic {
			return shimcompiler.Program_GetSemanticDiagnostics(program, ctx, file)
		},
	)
}

// GetSyntacticDiagnostics returns parse errors for all source files.
func GetSyntacticDiagnostics(program *shimcompiler.Program) []*ast.Diagnostic {
	return shimcompiler.Program_GetSyntacticDiagnostics(program, context.Background(), nil)
}

// GetSourceFiles returns the program's source files, excluding declaration
// files; extraction only visits user code.
func GetSourceFiles(program *shimcompiler.Program) []*ast.SourceFile {
	var files []*ast.SourceFile
	for _, f := range program.GetSourceFiles() {
		if !f.IsDeclarationFile {
			files = append(files, f)
		}
	}
	return files
}

func convertDiagnostics(tsdiags []*ast.Diagnostic) []Diagnostic {
	diags := make([]Diagnostic, len(tsdiags))
	for i, d := range tsdiags {
		var filePath string
		if d.File() != nil {
			filePath = d.File().FileName()
		}
		diags[i] = Diagnostic{
			FilePath: filePath,
			Message:  d.String(),
		}
	}
	return diags
}

// FormatDiagnostics formats diagnostics into human-readable lines.
func FormatDiagnostics(diags []Diagnostic) string {
	var result string
	for _, d := range diags {
		result += d.String() + "\n"
	}
	return result
}
