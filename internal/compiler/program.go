package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/microsoft/typescript-go/shim/ast"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
)

// Diagnostic represents a compilation diagnostic message.
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

// CreateProgramResult contains the program and the parsed tsconfig for downstream use.
type CreateProgramResult struct {
	Program      *shimcompiler.Program
	ParsedConfig *tsoptions.ParsedCommandLine
}

// ParseTSConfig parses a tsconfig.json file using tsgo's native JSONC parser.
// Handles comments, trailing commas, and extends chains automatically.
func ParseTSConfig(fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost) (*tsoptions.ParsedCommandLine, []Diagnostic, error) {
	resolvedConfigPath := tspath.ResolvePath(cwd, tsconfigPath)
	if !fs.FileExists(resolvedConfigPath) {
		return nil, nil, fmt.Errorf("could not find tsconfig at %v", resolvedConfigPath)
	}

	configParseResult, diagnostics := tsoptions.GetParsedCommandLineOfConfigFile(resolvedConfigPath, &core.CompilerOptions{}, nil, host, nil)

	if len(diagnostics) > 0 {
		return nil, convertDiagnostics(diagnostics), nil
	}

	if configParseResult != nil && len(configParseResult.Errors) > 0 {
		return nil, convertDiagnostics(configParseResult.Errors), nil
	}

	return configParseResult, nil, nil
}

// CreateProgramFromConfig creates a TypeScript program from an already-parsed tsconfig.
// Only parsing and binding happen here; nothing is type checked or emitted.
func CreateProgramFromConfig(singleThreaded bool, parsedConfig *tsoptions.ParsedCommandLine, host shimcompiler.CompilerHost) (*shimcompiler.Program, []Diagnostic, error) {
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

// CreateProgram creates a TypeScript program from a tsconfig.json file.
// Convenience wrapper that parses config and creates program in one step.
func CreateProgram(singleThreaded bool, fs vfs.FS, cwd string, tsconfigPath string, host shimcompiler.CompilerHost) (*CreateProgramResult, []Diagnostic, error) {
	parsedConfig, diags, err := ParseTSConfig(fs, cwd, tsconfigPath, host)
	if err != nil || len(diags) > 0 {
		return nil, diags, err
	}

	program, programDiags, err := CreateProgramFromConfig(singleThreaded, parsedConfig, host)
	if err != nil || len(programDiags) > 0 {
		return nil, programDiags, err
	}

	return &CreateProgramResult{
		Program:      program,
		ParsedConfig: parsedConfig,
	}, nil, nil
}

// ProjectFiles returns the parsed source files named by the tsconfig file
// list, in program order. Declaration files that belong to the project are
// kept; bundled lib files and anything pulled in from node_modules are not.
func ProjectFiles(result *CreateProgramResult) []*ast.SourceFile {
	wanted := make(map[string]bool)
	for _, name := range result.ParsedConfig.FileNames() {
		wanted[tspath.NormalizePath(name)] = true
	}

	var files []*ast.SourceFile
	for _, f := range result.Program.GetSourceFiles() {
		if wanted[tspath.NormalizePath(f.FileName())] {
			files = append(files, f)
		}
	}
	return files
}

// SyntaxErrors returns parse errors for all source files.
func SyntaxErrors(program *shimcompiler.Program) []*ast.Diagnostic {
	return shimcompiler.Program_GetSyntacticDiagnostics(program, context.Background(), nil)
}

// FilesWithSyntaxErrors returns source file paths that have syntactic diagnostics.
func FilesWithSyntaxErrors(diags []*ast.Diagnostic) map[string]bool {
	files := make(map[string]bool)
	for _, d := range diags {
		if d.File() != nil {
			files[d.File().FileName()] = true
		}
	}
	return files
}

// singleFileConfig is the synthetic tsconfig used by ParseSource.
type singleFileConfig struct {
	CompilerOptions map[string]any `json:"compilerOptions"`
	Files           []string       `json:"files"`
}

// ParseSource parses one TypeScript file from memory. The file is overlaid
// on the OS filesystem next to a synthetic tsconfig, so fileName may point at
// a real location (stdin linting) or a made-up one (tests).
func ParseSource(fileName string, text string) (*ast.SourceFile, []Diagnostic, error) {
	filePath := tspath.NormalizePath(fileName)
	if !tspath.IsRootedDiskPath(filePath) {
		filePath = tspath.ResolvePath(virtualRoot, filePath)
	}
	rootDir := tspath.GetDirectoryPath(filePath)
	configPath := tspath.ResolvePath(rootDir, "tsconfig.tsprefer.json")

	configText, err := json.Marshal(singleFileConfig{
		CompilerOptions: map[string]any{"noLib": true, "types": []string{}},
		Files:           []string{filePath},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building tsconfig for %s: %w", fileName, err)
	}

	fs := NewOverlayFS(CreateDefaultFS(), map[string]string{
		filePath:   text,
		configPath: string(configText),
	})
	host := CreateDefaultHost(rootDir, fs)

	result, diags, err := CreateProgram(true, fs, rootDir, configPath, host)
	if err != nil || len(diags) > 0 {
		return nil, diags, err
	}

	sf := result.Program.GetSourceFile(filePath)
	if sf == nil {
		return nil, nil, fmt.Errorf("source file %q not found in program", filePath)
	}
	return sf, convertDiagnostics(SyntaxErrors(result.Program)), nil
}

// virtualRoot anchors relative file names given to ParseSource.
const virtualRoot = "/__tsprefer__"

// convertDiagnostics converts tsgo diagnostics to our Diagnostic type.
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

// ConvertDiagnostics exposes convertDiagnostics to callers that collected
// raw tsgo diagnostics themselves.
func ConvertDiagnostics(tsdiags []*ast.Diagnostic) []Diagnostic {
	return convertDiagnostics(tsdiags)
}
