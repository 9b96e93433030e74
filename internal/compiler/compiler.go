// Package compiler implements C8, the project compile driver: it wires
// the source parser, the lowering pass, decorator expansion, entry-point
// synthesis, and code generation into the three library entry points
// spec §6 names (compile_source_to_binary, compile_project_to_binary,
// get_source_metadata), grounded in the teacher's own top-level
// pipeline.Compile orchestration shape (parse -> elaborate -> lower ->
// emit, one Result accumulating warnings along the way).
package compiler

import (
	"path/filepath"

	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/codegen"
	"github.com/sunholo/pywasmc/internal/decorators"
	"github.com/sunholo/pywasmc/internal/entrypoint"
	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/ir"
	"github.com/sunholo/pywasmc/internal/lower"
	"github.com/sunholo/pywasmc/internal/memlayout"
	"github.com/sunholo/pywasmc/internal/parser"
	"github.com/sunholo/pywasmc/internal/project"
	"github.com/sunholo/pywasmc/internal/verbosity"
)

const phase = "driver"

// Options mirrors the library's Options record field-for-field (spec §6).
type Options struct {
	// Optimize, when true, passes the emitted binary to the external
	// optimizer before return (a non-goal collaborator - see runOptimizer).
	Optimize bool
	// DebugInfo is reserved: it currently has no effect on the binary.
	DebugInfo bool
	// MaxMemory is the memory declaration's upper bound in pages.
	MaxMemory uint32
	// EntryPoint, if non-empty, overrides the name the synthesized `main`
	// calls in place of the entry-point synthesizer's own detected name.
	EntryPoint string
	// GenerateHTML signals the external harness generator (non-goal).
	GenerateHTML bool
	// IncludeMetadata signals the external harness generator (non-goal).
	IncludeMetadata bool
	// Verbosity is one of quiet|normal|verbose|debug.
	Verbosity string
}

// DefaultOptions returns the field defaults spec §6 documents.
func DefaultOptions() Options {
	return Options{Optimize: true, MaxMemory: 2, Verbosity: "normal"}
}

func resolveOptions(opts Options) Options {
	if opts.MaxMemory == 0 {
		opts.MaxMemory = 2
	}
	if opts.Verbosity == "" {
		opts.Verbosity = "normal"
	}
	return opts
}

// Result is one compilation's binary plus everything accumulated along
// the way (spec §7's warning stream).
type Result struct {
	Binary   []byte
	Warnings []errors.Warning
}

// FunctionSignature is one entry of get_source_metadata's result (spec §6):
// a function's name, its parameters rendered as "name: type", and its
// rendered return type.
type FunctionSignature struct {
	Name       string
	Parameters []string
	ReturnType string
}

// CompileSource implements compile_source_to_binary: a single file, no
// project resolution, a call table scoped to that file's own functions
// and methods.
func CompileSource(source string, opts Options) (*Result, error) {
	opts = resolveOptions(opts)
	verbosity.Set(verbosity.ParseLevel(opts.Verbosity))
	verbosity.Debugf("compiling source text (%d bytes)", len(source))

	const basename = "source.py"
	file, err := parseSource(basename, source)
	if err != nil {
		return nil, err
	}

	mem := memlayout.New()
	mod, warnings, err := lower.Lower(file, mem)
	if err != nil {
		return nil, err
	}

	expandDecorators(mod)
	synthesizeEntryPoint(mod, source, basename, opts)

	bin, genWarnings, err := codegen.Generate(mod, mem, codegen.Options{MaxMemoryPages: opts.MaxMemory})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, genWarnings...)

	bin, warnings = maybeOptimize(bin, warnings, opts)
	return &Result{Binary: bin, Warnings: warnings}, nil
}

// CompileProject implements compile_project_to_binary: it resolves the
// project's file set and dependency order (internal/project), lowers
// every module into a single shared IR module so cross-module calls
// resolve by plain function name the way the code generator's flattened
// function index already expects, then emits one binary for the whole
// project (spec §4.2 step 5 "files are processed in topologically sorted
// order").
func CompileProject(rootDir string, opts Options) (*Result, error) {
	opts = resolveOptions(opts)
	verbosity.Set(verbosity.ParseLevel(opts.Verbosity))
	verbosity.Debugf("compiling project at %s", rootDir)

	proj, err := project.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if len(proj.Order) == 0 {
		return nil, errors.New(errors.DRV001, phase, errors.IO,
			"no source files discovered in project root "+rootDir, nil)
	}

	mem := memlayout.New()
	merged := ir.NewModule()
	warnings := append([]errors.Warning(nil), proj.Warnings...)

	for _, mp := range proj.Order {
		m := proj.Modules[mp]
		file, err := parseSource(m.File, m.Source)
		if err != nil {
			return nil, err
		}
		fileMod, fileWarnings, err := lower.Lower(file, mem)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, fileWarnings...)
		reconcileImports(mp, fileMod.Imports, proj)

		merged.Functions = append(merged.Functions, fileMod.Functions...)
		merged.Classes = append(merged.Classes, fileMod.Classes...)
		merged.Vars = append(merged.Vars, fileMod.Vars...)
		merged.Imports = append(merged.Imports, fileMod.Imports...)

		basename := filepath.Base(m.File)
		synthesizeEntryPoint(merged, m.Source, basename, opts)
	}

	expandDecorators(merged)

	bin, genWarnings, err := codegen.Generate(merged, mem, codegen.Options{MaxMemoryPages: opts.MaxMemory})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, genWarnings...)

	bin, warnings = maybeOptimize(bin, warnings, opts)
	return &Result{Binary: bin, Warnings: warnings}, nil
}

// GetSourceMetadata implements get_source_metadata: parse and lower one
// file, then render every module-level function and class method as a
// signature record. Lowering errors (not codegen errors) are the only
// failure mode - metadata needs the IR, never the binary.
func GetSourceMetadata(source string) ([]FunctionSignature, error) {
	file, err := parseSource("source.py", source)
	if err != nil {
		return nil, err
	}
	mod, _, err := lower.Lower(file, memlayout.New())
	if err != nil {
		return nil, err
	}

	var sigs []FunctionSignature
	for _, fn := range mod.Functions {
		sigs = append(sigs, signatureOf(fn.Name, fn))
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			sigs = append(sigs, signatureOf(cls.Name+"::"+m.Name, m))
		}
	}
	return sigs, nil
}

func signatureOf(name string, fn *ir.Function) FunctionSignature {
	sig := FunctionSignature{Name: name, ReturnType: fn.Returns.String()}
	for _, p := range fn.Params {
		sig.Parameters = append(sig.Parameters, p.Name+": "+p.Type.String())
	}
	return sig
}

// parseSource runs the recursive-descent parser and maps any collected
// errors onto the Parse taxonomy (spec §7), reporting only the first one:
// downstream phases never see a partially invalid tree.
func parseSource(file, source string) (*ast.File, error) {
	p := parser.New(file, []byte(source))
	f := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		loc := &errors.Location{File: first.File, Line: first.Line, Column: first.Column}
		return nil, errors.New(errors.PAR001, "parser", errors.Parse, first.Message, loc)
	}
	return f, nil
}

func expandDecorators(mod *ir.Module) {
	for _, fn := range mod.Functions {
		decorators.Expand(fn)
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			decorators.Expand(m)
		}
	}
}

// synthesizeEntryPoint detects the entry-point pattern in source (spec
// §4.6) and, if found, synthesizes the `main` function once for the whole
// compilation - guarded by entrypoint.Synthesize's own "skip if a `main`
// already exists" check, so only the first qualifying file in a project
// wins.
func synthesizeEntryPoint(mod *ir.Module, source, basename string, opts Options) {
	kind := entrypoint.Detect(source, basename)
	if kind == entrypoint.None {
		return
	}
	if opts.EntryPoint != "" {
		entrypoint.SynthesizeWithCallee(mod, kind, opts.EntryPoint)
		return
	}
	entrypoint.Synthesize(mod, kind)
}

// reconcileImports folds the project resolver's conditional-import side
// table back onto the IR import records lowering produced for mp, since
// lowering itself has no visibility into the try/except structure C1's
// text scan observed (spec §3 IR Import's Conditional/Fallbacks fields).
func reconcileImports(mp string, imps []*ir.Import, proj *project.Project) {
	conds := proj.Conditional[mp]
	if len(conds) == 0 {
		return
	}
	for _, imp := range imps {
		for _, c := range conds {
			if imp.Module == c.Module {
				imp.Conditional = true
				imp.Fallbacks = c.Fallbacks
			}
		}
	}
}

// maybeOptimize runs the external optimizer when requested, degrading to
// the unoptimized binary on failure rather than failing the compilation
// (spec §7: "optimization errors degrade to returning the unoptimized
// binary").
func maybeOptimize(bin []byte, warnings []errors.Warning, opts Options) ([]byte, []errors.Warning) {
	if !opts.Optimize {
		return bin, warnings
	}
	optimized, err := runOptimizer(bin)
	if err != nil {
		warnings = append(warnings, errors.NewWarning(errors.Performance,
			"external optimizer rejected the binary, returning unoptimized output: "+err.Error(), nil))
		return bin, warnings
	}
	return optimized, warnings
}
