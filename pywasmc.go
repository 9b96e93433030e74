// Package pywasmc is the public library API (spec §6 "Library API"): a
// thin wrapper over internal/compiler that host programs import directly,
// the same root-package-re-exports-internal shape the teacher uses for its
// own `ailang` package over `internal/pipeline`.
package pywasmc

import "github.com/sunholo/pywasmc/internal/compiler"

// Options configures a compilation (spec §6 "Options record").
type Options = compiler.Options

// DefaultOptions returns the documented field defaults: optimize=true,
// max_memory=2, verbosity=normal, every other field at its zero value.
func DefaultOptions() Options { return compiler.DefaultOptions() }

// Result is a compilation's binary output plus any accumulated warnings.
type Result = compiler.Result

// FunctionSignature is one get_source_metadata record: a function's name,
// its parameters rendered as "name: type", and its rendered return type.
type FunctionSignature = compiler.FunctionSignature

// CompileSourceToBinary compiles a single source-language file in memory
// into a target binary module (spec §6 entry point 1).
func CompileSourceToBinary(source string, opts Options) (*Result, error) {
	return compiler.CompileSource(source, opts)
}

// CompileProjectToBinary compiles a directory-based project into a single
// target binary module (spec §6 entry point 2).
func CompileProjectToBinary(rootDir string, opts Options) (*Result, error) {
	return compiler.CompileProject(rootDir, opts)
}

// GetSourceMetadata returns one signature record per module-level function
// and class method found in source (spec §6 entry point 3).
func GetSourceMetadata(source string) ([]FunctionSignature, error) {
	return compiler.GetSourceMetadata(source)
}
