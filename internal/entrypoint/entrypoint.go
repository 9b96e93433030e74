// Package entrypoint implements C5: it inspects a file's raw source text
// (never the IR - the detectors are textual, matching the teacher's own
// pre-IR scanning style) for the three mutually exclusive entry-point
// patterns spec §4.6 names, and on a match synthesizes a `main` IR function,
// grounded in original_source/src/ir/entry_points.rs's detect_entry_points
// and create_main_function_from_entry_point.
package entrypoint

import (
	"strings"

	"github.com/sunholo/pywasmc/internal/ir"
)

// Kind is the detected entry-point pattern.
type Kind string

const (
	None      Kind = ""
	MainFile  Kind = "MainFile"
	MainGuard Kind = "MainGuard"
	CliScript Kind = "CliScript"
)

// Detect runs the three detectors in order (spec §4.6) against one file's
// source text and basename (without directory).
func Detect(source, basename string) Kind {
	if isMainFile(basename) {
		return MainFile
	}
	if hasMainGuard(source) {
		return MainGuard
	}
	if isCliScript(source) {
		return CliScript
	}
	return None
}

func isMainFile(basename string) bool {
	return basename == "__main__.py"
}

func hasMainGuard(source string) bool {
	return strings.Contains(source, `if __name__ == "__main__"`) ||
		strings.Contains(source, `if __name__ == '__main__'`)
}

func isCliScript(source string) bool {
	return strings.Contains(source, "argparse.ArgumentParser") ||
		strings.Contains(source, "import click") ||
		strings.Contains(source, "import typer") ||
		(strings.Contains(source, "import sys") && strings.Contains(source, "sys.argv"))
}

// Synthesize appends a synthetic `main` IR function to mod for the detected
// kind, unless the module already declares one, and records the two
// metadata entries the original always sets (spec §4.6). The detected
// callee name is always "main" (the original's own simplification: it never
// actually extracts a different name even when the source's real entry
// function is named something else - preserved here rather than "fixed").
func Synthesize(mod *ir.Module, kind Kind) {
	SynthesizeWithCallee(mod, kind, "main")
}

// SynthesizeWithCallee is Synthesize with the callee name the synthesized
// `main` invokes overridden (spec §6 `entry_point` option: "overrides the
// entry-point synthesizer's detected name"). The synthesized function
// itself is still exported as `main` - only the name it calls changes.
func SynthesizeWithCallee(mod *ir.Module, kind Kind, callee string) {
	if kind == None {
		return
	}
	if callee == "" {
		callee = "main"
	}
	if _, exists := mod.FindFunction("main"); !exists {
		mod.Functions = append(mod.Functions, buildMainFunction(kind, callee))
	}
	mod.Metadata["has_entry_point"] = "true"
	mod.Metadata["entry_point_type"] = string(kind)
}

func buildMainFunction(kind Kind, callee string) *ir.Function {
	call := &ir.FunctionCallExpr{Name: callee}
	var body []ir.Stmt
	switch kind {
	case MainFile:
		body = []ir.Stmt{
			&ir.ExprStmt{Value: call},
			&ir.ReturnStmt{Value: &ir.ConstExpr{Value: ir.Constant{Kind: ir.CInt, Int: 0}}},
		}
	default: // MainGuard, CliScript
		body = []ir.Stmt{&ir.ReturnStmt{Value: call}}
	}
	return &ir.Function{Name: "main", Returns: ir.Int, Body: body}
}
