// Package imports implements C1, the import scanner: a single-pass,
// line-oriented lexical approximation over source text (spec §4.1). It
// never parses the full grammar and never fails; it is run once per file
// by the project resolver (internal/project) to build the dependency
// graph, independent of the real recursive-descent parser.
package imports

import "strings"

// Type distinguishes the syntactic form an import statement took.
type Type int

const (
	Direct Type = iota
	From
	RelativeSingle
	RelativeMultiple
)

// Record is one recognized import directive.
type Record struct {
	ModuleName   string
	Type         Type
	Alias        string
	Name         string // member name for `from`, or the "*" sentinel
	IsStar       bool
	IsConditional bool
	IsDynamic    bool
	Level        int      // leading-dot count for relative imports
	Fallbacks    []string // other modules tried in the same try block
}

// Scan extracts import records from source text in source order. Malformed
// lines are silently skipped; the scanner never raises (spec §4.1).
func Scan(content string) []Record {
	var records []Record
	inTry := false
	var fallbacks []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "try:"):
			inTry = true
			fallbacks = nil
		case strings.HasPrefix(trimmed, "except"):
			inTry = false
		case strings.HasPrefix(trimmed, "finally:"), strings.HasPrefix(trimmed, "else:"):
			inTry = false
			fallbacks = nil
		}

		switch {
		case strings.HasPrefix(trimmed, "import "):
			recs := scanImport(trimmed, inTry, fallbacks)
			records = append(records, recs...)
			for _, r := range recs {
				fallbacks = append(fallbacks, r.ModuleName)
			}
		case strings.HasPrefix(trimmed, "from "):
			recs := scanFromImport(trimmed, inTry, fallbacks)
			records = append(records, recs...)
			for _, r := range recs {
				fallbacks = append(fallbacks, r.ModuleName)
			}
		case strings.Contains(trimmed, "__import__(") || strings.Contains(trimmed, "importlib.import_module("):
			if name, ok := extractDynamicImport(trimmed); ok {
				records = append(records, Record{
					ModuleName:    name,
					Type:          Direct,
					IsDynamic:     true,
					IsConditional: inTry,
					Fallbacks:     append([]string(nil), fallbacks...),
				})
			}
		}
	}

	return records
}

func scanImport(trimmed string, inTry bool, fallbacks []string) []Record {
	rest := strings.TrimPrefix(trimmed, "import ")
	var out []Record
	for _, item := range strings.Split(rest, ",") {
		parts := strings.Fields(item)
		if len(parts) == 0 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}
		alias := ""
		if len(parts) >= 3 && parts[1] == "as" {
			alias = parts[2]
		}
		out = append(out, Record{
			ModuleName:    name,
			Type:          Direct,
			Alias:         alias,
			IsConditional: inTry,
			Fallbacks:     append([]string(nil), fallbacks...),
		})
	}
	return out
}

func scanFromImport(trimmed string, inTry bool, fallbacks []string) []Record {
	parts := strings.SplitN(trimmed, " ", 3)
	if len(parts) < 3 || !strings.HasPrefix(parts[2], "import ") {
		return nil
	}
	module := strings.TrimSpace(parts[1])
	importPart := strings.TrimPrefix(parts[2], "import ")

	importType, level := classifyModule(module)

	if strings.TrimSpace(importPart) == "*" {
		return []Record{{
			ModuleName:    module,
			Type:          importType,
			Level:         level,
			Name:          "*",
			IsStar:        true,
			IsConditional: inTry,
			Fallbacks:     append([]string(nil), fallbacks...),
		}}
	}

	var out []Record
	for _, item := range strings.Split(importPart, ",") {
		fields := strings.Fields(item)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimSpace(fields[0])
		alias := ""
		if len(fields) >= 3 && fields[1] == "as" {
			alias = fields[2]
		}
		out = append(out, Record{
			ModuleName:    module,
			Type:          importType,
			Level:         level,
			Alias:         alias,
			Name:          name,
			IsConditional: inTry,
			Fallbacks:     append([]string(nil), fallbacks...),
		})
	}
	return out
}

// classifyModule determines the import Type and relative-dot level from a
// module name as written (e.g. ".", "..pkg", "pkg.sub").
func classifyModule(module string) (Type, int) {
	if !strings.HasPrefix(module, ".") {
		return From, 0
	}
	if module == "." {
		return RelativeSingle, 1
	}
	level := 0
	for _, c := range module {
		if c != '.' {
			break
		}
		level++
	}
	if level <= 1 {
		return RelativeSingle, 1
	}
	return RelativeMultiple, level
}

func extractDynamicImport(line string) (string, bool) {
	for _, marker := range []string{"__import__(", "importlib.import_module("} {
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(marker):]
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			continue
		}
		arg := strings.TrimSpace(rest[:end])
		arg = strings.Trim(arg, "'\"")
		if arg != "" {
			return arg, true
		}
	}
	return "", false
}
