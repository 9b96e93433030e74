package errors

import (
	"fmt"

	"github.com/sunholo/pywasmc/internal/ast"
	"github.com/sunholo/pywasmc/internal/schema"
)

// Taxonomy is the closed set of failure categories a compilation can map
// to (spec §7). It is distinct from the phase-granularity error Codes
// above: several codes can map to the same Taxonomy member.
type Taxonomy string

const (
	Parse        Taxonomy = "parse"
	Type         Taxonomy = "type"
	Unsupported  Taxonomy = "unsupported"
	Name         Taxonomy = "name"
	Codegen      Taxonomy = "codegen"
	Optimization Taxonomy = "optimization"
	IO           Taxonomy = "io"
	Other        Taxonomy = "other"
)

// Location pinpoints a Report to a place in the source. Function is
// optional: it is only set when the error occurs while emitting or
// lowering a specific function body.
type Location struct {
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Function string `json:"function,omitempty"`
}

// LocationFromPos builds a Location from an ast.Pos, optionally naming the
// enclosing function.
func LocationFromPos(p ast.Pos, function string) *Location {
	return &Location{File: p.File, Line: p.Line, Column: p.Column, Function: function}
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	s := ""
	if l.File != "" {
		s += fmt.Sprintf("in file %s ", l.File)
	}
	s += fmt.Sprintf("at line %d", l.Line)
	if l.Column != 0 {
		s += fmt.Sprintf(", column %d", l.Column)
	}
	if l.Function != "" {
		s += fmt.Sprintf(" (in function %q)", l.Function)
	}
	return s
}

// Fix is an optional suggested remediation attached to a Report.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the canonical structured error type returned across every
// package boundary in the compiler.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Taxonomy Taxonomy       `json:"taxonomy"`
	Message  string         `json:"message"`
	Location *Location      `json:"location,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Fix      *Fix           `json:"fix,omitempty"`
}

// Error implements the error interface so a *Report can be returned
// anywhere a plain error is expected.
func (r *Report) Error() string {
	if r == nil {
		return "unknown error"
	}
	msg := r.Code + ": " + r.Message
	if r.Location != nil {
		msg += " (" + r.Location.String() + ")"
	}
	return msg
}

// New builds a Report for the given code/phase/taxonomy.
func New(code, phase string, tax Taxonomy, msg string, loc *Location) *Report {
	return &Report{
		Schema:   schema.ErrorV1,
		Code:     code,
		Phase:    phase,
		Taxonomy: tax,
		Message:  msg,
		Location: loc,
	}
}

// WithFix attaches a suggested remediation.
func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}

// WithMeta attaches arbitrary structured context, merging into any
// previously-set data.
func (r *Report) WithMeta(data map[string]any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	for k, v := range data {
		r.Data[k] = v
	}
	return r
}

// ToJSON renders the Report as deterministic, pretty-printed JSON.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := schema.MarshalDeterministic(r)
	if err != nil {
		fallback := New("ERR000", r.Phase, Other, "encoding failed", nil).
			WithMeta(map[string]any{"original_error": err.Error()})
		return schema.MarshalDeterministic(fallback)
	}
	return schema.FormatJSON(data)
}

// FormatLocation formats file position as "file:line:col" for compact
// single-line diagnostics.
func FormatLocation(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
