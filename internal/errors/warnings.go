package errors

import "fmt"

// WarningKind is the closed set of non-fatal diagnostic kinds (spec §7).
type WarningKind string

const (
	Performance    WarningKind = "performance"
	Compatibility  WarningKind = "compatibility"
	TypeInference  WarningKind = "type_inference"
	UnusedVariable WarningKind = "unused_variable"
)

// Warning is a non-fatal diagnostic accumulated onto a compilation result.
// Unlike Report, a Warning never halts compilation (grounded in
// original_source/src/errors.rs Warning/WarningType).
type Warning struct {
	Message  string
	Location *Location
	Kind     WarningKind
}

// NewWarning builds a Warning of the given kind.
func NewWarning(kind WarningKind, msg string, loc *Location) Warning {
	return Warning{Message: msg, Location: loc, Kind: kind}
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s warning: %s", w.displayKind(), w.Message)
	if w.Location != nil {
		s += " (" + w.Location.String() + ")"
	}
	return s
}

func (w Warning) displayKind() string {
	switch w.Kind {
	case Performance:
		return "Performance"
	case Compatibility:
		return "Compatibility"
	case TypeInference:
		return "Type inference"
	case UnusedVariable:
		return "Unused variable"
	default:
		return "Warning"
	}
}
