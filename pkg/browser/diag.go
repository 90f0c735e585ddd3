package browser

import (
	"errors"
	"fmt"
	"strings"
)

// DiagnosticKind enumerates the failure modes the engine can report. Keeping
// the set closed makes failures testable instead of stringly-typed.
type DiagnosticKind string

const (
	DiagTimeout    DiagnosticKind = "timeout"
	DiagNavigation DiagnosticKind = "navigation"
	DiagSelector   DiagnosticKind = "selector"
	DiagScript     DiagnosticKind = "script"
	DiagInput      DiagnosticKind = "input"
	DiagBrowser    DiagnosticKind = "browser"
)

// Diagnostic is a structured, result-carrying error. Nothing from this package
// is allowed to terminate the host process; every failure mode resolves to a
// Diagnostic attached to a partial result.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// NewDiagnostic builds a diagnostic with a truncated message.
func NewDiagnostic(kind DiagnosticKind, msg string) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: Truncate(msg, MaxStepError)}
}

// classifyError maps a browser-layer error onto a diagnostic kind by
// inspecting its text. Playwright surfaces timeouts and missing selectors as
// plain errors, so classification is best-effort.
func classifyError(err error) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}

	msg := err.Error()
	lower := strings.ToLower(msg)
	kind := DiagBrowser
	switch {
	case strings.Contains(lower, "timeout"):
		kind = DiagTimeout
	case strings.Contains(lower, "selector") || strings.Contains(lower, "element"):
		kind = DiagSelector
	case strings.Contains(lower, "navigat") || strings.Contains(lower, "net::"):
		kind = DiagNavigation
	}
	return NewDiagnostic(kind, msg)
}

// Truncate bounds s to limit characters, appending an explicit marker when
// content was dropped. Content at or under the limit is returned unmodified.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "\n...(truncated)"
}
