package analysis

// DiagnosticSink receives user visible problems detected while a
// target is evaluated. Diagnostics are non-fatal: evaluation continues
// with best effort values, so that a single pass surfaces as many
// problems as possible. The caller treats the target as failed once
// any diagnostic was recorded.
type DiagnosticSink interface {
	// AttributeError reports a problem with the value of a single
	// rule attribute.
	AttributeError(attribute, message string)
	// RuleError reports a problem with the rule as a whole.
	RuleError(message string)
	// HasErrors returns true if any diagnostic was recorded.
	HasErrors() bool
}

// Diagnostic is a single recorded problem. Attribute is empty for rule
// level problems.
type Diagnostic struct {
	Attribute string
	Message   string
}

// DiagnosticCollector is a DiagnosticSink that retains diagnostics in
// the order they were reported. It may only be used by the single
// goroutine evaluating the target it belongs to.
type DiagnosticCollector struct {
	diagnostics []Diagnostic
}

var _ DiagnosticSink = (*DiagnosticCollector)(nil)

// AttributeError reports a problem with the value of a single rule
// attribute.
func (c *DiagnosticCollector) AttributeError(attribute, message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Attribute: attribute,
		Message:   message,
	})
}

// RuleError reports a problem with the rule as a whole.
func (c *DiagnosticCollector) RuleError(message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Message: message})
}

// HasErrors returns true if any diagnostic was recorded.
func (c *DiagnosticCollector) HasErrors() bool {
	return len(c.diagnostics) > 0
}

// GetDiagnostics returns the recorded diagnostics in reporting order.
func (c *DiagnosticCollector) GetDiagnostics() []Diagnostic {
	return c.diagnostics
}
