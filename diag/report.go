package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// Entry is one reported diagnostic: a signal-tap firing, a lint
// finding, or a cycle report rendered as text.
type Entry struct {
	Time     sim.VTimeInSec
	Severity Severity
	Source   string // node name, or its id if unnamed
	Message  string
}

// String renders e as "[time] severity@source: message", the format
// SimulatorCallbacks and the lint/cycle reporters both funnel through
// (spec.md §6 "console callback ... "[time] severity@{node-name or
// id}: message"").
func (e Entry) String() string {
	return fmt.Sprintf("[%v] %s@%s: %s", e.Time, e.Severity, e.Source, e.Message)
}

// ConsoleCallback returns a callback suitable for SimulatorCallbacks
// that writes every entry to w, one per line.
func ConsoleCallback(w io.Writer) func(Entry) {
	return func(e Entry) {
		fmt.Fprintln(w, e.String())
	}
}

// Report collects every diagnostic produced across linting,
// optimization and simulation of one circuit, and renders them as one
// document.
type Report struct {
	LintIssues  []Entry
	CycleIssues []Entry
	SimEntries  []Entry
}

// Add appends a diagnostic to the report.
func (r *Report) Add(e Entry) {
	switch {
	case strings.HasPrefix(e.Source, "lint:"):
		r.LintIssues = append(r.LintIssues, e)
	case strings.HasPrefix(e.Source, "cycle:"):
		r.CycleIssues = append(r.CycleIssues, e)
	default:
		r.SimEntries = append(r.SimEntries, e)
	}
}

// Failed reports whether the report contains anything at error
// severity.
func (r *Report) Failed() bool {
	for _, group := range [][]Entry{r.LintIssues, r.CycleIssues, r.SimEntries} {
		for _, e := range group {
			if e.Severity == SeverityError {
				return true
			}
		}
	}
	return false
}

// Write renders the full report to w.
func (r *Report) Write(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "CIRCUIT VERIFICATION REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\nStructural lint: %d issue(s)\n", len(r.LintIssues))
	for _, e := range r.LintIssues {
		fmt.Fprintln(w, "  "+e.String())
	}

	fmt.Fprintf(w, "\nCombinational cycles: %d\n", len(r.CycleIssues))
	for _, e := range r.CycleIssues {
		fmt.Fprintln(w, "  "+e.String())
	}

	fmt.Fprintf(w, "\nSimulation diagnostics: %d\n", len(r.SimEntries))
	for _, e := range r.SimEntries {
		fmt.Fprintln(w, "  "+e.String())
	}

	fmt.Fprintln(w, "\n"+separator)
	if r.Failed() {
		fmt.Fprintln(w, "RESULT: FAILED")
	} else {
		fmt.Fprintln(w, "RESULT: PASSED")
	}
	fmt.Fprintln(w, separator)
}
