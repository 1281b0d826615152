// Package diag renders circuit diagnostics: the console/assertion
// report format, structural lint checks, and the shared cycle-finding
// routine used by both the optimizer (to report combinational loops)
// and the simulator (to diagnose a stuck execution order).
package diag

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Severity is how serious a diagnostic is.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return titleCaser.String("debug")
	case SeverityInfo:
		return titleCaser.String("info")
	case SeverityWarning:
		return titleCaser.String("warning")
	case SeverityError:
		return titleCaser.String("error")
	default:
		return titleCaser.String("unknown")
	}
}
