package template

import (
	"strings"
)

// SplitStatements splits a multi-statement script on semicolons, using the
// same scanner as placeholder translation so a separator inside a string
// literal, quoted identifier, comment, or dollar-quoted body never splits.
// Blank segments are dropped; returned statements carry no trailing
// semicolon and are whitespace-trimmed.
func SplitStatements(script string) []string {
	positions := scanPositions(script, ';')

	var statements []string
	start := 0
	appendStmt := func(raw string) {
		if stmt := strings.TrimSpace(raw); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	for _, p := range positions {
		appendStmt(script[start:p])
		start = p + 1
	}
	appendStmt(script[start:])

	return statements
}
