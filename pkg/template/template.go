// Package template rewrites positional SQL placeholders into the host
// client's interpolation form. A compiled template splits the SQL text into
// fragments around each interpolation slot and records which original
// argument feeds each slot, so a repeated marker binds the same argument at
// every position it appears.
package template

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Template is the compiled form of one SQL string. Fragments always has one
// more element than ArgOrder: slot i sits between Fragments[i] and
// Fragments[i+1]. ArgOrder maps each slot to the 0-based index of the
// original argument in left-to-right order of appearance; the same index may
// occur more than once. ParamCount is the declared argument count the
// template was built for.
type Template struct {
	Fragments  []string
	ArgOrder   []int
	ParamCount int
}

// Compile translates sql for the given placeholder convention. ok reports
// whether recognized placeholders were found; false means the caller must
// execute the statement raw. That outcome is expected control flow, not an
// error: some caller-generated queries embed their arguments without any
// recognized marker.
func Compile(sql string, argCount int, style core.PlaceholderStyle) (*Template, bool) {
	if style == core.PlaceholderDollar {
		return compileDollar(sql, argCount)
	}
	return compileQuestion(sql, argCount)
}

// sentinelByte brackets the argument index spliced in during dollar
// rewriting. SQL text never carries NUL, so the token cannot collide.
const sentinelByte = '\x00'

func sentinel(argIndex int) string {
	return string(sentinelByte) + strconv.Itoa(argIndex) + string(sentinelByte)
}

// compileDollar handles $1..$n markers. Replacement runs from the highest
// index down to 1 so $12 is consumed before $1 can match its prefix. Markers
// above argCount stay literal text; that is a caller contract violation, not
// a case this layer repairs.
func compileDollar(sql string, argCount int) (*Template, bool) {
	rewritten := sql
	found := false
	for n := argCount; n >= 1; n-- {
		marker := "$" + strconv.Itoa(n)
		if !strings.Contains(rewritten, marker) {
			continue
		}
		rewritten = strings.ReplaceAll(rewritten, marker, sentinel(n-1))
		found = true
	}
	if !found {
		return nil, false
	}

	fragments := make([]string, 0, 4)
	var order []int
	start := 0
	for i := 0; i < len(rewritten); {
		if rewritten[i] != sentinelByte {
			i++
			continue
		}
		// Sentinels are written in balanced pairs above, so the closer and
		// the digits between are guaranteed present.
		width := strings.IndexByte(rewritten[i+1:], sentinelByte)
		argIndex, _ := strconv.Atoi(rewritten[i+1 : i+1+width])
		fragments = append(fragments, rewritten[start:i])
		order = append(order, argIndex)
		i += width + 2
		start = i
	}
	fragments = append(fragments, rewritten[start:])

	return &Template{Fragments: fragments, ArgOrder: order, ParamCount: argCount}, true
}

// compileQuestion handles the ? convention. Only a ? outside string
// literals, quoted identifiers, comments, and dollar-quoted bodies counts:
// some dialects also use ? as a native operator, and the scanner keeps those
// occurrences literal. A count that disagrees with argCount is reported as
// not recognized rather than silently truncated or padded.
func compileQuestion(sql string, argCount int) (*Template, bool) {
	positions := scanPositions(sql, '?')
	if len(positions) == 0 || len(positions) != argCount {
		return nil, false
	}

	fragments := make([]string, 0, len(positions)+1)
	order := make([]int, len(positions))
	start := 0
	for i, p := range positions {
		fragments = append(fragments, sql[start:p])
		order[i] = i
		start = p + 1
	}
	fragments = append(fragments, sql[start:])

	return &Template{Fragments: fragments, ArgOrder: order, ParamCount: argCount}, true
}
