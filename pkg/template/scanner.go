package template

import (
	"strings"
)

// Scanner states. The walk tracks whether the cursor sits inside a quoted
// region or comment so that marker characters in those regions are never
// treated as placeholders or statement separators.
type scanState int

const (
	stateNormal      scanState = iota
	stateSingleQuote           // '...' with '' escape
	stateDoubleQuote           // "..." with "" escape
	stateBacktick              // `...` with `` escape (MySQL identifiers)
	stateLineComment           // -- to end of line
	stateBlockComment          // /* ... */
	stateDollarQuote           // $tag$ ... $tag$ or $$ ... $$
)

// scanPositions walks sql once and returns the byte offsets at which target
// occurs in the normal state. Doubled quotes ('' "" ``) stay inside their
// region; a dollar-quoted body closes only on its own exact tag; an
// unterminated region runs to the end of the text.
func scanPositions(sql string, target byte) []int {
	var positions []int
	state := stateNormal
	var tag string

	for i := 0; i < len(sql); {
		c := sql[i]

		switch state {
		case stateNormal:
			switch {
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stateLineComment
				i += 2
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stateBlockComment
				i += 2
			case c == '\'':
				state = stateSingleQuote
				i++
			case c == '"':
				state = stateDoubleQuote
				i++
			case c == '`':
				state = stateBacktick
				i++
			case c == '$':
				if t, ok := dollarTag(sql[i:]); ok {
					state = stateDollarQuote
					tag = t
					i += len(t)
					continue
				}
				if c == target {
					positions = append(positions, i)
				}
				i++
			default:
				if c == target {
					positions = append(positions, i)
				}
				i++
			}

		case stateSingleQuote:
			i++
			if c == '\'' {
				if i < len(sql) && sql[i] == '\'' {
					i++
				} else {
					state = stateNormal
				}
			}

		case stateDoubleQuote:
			i++
			if c == '"' {
				if i < len(sql) && sql[i] == '"' {
					i++
				} else {
					state = stateNormal
				}
			}

		case stateBacktick:
			i++
			if c == '`' {
				if i < len(sql) && sql[i] == '`' {
					i++
				} else {
					state = stateNormal
				}
			}

		case stateLineComment:
			i++
			if c == '\n' || c == '\r' {
				state = stateNormal
			}

		case stateBlockComment:
			i++
			if c == '*' && i < len(sql) && sql[i] == '/' {
				i++
				state = stateNormal
			}

		case stateDollarQuote:
			p := strings.Index(sql[i:], tag)
			if p < 0 {
				i = len(sql)
				break
			}
			i += p + len(tag)
			tag = ""
			state = stateNormal
		}
	}

	return positions
}

// dollarTag detects a dollar-quote opening tag at the start of s and returns
// it including both delimiters ("$tag$", or "$$" for the bare form). Tags
// follow identifier rules, so positional markers like $1 never open a region.
func dollarTag(s string) (string, bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", false
	}
	if s[1] == '$' {
		return "$$", true
	}
	if !isAlphaUnderscore(s[1]) {
		return "", false
	}
	j := 2
	for j < len(s) && isAlphaNumUnderscore(s[j]) {
		j++
	}
	if j < len(s) && s[j] == '$' {
		return s[:j+1], true
	}
	return "", false
}

// isAlphaUnderscore reports whether b is [A-Za-z_].
func isAlphaUnderscore(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// isAlphaNumUnderscore reports whether b is [A-Za-z0-9_].
func isAlphaNumUnderscore(b byte) bool {
	return isAlphaUnderscore(b) || (b >= '0' && b <= '9')
}
