/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smll

import (
	"strings"
	"unicode"
)

// Line is one normalized source line. No is the 1-based line number in the
// original file; it travels with the text into nested block parses.
type Line struct {
	No   int
	Text string
}

// Normalize strips whitespace and comments from raw source lines and lowercases
// everything outside double-quoted literals. Literal contents are kept verbatim
// without their quotes; a literal ends at the closing quote or the end of the
// line. Block comments may span lines.
func Normalize(raw []string) ([]Line, error) {
	out := make([]Line, 0, len(raw))
	inComment := false
	commentOpenedAt := 0

	for i, src := range raw {
		no := i + 1
		var b strings.Builder
		b.Grow(len(src))
		inString := false
		rs := []rune(src)

	scan:
		for j := 0; j < len(rs); j++ {
			r := rs[j]
			next := rune(0)
			if j+1 < len(rs) {
				next = rs[j+1]
			}
			switch {
			case inComment:
				if r == '*' && next == '/' {
					inComment = false
					j++
				}
			case inString:
				if r == '"' {
					inString = false
				} else {
					b.WriteRune(r)
				}
			case r == '"':
				inString = true
			case r == '/' && next == '*':
				inComment = true
				commentOpenedAt = no
				j++
			case r == '*' && next == '/':
				return nil, &CompileError{Line: no, Context: "level", Name: UnknownName, Kind: KindGeneric,
					Detail: "Comment block closes without ever opened"}
			case r == '/' && next == '/':
				break scan
			case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			default:
				b.WriteRune(unicode.ToLower(r))
			}
		}
		out = append(out, Line{No: no, Text: b.String()})
	}

	if inComment {
		return nil, &CompileError{Line: commentOpenedAt, Context: "level", Name: UnknownName, Kind: KindGeneric,
			Detail: "Comment block does not close"}
	}
	return out, nil
}
