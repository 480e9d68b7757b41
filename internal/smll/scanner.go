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
)

// blockKind identifies a recognized block keyword.
type blockKind int

const (
	blockObjectDefine blockKind = iota + 1
	blockObjectStatic
	blockObjectUse
	blockPointLight
	blockBounding
	blockColGroup
	blockRendererBox
	blockRendererQuad
	blockCollider
)

var blockKeywords = map[blockKind]string{
	blockObjectDefine: "object::define",
	blockObjectStatic: "object::objstatic",
	blockObjectUse:    "object::use",
	blockPointLight:   "light::pointlight",
	blockBounding:     "bounding::aabb",
	blockColGroup:     "colgroup::aabb",
	blockRendererBox:  "renderer::aab",
	blockRendererQuad: "renderer::quad",
	blockCollider:     "collider::aabb",
}

func (k blockKind) String() string {
	if s, ok := blockKeywords[k]; ok {
		return s
	}
	return "block(?)"
}

// Keyword tables per grammar level. Contexts that return nil accept no blocks.
var (
	levelBlocks        = keywordTable(blockObjectDefine, blockObjectStatic, blockObjectUse, blockPointLight, blockBounding, blockColGroup)
	objectBlocks       = keywordTable(blockRendererBox, blockRendererQuad, blockCollider)
	staticObjectBlocks = keywordTable(blockCollider)
)

func keywordTable(kinds ...blockKind) map[string]blockKind {
	m := make(map[string]blockKind, len(kinds))
	for _, k := range kinds {
		m[k.String()] = k
	}
	return m
}

// call is one "name(args);" statement. Raw holds the argument text without
// the closing parenthesis.
type call struct {
	Name string
	Raw  string
	Line int
}

func (c call) args() []string { return strings.Split(c.Raw, ",") }

// parseCall splits an accumulated statement into function name and arguments.
func parseCall(stmt string, line int) (call, bool) {
	name, rest, ok := strings.Cut(stmt, "(")
	if !ok || name == "" || !strings.HasSuffix(rest, ")") {
		return call{}, false
	}
	return call{Name: name, Raw: strings.TrimSuffix(rest, ")"), Line: line}, true
}

// scope is a grammar level driven by scan: a blueprint under construction
// together with its function table and the blocks it may contain.
type scope interface {
	base() *frame
	blocks() map[string]blockKind
	apply(c call) error
	closeBlock(kind blockKind, body []Line, start int) error
}

// blueprint is a scope that can check its required fields once closed.
type blueprint interface {
	scope
	validate(start int) error
}

// capture is the scanner state while inside a block. A nil *capture is idle.
type capture struct {
	kind    blockKind
	depth   int
	start   int
	body    []Line
	current strings.Builder
}

func (c *capture) endLine(no int) {
	if c.current.Len() == 0 {
		return
	}
	c.body = append(c.body, Line{No: no, Text: c.current.String()})
	c.current.Reset()
}

// scan runs the block state machine over lines at the grammar level of sc.
// Statements are dispatched to sc.apply as they complete; a block is handed
// to sc.closeBlock with its captured body once its braces balance.
func scan(lines []Line, sc scope) error {
	f := sc.base()
	var (
		stmt     strings.Builder
		stmtLine int
		cur      *capture
	)

	for _, ln := range lines {
		for _, r := range ln.Text {
			if cur != nil {
				switch r {
				case '{':
					cur.depth++
				case '}':
					cur.depth--
					if cur.depth == 0 {
						cur.endLine(ln.No)
						done := cur
						cur = nil
						if err := sc.closeBlock(done.kind, done.body, done.start); err != nil {
							return err
						}
						continue
					}
				}
				cur.current.WriteRune(r)
				continue
			}

			switch r {
			case '{':
				keyword := stmt.String()
				stmt.Reset()
				kind, ok := sc.blocks()[keyword]
				if !ok {
					return f.fail(ln.No, KindInvalidKeyword, keyword)
				}
				cur = &capture{kind: kind, depth: 1, start: ln.No}
			case ';':
				c, ok := parseCall(stmt.String(), ln.No)
				if !ok {
					return f.fail(ln.No, KindSyntax, stmt.String())
				}
				stmt.Reset()
				if err := sc.apply(c); err != nil {
					return err
				}
			case '}':
				return f.fail(ln.No, KindSyntax, stmt.String()+"}")
			default:
				if stmt.Len() == 0 {
					stmtLine = ln.No
				}
				stmt.WriteRune(r)
			}
		}
		if cur != nil {
			cur.endLine(ln.No)
		}
	}

	if cur != nil {
		return f.fail(cur.start, KindSyntax, "block '"+cur.kind.String()+"' does not close")
	}
	if stmt.Len() > 0 {
		return f.fail(stmtLine, KindSyntax, stmt.String()+" (missing ';')")
	}
	return nil
}
