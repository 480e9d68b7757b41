/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smll

import (
	"fmt"
	"strconv"

	"smllc/internal/scene"
)

// frame is the identity every blueprint carries for error reporting: its
// grammar context and its declared name, once set.
type frame struct {
	context string
	name    *string
}

func (f *frame) base() *frame { return f }

func (f *frame) fail(line int, kind ErrorKind, detail string) *CompileError {
	return &CompileError{Line: line, Context: f.context, Name: nameOrUnknown(f.name), Kind: kind, Detail: detail}
}

func (f *frame) flaw(line int, format string, args ...any) *CompileError {
	return f.fail(line, KindCompilerFlaw, fmt.Sprintf(format, args...))
}

func (f *frame) invalidArgs(c call, signature string) *CompileError {
	e := f.fail(c.Line, KindInvalidArguments, c.Name)
	e.Signature = signature
	e.Args = c.args()
	return e
}

func (f *frame) unknownFunction(c call) *CompileError {
	return f.fail(c.Line, KindUnknownFunction, c.Name)
}

// The setters below convert the arguments of c and store them in dst. Each
// reports KindInvalidArguments with the expected signature on failure.

func (f *frame) setVec3(c call, dst **scene.Vec3) error {
	args := c.args()
	if len(args) != 3 {
		return f.invalidArgs(c, c.Name+"(float, float, float)")
	}
	var v scene.Vec3
	for i, a := range args {
		x, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return f.invalidArgs(c, c.Name+"(float, float, float)")
		}
		v[i] = float32(x)
	}
	*dst = &v
	return nil
}

func (f *frame) setFloat(c call, dst **float32) error {
	args := c.args()
	if len(args) != 1 {
		return f.invalidArgs(c, c.Name+"(float)")
	}
	x, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return f.invalidArgs(c, c.Name+"(float)")
	}
	v := float32(x)
	*dst = &v
	return nil
}

func (f *frame) setBool(c call, dst **bool) error {
	args := c.args()
	if len(args) != 1 {
		return f.invalidArgs(c, c.Name+"(bool)")
	}
	var v bool
	switch args[0] {
	case "true":
		v = true
	case "false":
		v = false
	default:
		return f.invalidArgs(c, c.Name+"(bool)")
	}
	*dst = &v
	return nil
}

func (f *frame) setString(c call, dst **string) error {
	args := c.args()
	if len(args) != 1 || args[0] == "" {
		return f.invalidArgs(c, c.Name+"(str)")
	}
	v := args[0]
	*dst = &v
	return nil
}

// appendList appends every argument of a variadic string function.
func (f *frame) appendList(c call, dst *[]string) error {
	args := c.args()
	for _, a := range args {
		if a == "" {
			return f.invalidArgs(c, c.Name+"(str, ...)")
		}
	}
	*dst = append(*dst, args...)
	return nil
}

// field is one required blueprint field and whether it has been set.
type field struct {
	name string
	set  bool
}

// require reports the first unset field as KindUndefinedValue at the block's
// start line.
func (f *frame) require(start int, fields ...field) error {
	for _, fd := range fields {
		if !fd.set {
			return f.fail(start, KindUndefinedValue, fd.name)
		}
	}
	return nil
}
