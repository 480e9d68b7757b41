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
	"strings"
)

// ErrorKind classifies a CompileError. The numeric values are stable and are
// what tooling and the compile journal store.
type ErrorKind int

const (
	KindGeneric          ErrorKind = iota // free-text diagnostic
	KindSyntax                            // malformed statement or block structure
	KindInvalidKeyword                    // unrecognized block keyword
	KindInvalidArguments                  // wrong arity or failed conversion
	KindUnknownFunction                   // function not valid in this context
	KindUndefinedValue                    // required field never set
	KindCompilerFlaw                      // internal invariant violated
	KindDuplicateName                     // sibling name collision
)

func (k ErrorKind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindSyntax:
		return "syntax"
	case KindInvalidKeyword:
		return "invalid_keyword"
	case KindInvalidArguments:
		return "invalid_arguments"
	case KindUnknownFunction:
		return "unknown_function"
	case KindUndefinedValue:
		return "undefined_value"
	case KindCompilerFlaw:
		return "compiler_flaw"
	case KindDuplicateName:
		return "duplicate_name"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// UnknownName is reported for blueprints whose name was never set.
const UnknownName = "unknown"

// CompileError is the single error type raised by the compiler. Every error
// is fatal to the compile that produced it.
type CompileError struct {
	Line    int    // 1-based source line, 0 when not tied to a line
	Context string // grammar context: level, object, renderer, collider, ...
	Name    string // declared name of the offending blueprint or UnknownName
	Kind    ErrorKind

	// Detail is the kind-specific subject: the message (generic, flaw), the
	// offending text (syntax, keyword), the function (arguments, unknown
	// function), the field (undefined value) or the name (duplicate).
	Detail string
	// Signature and Args are set for KindInvalidArguments only.
	Signature string
	Args      []string
}

func (e *CompileError) Error() string {
	prefix := fmt.Sprintf("[line %d in %s '%s'] ", e.Line, e.Context, e.Name)
	switch e.Kind {
	case KindGeneric:
		return fmt.Sprintf("[line %d] %s", e.Line, e.Detail)
	case KindSyntax:
		return prefix + fmt.Sprintf("Syntax error: %q", e.Detail)
	case KindInvalidKeyword:
		return prefix + fmt.Sprintf("Invalid keyword: %q", e.Detail)
	case KindInvalidArguments:
		return prefix + fmt.Sprintf("Invalid arguments for function '%s': (%s)", e.Signature, quoteArgs(e.Args))
	case KindUnknownFunction:
		return prefix + fmt.Sprintf("This function does not exist: '%s'", e.Detail)
	case KindUndefinedValue:
		return prefix + fmt.Sprintf("'%s' is not defined", e.Detail)
	case KindCompilerFlaw:
		return prefix + fmt.Sprintf("This is a bug, please report this whole message: %q", e.Detail)
	case KindDuplicateName:
		return fmt.Sprintf("[in level '%s'] The name '%s' is already taken.", e.Name, e.Detail)
	default:
		return prefix + e.Detail
	}
}

func quoteArgs(args []string) string {
	q := make([]string, len(args))
	for i, a := range args {
		q[i] = fmt.Sprintf("%q", a)
	}
	return strings.Join(q, ", ")
}

func nameOrUnknown(name *string) string {
	if name == nil {
		return UnknownName
	}
	return *name
}
