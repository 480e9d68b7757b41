/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smll

import (
	"smllc/internal/scene"
)

// checkNameDuplicates rejects sibling objects, and sibling renderers of one
// object, that share a name. The unknown sentinel may repeat.
func checkNameDuplicates(lvl *scene.Level) error {
	objects := make([]string, 0, len(lvl.Objects))
	for _, o := range lvl.Objects {
		objects = append(objects, o.ObjectName())
	}
	if dup, ok := firstDuplicate(objects); ok {
		return duplicateName(lvl.Name, dup)
	}

	for _, o := range lvl.Objects {
		def, ok := o.(*scene.ObjectDefine)
		if !ok {
			continue
		}
		names := make([]string, 0, len(def.Renderers))
		for _, r := range def.Renderers {
			names = append(names, r.Name)
		}
		if dup, ok := firstDuplicate(names); ok {
			return duplicateName(lvl.Name, dup)
		}
	}
	return nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == UnknownName {
			continue
		}
		if _, ok := seen[n]; ok {
			return n, true
		}
		seen[n] = struct{}{}
	}
	return "", false
}

func duplicateName(level, name string) *CompileError {
	return &CompileError{Name: level, Kind: KindDuplicateName, Detail: name}
}
