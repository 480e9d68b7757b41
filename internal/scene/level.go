/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the runtime data produced by the level compiler and
// consumed by the renderer, the object manager and the collision runtime.
// Nothing in here touches a GPU or a physics step.
package scene

// Level is the result of one successful compile.
type Level struct {
	Name    string
	InitPos Vec3

	// Bounding is the level's bounding volume; never nil on a compiled level.
	Bounding  *AABB
	ColGroups []*AABB

	// Objects keeps declaration order.
	Objects     []ObjectBlueprint
	PointLights []PointLight
}

// FindObject returns the first object blueprint named name.
func (l *Level) FindObject(name string) ObjectBlueprint {
	for _, o := range l.Objects {
		if o.ObjectName() == name {
			return o
		}
	}
	return nil
}

// FindColGroup returns the collision group named name.
func (l *Level) FindColGroup(name string) *AABB {
	for _, g := range l.ColGroups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// ActiveColGroups returns the names of the collision groups that contain p.
func (l *Level) ActiveColGroups(p Vec3) []string {
	var out []string
	for _, g := range l.ColGroups {
		if g.Contains(p) {
			out = append(out, g.Name)
		}
	}
	return out
}

// InitInfos derives the instantiation requests of every object, in order.
func (l *Level) InitInfos() []InitInfo {
	out := make([]InitInfo, 0, len(l.Objects))
	for _, o := range l.Objects {
		if info, ok := InitInfoFor(o); ok {
			out = append(out, info)
		}
	}
	return out
}
