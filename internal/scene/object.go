/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// ObjectBlueprint is an object template or instantiation request kept on a
// Level until an object manager turns it into a live object.
type ObjectBlueprint interface {
	ObjectName() string
	Targets() []string
}

// ObjectDefine is a fully described object template: renderers and colliders.
type ObjectDefine struct {
	Name    string
	Static  bool
	InitPos Vec3

	Renderers []Renderer
	Colliders []*AABB
	// BoundingBox points at the collider tagged bounding, if any.
	BoundingBox *AABB

	ColGroupTargets []string
}

func (o *ObjectDefine) ObjectName() string { return o.Name }
func (o *ObjectDefine) Targets() []string  { return o.ColGroupTargets }

// ObjectUse instantiates a template defined elsewhere by TemplateName.
type ObjectUse struct {
	Name         string
	TemplateName string
	Static       bool
	InitPos      Vec3

	ColGroupTargets []string
}

func (o *ObjectUse) ObjectName() string { return o.Name }
func (o *ObjectUse) Targets() []string  { return o.ColGroupTargets }

// ObjectStatic is a mesh loaded from a model file with script-defined colliders.
type ObjectStatic struct {
	Name        string
	ObjFileName string
	Static      bool
	InitPos     Vec3

	Colliders   []*AABB
	BoundingBox *AABB

	ColGroupTargets []string
}

func (o *ObjectStatic) ObjectName() string { return o.Name }
func (o *ObjectStatic) Targets() []string  { return o.ColGroupTargets }

// InitInfo is the instantiation request an object manager derives from a blueprint.
type InitInfo struct {
	ObjectName   string
	TemplateName string
	Static       bool
	InitPos      Vec3

	ColGroupTargets []string
	// Colliders only carries the script colliders of an ObjectStatic; templates
	// own their colliders.
	Colliders []*AABB
}

// InitInfoFor derives the instantiation request of obj. The template of an
// ObjectDefine is itself, of an ObjectUse its tempname and of an ObjectStatic
// its model file.
func InitInfoFor(obj ObjectBlueprint) (InitInfo, bool) {
	switch o := obj.(type) {
	case *ObjectDefine:
		return InitInfo{ObjectName: o.Name, TemplateName: o.Name, Static: o.Static, InitPos: o.InitPos, ColGroupTargets: o.ColGroupTargets}, true
	case *ObjectUse:
		return InitInfo{ObjectName: o.Name, TemplateName: o.TemplateName, Static: o.Static, InitPos: o.InitPos, ColGroupTargets: o.ColGroupTargets}, true
	case *ObjectStatic:
		return InitInfo{ObjectName: o.Name, TemplateName: o.ObjFileName, Static: o.Static, InitPos: o.InitPos, ColGroupTargets: o.ColGroupTargets, Colliders: o.Colliders}, true
	}
	return InitInfo{}, false
}
