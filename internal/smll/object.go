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

// objectFields are shared by the three object block kinds.
type objectFields struct {
	frame
	static  *bool
	initPos *scene.Vec3
	targets []string
}

// applyObject handles the functions every object block accepts.
func (o *objectFields) applyObject(c call) (handled bool, err error) {
	switch c.Name {
	case "name":
		return true, o.setString(c, &o.name)
	case "static":
		return true, o.setBool(c, &o.static)
	case "initpos":
		return true, o.setVec3(c, &o.initPos)
	case "colgrouptargets":
		return true, o.appendList(c, &o.targets)
	}
	return false, nil
}

func (o *objectFields) requireObject(start int, extra ...field) error {
	fields := append([]field{
		{"name", o.name != nil},
		{"static", o.static != nil},
		{"initpos", o.initPos != nil},
	}, extra...)
	return o.require(start, fields...)
}

func (o *objectFields) complete() bool {
	return o.name != nil && o.static != nil && o.initPos != nil
}

// colliderSet collects the collider blocks of an object and its single
// designated bounding collider.
type colliderSet struct {
	colliders []*scene.AABB
	bounding  *scene.AABB
}

func (s *colliderSet) add(f *frame, body []Line, start int) error {
	col, err := parseCollider(body, start)
	if err != nil {
		return err
	}
	if col.Bounding {
		if s.bounding != nil {
			return f.fail(start, KindGeneric, "bounding collider already exists")
		}
		s.bounding = col
	}
	s.colliders = append(s.colliders, col)
	return nil
}

// object::define

type objectDefineBlueprint struct {
	objectFields
	colliderSet
	renderers []scene.Renderer
}

func (b *objectDefineBlueprint) blocks() map[string]blockKind { return objectBlocks }

func (b *objectDefineBlueprint) apply(c call) error {
	if ok, err := b.applyObject(c); ok {
		return err
	}
	return b.unknownFunction(c)
}

func (b *objectDefineBlueprint) closeBlock(kind blockKind, body []Line, start int) error {
	switch kind {
	case blockRendererBox, blockRendererQuad:
		r, err := parseRenderer(kind, body, start)
		if err != nil {
			return err
		}
		b.renderers = append(b.renderers, r)
		return nil
	case blockCollider:
		return b.add(&b.frame, body, start)
	}
	return b.flaw(start, "object cannot hold %s", kind)
}

func (b *objectDefineBlueprint) validate(start int) error { return b.requireObject(start) }

func parseObjectDefine(body []Line, start int) (*scene.ObjectDefine, error) {
	b := &objectDefineBlueprint{objectFields: objectFields{frame: frame{context: "object"}}}
	if err := parseBlock(b, body, start); err != nil {
		return nil, err
	}
	if !b.complete() {
		return nil, b.flaw(start, "object::define assembled before validation")
	}
	return &scene.ObjectDefine{
		Name:            *b.name,
		Static:          *b.static,
		InitPos:         *b.initPos,
		Renderers:       b.renderers,
		Colliders:       b.colliders,
		BoundingBox:     b.colliderSet.bounding,
		ColGroupTargets: b.targets,
	}, nil
}

// object::objstatic

type objectStaticBlueprint struct {
	objectFields
	colliderSet
	objFile *string
}

func (b *objectStaticBlueprint) blocks() map[string]blockKind { return staticObjectBlocks }

func (b *objectStaticBlueprint) apply(c call) error {
	if ok, err := b.applyObject(c); ok {
		return err
	}
	if c.Name == "objname" {
		return b.setString(c, &b.objFile)
	}
	return b.unknownFunction(c)
}

func (b *objectStaticBlueprint) closeBlock(kind blockKind, body []Line, start int) error {
	if kind == blockCollider {
		return b.add(&b.frame, body, start)
	}
	return b.flaw(start, "object::objstatic cannot hold %s", kind)
}

func (b *objectStaticBlueprint) validate(start int) error {
	return b.requireObject(start, field{"objname", b.objFile != nil})
}

func parseObjectStatic(body []Line, start int) (*scene.ObjectStatic, error) {
	b := &objectStaticBlueprint{objectFields: objectFields{frame: frame{context: "object"}}}
	if err := parseBlock(b, body, start); err != nil {
		return nil, err
	}
	if !b.complete() || b.objFile == nil {
		return nil, b.flaw(start, "object::objstatic assembled before validation")
	}
	return &scene.ObjectStatic{
		Name:            *b.name,
		ObjFileName:     *b.objFile,
		Static:          *b.static,
		InitPos:         *b.initPos,
		Colliders:       b.colliders,
		BoundingBox:     b.colliderSet.bounding,
		ColGroupTargets: b.targets,
	}, nil
}

// object::use

type objectUseBlueprint struct {
	objectFields
	template *string
}

func (b *objectUseBlueprint) blocks() map[string]blockKind { return nil }

func (b *objectUseBlueprint) apply(c call) error {
	if ok, err := b.applyObject(c); ok {
		return err
	}
	if c.Name == "tempname" {
		return b.setString(c, &b.template)
	}
	return b.unknownFunction(c)
}

func (b *objectUseBlueprint) closeBlock(kind blockKind, _ []Line, start int) error {
	return b.flaw(start, "object::use cannot hold %s", kind)
}

func (b *objectUseBlueprint) validate(start int) error {
	return b.requireObject(start, field{"tempname", b.template != nil})
}

func parseObjectUse(body []Line, start int) (*scene.ObjectUse, error) {
	b := &objectUseBlueprint{objectFields: objectFields{frame: frame{context: "object"}}}
	if err := parseBlock(b, body, start); err != nil {
		return nil, err
	}
	if !b.complete() || b.template == nil {
		return nil, b.flaw(start, "object::use assembled before validation")
	}
	return &scene.ObjectUse{
		Name:            *b.name,
		TemplateName:    *b.template,
		Static:          *b.static,
		InitPos:         *b.initPos,
		ColGroupTargets: b.targets,
	}, nil
}

// parseBlock scans a captured block body into b and validates the result.
func parseBlock(b blueprint, body []Line, start int) error {
	if err := scan(body, b); err != nil {
		return err
	}
	return b.validate(start)
}
