/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package smll

import (
	"slices"

	"smllc/internal/scene"
)

// colliderBlueprint backs collider::aabb inside objects as well as the
// level's bounding::aabb and colgroup::aabb blocks. The level variants
// (boundingOnly) accept only geometry and assemble as bounding colliders.
type colliderBlueprint struct {
	frame
	boundingOnly bool

	initPos *scene.Vec3
	static  *bool
	minPos  *scene.Vec3
	maxPos  *scene.Vec3
	weight  *float32

	bounding bool
	blocking bool
	trigger  bool

	activate *scene.ActivateOption
	commands []string
}

func (b *colliderBlueprint) blocks() map[string]blockKind { return nil }

func (b *colliderBlueprint) apply(c call) error {
	switch c.Name {
	case "name":
		return b.setString(c, &b.name)
	case "initpos":
		return b.setVec3(c, &b.initPos)
	case "static":
		return b.setBool(c, &b.static)
	case "weight":
		return b.setFloat(c, &b.weight)
	case "minpos":
		return b.setVec3(c, &b.minPos)
	case "maxpos":
		return b.setVec3(c, &b.maxPos)
	}
	if b.boundingOnly {
		return b.unknownFunction(c)
	}

	switch c.Name {
	case "type":
		return b.setTypes(c)
	case "command":
		return b.appendList(c, &b.commands)
	case "activateoption":
		args := c.args()
		if len(args) != 1 {
			return b.invalidArgs(c, "activateoption(once|toggle|press)")
		}
		opt, ok := scene.ParseActivateOption(args[0])
		if !ok {
			return b.invalidArgs(c, "activateoption(once|toggle|press)")
		}
		b.activate = &opt
		return nil
	}
	return b.unknownFunction(c)
}

// setTypes unions the listed tags into the collider; tags are not exclusive.
func (b *colliderBlueprint) setTypes(c call) error {
	var bounding, blocking, trigger bool
	for _, t := range c.args() {
		switch t {
		case "bounding":
			bounding = true
		case "blocking":
			blocking = true
		case "trigger":
			trigger = true
		default:
			return b.invalidArgs(c, "type(bounding|blocking|trigger, ...)")
		}
	}
	b.bounding = b.bounding || bounding
	b.blocking = b.blocking || blocking
	b.trigger = b.trigger || trigger
	return nil
}

func (b *colliderBlueprint) closeBlock(kind blockKind, _ []Line, start int) error {
	return b.flaw(start, "%s cannot hold %s", b.context, kind)
}

func (b *colliderBlueprint) validate(start int) error {
	geometry := []field{
		{"initpos", b.initPos != nil},
		{"weight", b.weight != nil},
		{"static", b.static != nil},
		{"minpos", b.minPos != nil},
		{"maxpos", b.maxPos != nil},
	}
	fields := []field{{"name", b.name != nil}}
	if !b.boundingOnly {
		fields = append(fields,
			field{"type", b.bounding || b.blocking || b.trigger},
			field{"command", !b.trigger || len(b.commands) > 0},
		)
	}
	fields = append(fields, geometry...)
	if !b.boundingOnly {
		fields = append(fields, field{"activateoption", b.activate != nil})
	}
	return b.require(start, fields...)
}

func (b *colliderBlueprint) assemble(start int) (*scene.AABB, error) {
	if b.name == nil || b.initPos == nil || b.weight == nil || b.static == nil || b.minPos == nil || b.maxPos == nil {
		return nil, b.flaw(start, "%s assembled before validation", b.context)
	}
	box := scene.NewAABB(*b.name, *b.initPos, *b.minPos, *b.maxPos)
	box.Static = *b.static
	box.Weight = *b.weight
	if b.boundingOnly {
		box.Bounding = true
		return box, nil
	}

	if b.activate == nil {
		return nil, b.flaw(start, "%s assembled without activate option", b.context)
	}
	box.Bounding, box.Blocking, box.Trigger = b.bounding, b.blocking, b.trigger
	box.ActivateOption = *b.activate
	// Commands are stored last-declared first; the trigger runtime pops from the end.
	box.TriggerCommands = slices.Clone(b.commands)
	slices.Reverse(box.TriggerCommands)
	return box, nil
}

func parseCollider(body []Line, start int) (*scene.AABB, error) {
	b := &colliderBlueprint{frame: frame{context: "collider"}}
	if err := parseBlock(b, body, start); err != nil {
		return nil, err
	}
	return b.assemble(start)
}

// parseBounding parses a level-scope bounding::aabb or colgroup::aabb block.
func parseBounding(body []Line, start int, context string) (*scene.AABB, error) {
	b := &colliderBlueprint{frame: frame{context: context}, boundingOnly: true}
	if err := parseBlock(b, body, start); err != nil {
		return nil, err
	}
	return b.assemble(start)
}
