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

type levelBlueprint struct {
	frame
	initPos *scene.Vec3

	objects   []scene.ObjectBlueprint
	lights    []scene.PointLight
	bounding  *scene.AABB
	colGroups []*scene.AABB
}

func newLevelBlueprint(name string) *levelBlueprint {
	b := &levelBlueprint{frame: frame{context: "level"}}
	if name != "" {
		b.name = &name
	}
	return b
}

func (b *levelBlueprint) blocks() map[string]blockKind { return levelBlocks }

func (b *levelBlueprint) apply(c call) error {
	switch c.Name {
	case "initpos":
		return b.setVec3(c, &b.initPos)
	}
	return b.unknownFunction(c)
}

func (b *levelBlueprint) closeBlock(kind blockKind, body []Line, start int) error {
	switch kind {
	case blockObjectDefine:
		o, err := parseObjectDefine(body, start)
		if err != nil {
			return err
		}
		b.objects = append(b.objects, o)
	case blockObjectStatic:
		o, err := parseObjectStatic(body, start)
		if err != nil {
			return err
		}
		b.objects = append(b.objects, o)
	case blockObjectUse:
		o, err := parseObjectUse(body, start)
		if err != nil {
			return err
		}
		b.objects = append(b.objects, o)
	case blockPointLight:
		l, err := parsePointLight(body, start)
		if err != nil {
			return err
		}
		b.lights = append(b.lights, l)
	case blockBounding:
		if b.bounding != nil {
			return b.fail(start, KindGeneric, "bounding::aabb already exists")
		}
		box, err := parseBounding(body, start, "bounding")
		if err != nil {
			return err
		}
		b.bounding = box
	case blockColGroup:
		box, err := parseBounding(body, start, "colgroup")
		if err != nil {
			return err
		}
		b.colGroups = append(b.colGroups, box)
	default:
		return b.flaw(start, "level cannot hold %s", kind)
	}
	return nil
}

func (b *levelBlueprint) validate(start int) error {
	return b.require(start,
		field{"name", b.name != nil},
		field{"bounding::aabb", b.bounding != nil},
	)
}

func (b *levelBlueprint) assemble(start int) (*scene.Level, error) {
	if b.name == nil || b.bounding == nil {
		return nil, b.flaw(start, "level assembled before validation")
	}
	lvl := &scene.Level{
		Name:        *b.name,
		Bounding:    b.bounding,
		ColGroups:   b.colGroups,
		Objects:     b.objects,
		PointLights: b.lights,
	}
	if b.initPos != nil {
		lvl.InitPos = *b.initPos
	}
	return lvl, nil
}

// parseLevel is the top-level parse of a normalized document.
func parseLevel(name string, lines []Line) (*scene.Level, error) {
	b := newLevelBlueprint(name)
	if err := scan(lines, b); err != nil {
		return nil, err
	}
	if err := b.validate(1); err != nil {
		return nil, err
	}
	lvl, err := b.assemble(1)
	if err != nil {
		return nil, err
	}
	if err := checkNameDuplicates(lvl); err != nil {
		return nil, err
	}
	return lvl, nil
}
