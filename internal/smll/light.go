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

type pointLightBlueprint struct {
	frame
	initPos *scene.Vec3
	static  *bool
	color   *scene.Vec3
	maxDist *float32
}

func (b *pointLightBlueprint) blocks() map[string]blockKind { return nil }

func (b *pointLightBlueprint) apply(c call) error {
	switch c.Name {
	case "name":
		return b.setString(c, &b.name)
	case "initpos":
		return b.setVec3(c, &b.initPos)
	case "static":
		return b.setBool(c, &b.static)
	case "color":
		return b.setVec3(c, &b.color)
	case "maxdist":
		return b.setFloat(c, &b.maxDist)
	}
	return b.unknownFunction(c)
}

func (b *pointLightBlueprint) closeBlock(kind blockKind, _ []Line, start int) error {
	return b.flaw(start, "pointlight cannot hold %s", kind)
}

func (b *pointLightBlueprint) validate(start int) error {
	return b.require(start,
		field{"name", b.name != nil},
		field{"initpos", b.initPos != nil},
		field{"static", b.static != nil},
		field{"color", b.color != nil},
		field{"maxdist", b.maxDist != nil},
	)
}

func parsePointLight(body []Line, start int) (scene.PointLight, error) {
	b := &pointLightBlueprint{frame: frame{context: "pointlight"}}
	if err := parseBlock(b, body, start); err != nil {
		return scene.PointLight{}, err
	}
	if b.name == nil || b.initPos == nil || b.static == nil || b.color == nil || b.maxDist == nil {
		return scene.PointLight{}, b.flaw(start, "pointlight assembled before validation")
	}
	return scene.PointLight{
		Name:        *b.name,
		Static:      *b.static,
		Position:    *b.initPos,
		Color:       *b.color,
		MaxDistance: *b.maxDist,
	}, nil
}
