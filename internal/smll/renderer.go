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

// rendererBlueprint serves both renderer::aab and renderer::quad; kind
// decides which geometry functions are accepted.
type rendererBlueprint struct {
	frame
	kind    blockKind
	initPos *scene.Vec3
	texture *string

	texVer       *float32
	texHor       *float32
	shininess    *float32
	specStrength *float32

	minPos *scene.Vec3
	maxPos *scene.Vec3

	pos00 *scene.Vec3
	pos01 *scene.Vec3
	pos10 *scene.Vec3
	pos11 *scene.Vec3
}

func (b *rendererBlueprint) blocks() map[string]blockKind { return nil }

func (b *rendererBlueprint) apply(c call) error {
	switch c.Name {
	case "name":
		return b.setString(c, &b.name)
	case "initpos":
		return b.setVec3(c, &b.initPos)
	case "texture":
		return b.setString(c, &b.texture)
	case "texverc":
		return b.setFloat(c, &b.texVer)
	case "texhorc":
		return b.setFloat(c, &b.texHor)
	case "shininess":
		return b.setFloat(c, &b.shininess)
	case "specstrength":
		return b.setFloat(c, &b.specStrength)
	}
	if b.kind == blockRendererBox {
		switch c.Name {
		case "minpos":
			return b.setVec3(c, &b.minPos)
		case "maxpos":
			return b.setVec3(c, &b.maxPos)
		}
	} else {
		switch c.Name {
		case "pos00":
			return b.setVec3(c, &b.pos00)
		case "pos01":
			return b.setVec3(c, &b.pos01)
		case "pos10":
			return b.setVec3(c, &b.pos10)
		case "pos11":
			return b.setVec3(c, &b.pos11)
		}
	}
	return b.unknownFunction(c)
}

func (b *rendererBlueprint) closeBlock(kind blockKind, _ []Line, start int) error {
	return b.flaw(start, "renderer cannot hold %s", kind)
}

func (b *rendererBlueprint) validate(start int) error {
	var geometry []field
	if b.kind == blockRendererBox {
		geometry = []field{
			{"maxpos", b.maxPos != nil},
			{"minpos", b.minPos != nil},
		}
	} else {
		geometry = []field{
			{"pos00", b.pos00 != nil},
			{"pos01", b.pos01 != nil},
			{"pos10", b.pos10 != nil},
			{"pos11", b.pos11 != nil},
		}
	}
	return b.require(start, append(geometry,
		field{"name", b.name != nil},
		field{"texture", b.texture != nil},
		field{"initpos", b.initPos != nil},
		field{"texverc", b.texVer != nil},
		field{"texhorc", b.texHor != nil},
		field{"shininess", b.shininess != nil},
		field{"specstrength", b.specStrength != nil},
	)...)
}

func (b *rendererBlueprint) assemble(start int) (scene.Renderer, error) {
	if b.name == nil || b.texture == nil || b.initPos == nil || b.texVer == nil || b.texHor == nil ||
		b.shininess == nil || b.specStrength == nil {
		return scene.Renderer{}, b.flaw(start, "renderer assembled before validation")
	}
	r := scene.Renderer{
		Name:             *b.name,
		InitPos:          *b.initPos,
		Texture:          *b.texture,
		TexVerCount:      *b.texVer,
		TexHorCount:      *b.texHor,
		Shininess:        *b.shininess,
		SpecularStrength: *b.specStrength,
	}
	switch b.kind {
	case blockRendererBox:
		if b.minPos == nil || b.maxPos == nil {
			return scene.Renderer{}, b.flaw(start, "vertex data of renderer::aab is not generated")
		}
		r.Kind = scene.RendererBox
		r.Mesh = scene.BoxMesh(*b.minPos, *b.maxPos)
	case blockRendererQuad:
		if b.pos00 == nil || b.pos01 == nil || b.pos10 == nil || b.pos11 == nil {
			return scene.Renderer{}, b.flaw(start, "vertex data of renderer::quad is not generated")
		}
		r.Kind = scene.RendererQuad
		r.Mesh = scene.QuadMesh(*b.pos00, *b.pos01, *b.pos10, *b.pos11)
	default:
		return scene.Renderer{}, b.flaw(start, "%s is not a renderer", b.kind)
	}
	return r, nil
}

func parseRenderer(kind blockKind, body []Line, start int) (scene.Renderer, error) {
	b := &rendererBlueprint{frame: frame{context: "renderer"}, kind: kind}
	if err := parseBlock(b, body, start); err != nil {
		return scene.Renderer{}, err
	}
	return b.assemble(start)
}
