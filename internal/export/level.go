/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes compiled levels as JSON documents for external tools.
// Every document is checked against the embedded level.schema.json.
package export

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"smllc/internal/scene"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// FormatVersion is written into every document.
const FormatVersion = 1

//go:embed level.schema.json
var schemaJSON []byte

// Schema returns the JSON schema documents are validated against.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

type Document struct {
	Format      int          `json:"format"`
	Name        string       `json:"name"`
	InitPos     scene.Vec3   `json:"init_pos"`
	Bounding    Collider     `json:"bounding"`
	ColGroups   []Collider   `json:"colgroups"`
	Objects     []Object     `json:"objects"`
	PointLights []PointLight `json:"point_lights"`
}

type Collider struct {
	Name            string     `json:"name"`
	InitPos         scene.Vec3 `json:"init_pos"`
	Static          bool       `json:"static"`
	Min             scene.Vec3 `json:"min"`
	Max             scene.Vec3 `json:"max"`
	Weight          float32    `json:"weight"`
	Types           []string   `json:"types"`
	ActivateOption  string     `json:"activate_option"`
	TriggerCommands []string   `json:"trigger_commands"`
}

type Renderer struct {
	Kind             string      `json:"kind"`
	Name             string      `json:"name"`
	InitPos          scene.Vec3  `json:"init_pos"`
	Texture          string      `json:"texture"`
	TexVerCount      float32     `json:"tex_ver_count"`
	TexHorCount      float32     `json:"tex_hor_count"`
	Shininess        float32     `json:"shininess"`
	SpecularStrength float32     `json:"specular_strength"`
	Vertices         int         `json:"vertices"`
	Normal           *scene.Vec3 `json:"normal,omitempty"` // quads only
}

type Object struct {
	Kind            string     `json:"kind"`
	Name            string     `json:"name"`
	Template        string     `json:"template"`
	Static          bool       `json:"static"`
	InitPos         scene.Vec3 `json:"init_pos"`
	ColGroupTargets []string   `json:"colgroup_targets"`
	Renderers       []Renderer `json:"renderers,omitempty"`
	Colliders       []Collider `json:"colliders,omitempty"`
	BoundingBox     string     `json:"bounding_box,omitempty"`
}

type PointLight struct {
	Name        string     `json:"name"`
	Static      bool       `json:"static"`
	Position    scene.Vec3 `json:"position"`
	Color       scene.Vec3 `json:"color"`
	MaxDistance float32    `json:"max_distance"`
}

// FromLevel builds the export document of lvl.
func FromLevel(lvl *scene.Level) (Document, error) {
	if lvl == nil || lvl.Bounding == nil {
		return Document{}, errors.New("export: level without bounding volume")
	}
	doc := Document{
		Format:      FormatVersion,
		Name:        lvl.Name,
		InitPos:     lvl.InitPos,
		Bounding:    colliderOf(lvl.Bounding),
		ColGroups:   make([]Collider, 0, len(lvl.ColGroups)),
		Objects:     make([]Object, 0, len(lvl.Objects)),
		PointLights: make([]PointLight, 0, len(lvl.PointLights)),
	}
	for _, g := range lvl.ColGroups {
		doc.ColGroups = append(doc.ColGroups, colliderOf(g))
	}
	for _, o := range lvl.Objects {
		obj, err := objectOf(o)
		if err != nil {
			return Document{}, err
		}
		doc.Objects = append(doc.Objects, obj)
	}
	for _, l := range lvl.PointLights {
		doc.PointLights = append(doc.PointLights, PointLight{
			Name: l.Name, Static: l.Static, Position: l.Position, Color: l.Color, MaxDistance: l.MaxDistance,
		})
	}
	return doc, nil
}

func colliderOf(a *scene.AABB) Collider {
	c := Collider{
		Name:            a.Name,
		InitPos:         a.InitPos,
		Static:          a.Static,
		Min:             a.Min,
		Max:             a.Max,
		Weight:          a.Weight,
		Types:           make([]string, 0, 3),
		ActivateOption:  a.ActivateOption.String(),
		TriggerCommands: append(make([]string, 0, len(a.TriggerCommands)), a.TriggerCommands...),
	}
	bounding, blocking, trigger := a.Types()
	if bounding {
		c.Types = append(c.Types, "bounding")
	}
	if blocking {
		c.Types = append(c.Types, "blocking")
	}
	if trigger {
		c.Types = append(c.Types, "trigger")
	}
	return c
}

func collidersOf(in []*scene.AABB) []Collider {
	out := make([]Collider, 0, len(in))
	for _, a := range in {
		out = append(out, colliderOf(a))
	}
	return out
}

func objectOf(o scene.ObjectBlueprint) (Object, error) {
	info, ok := scene.InitInfoFor(o)
	if !ok {
		return Object{}, fmt.Errorf("export: unsupported object %T", o)
	}
	obj := Object{
		Name:            info.ObjectName,
		Template:        info.TemplateName,
		Static:          info.Static,
		InitPos:         info.InitPos,
		ColGroupTargets: append(make([]string, 0, len(info.ColGroupTargets)), info.ColGroupTargets...),
	}
	switch v := o.(type) {
	case *scene.ObjectDefine:
		obj.Kind = "define"
		obj.Colliders = collidersOf(v.Colliders)
		for _, r := range v.Renderers {
			obj.Renderers = append(obj.Renderers, rendererOf(r))
		}
		if v.BoundingBox != nil {
			obj.BoundingBox = v.BoundingBox.Name
		}
	case *scene.ObjectUse:
		obj.Kind = "use"
	case *scene.ObjectStatic:
		obj.Kind = "objstatic"
		obj.Colliders = collidersOf(v.Colliders)
		if v.BoundingBox != nil {
			obj.BoundingBox = v.BoundingBox.Name
		}
	}
	return obj, nil
}

func rendererOf(r scene.Renderer) Renderer {
	out := Renderer{
		Kind:             r.Kind.String(),
		Name:             r.Name,
		InitPos:          r.InitPos,
		Texture:          r.Texture,
		TexVerCount:      r.TexVerCount,
		TexHorCount:      r.TexHorCount,
		Shininess:        r.Shininess,
		SpecularStrength: r.SpecularStrength,
		Vertices:         r.Mesh.VertexCount(),
	}
	if r.Kind == scene.RendererQuad && len(r.Mesh.Normals) >= 3 {
		n := scene.Vec3{r.Mesh.Normals[0], r.Mesh.Normals[1], r.Mesh.Normals[2]}
		out.Normal = &n
	}
	return out
}

// Marshal renders lvl as indented JSON and validates it before returning.
func Marshal(lvl *scene.Level) ([]byte, error) {
	doc, err := FromLevel(lvl)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal level %s: %w", lvl.Name, err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "export: document does not match level schema: " + strings.Join(e.Problems, "; ")
}

// Validate checks doc against the level schema.
func Validate(doc []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("export: validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, e := range result.Errors() {
		ve.Problems = append(ve.Problems, e.String())
	}
	return ve
}
