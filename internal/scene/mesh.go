/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Mesh holds flat, interleave-free vertex attribute arrays ready for upload.
type Mesh struct {
	Vertices  []float32 // xyz per vertex
	TexCoords []float32 // uv per vertex
	Normals   []float32 // xyz per vertex
}

// VertexCount returns the number of vertices described by the mesh.
func (m Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// faceUV is the texture mapping shared by every two-triangle face.
var faceUV = [12]float32{
	0, 1,
	0, 0,
	1, 0,
	0, 1,
	1, 0,
	1, 1,
}

// BoxMesh builds the 36-vertex triangle list of an axis-aligned box.
// Faces are emitted top, near, right, far, left, bottom; each face has a
// constant normal along a principal axis.
func BoxMesh(minPos, maxPos Vec3) Mesh {
	left, down, far := minPos[0], minPos[1], minPos[2]
	right, up, near := maxPos[0], maxPos[1], maxPos[2]

	faces := [6]struct {
		corners [6]Vec3
		normal  Vec3
	}{
		{[6]Vec3{{left, up, far}, {left, up, near}, {right, up, near}, {left, up, far}, {right, up, near}, {right, up, far}}, Vec3{0, 1, 0}},
		{[6]Vec3{{left, up, near}, {left, down, near}, {right, down, near}, {left, up, near}, {right, down, near}, {right, up, near}}, Vec3{0, 0, 1}},
		{[6]Vec3{{right, up, near}, {right, down, near}, {right, down, far}, {right, up, near}, {right, down, far}, {right, up, far}}, Vec3{1, 0, 0}},
		{[6]Vec3{{right, up, far}, {right, down, far}, {left, down, far}, {right, up, far}, {left, down, far}, {left, up, far}}, Vec3{0, 0, -1}},
		{[6]Vec3{{left, up, far}, {left, down, far}, {left, down, near}, {left, up, far}, {left, down, near}, {left, up, near}}, Vec3{-1, 0, 0}},
		{[6]Vec3{{right, down, far}, {right, down, near}, {left, down, near}, {right, down, far}, {left, down, near}, {left, down, far}}, Vec3{0, -1, 0}},
	}

	m := Mesh{
		Vertices:  make([]float32, 0, 36*3),
		TexCoords: make([]float32, 0, 36*2),
		Normals:   make([]float32, 0, 36*3),
	}
	for _, f := range faces {
		for _, c := range f.corners {
			m.Vertices = append(m.Vertices, c[0], c[1], c[2])
			m.Normals = append(m.Normals, f.normal[0], f.normal[1], f.normal[2])
		}
		m.TexCoords = append(m.TexCoords, faceUV[:]...)
	}
	return m
}

// QuadNormal returns the (unnormalized) normal of a quad: the cross product of
// the pos01 and pos10 edges leaving pos00.
func QuadNormal(p00, p01, p10 Vec3) Vec3 {
	return p01.Sub(p00).Cross(p10.Sub(p00))
}

// QuadMesh builds the two triangles (p01,p00,p10) and (p01,p10,p11).
func QuadMesh(p00, p01, p10, p11 Vec3) Mesh {
	n := QuadNormal(p00, p01, p10)
	m := Mesh{
		Vertices:  make([]float32, 0, 6*3),
		TexCoords: append([]float32(nil), faceUV[:]...),
		Normals:   make([]float32, 0, 6*3),
	}
	for _, c := range [6]Vec3{p01, p00, p10, p01, p10, p11} {
		m.Vertices = append(m.Vertices, c[0], c[1], c[2])
		m.Normals = append(m.Normals, n[0], n[1], n[2])
	}
	return m
}

// RendererKind distinguishes the renderer block that produced a Renderer.
type RendererKind int

const (
	RendererBox RendererKind = iota + 1
	RendererQuad
)

func (k RendererKind) String() string {
	switch k {
	case RendererBox:
		return "aab"
	case RendererQuad:
		return "quad"
	default:
		return "unknown"
	}
}

// Renderer describes one textured mesh of an object template.
type Renderer struct {
	Kind    RendererKind
	Name    string
	InitPos Vec3
	Texture string

	TexVerCount      float32
	TexHorCount      float32
	Shininess        float32
	SpecularStrength float32

	Mesh Mesh
}
