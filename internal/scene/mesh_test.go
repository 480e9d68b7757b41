/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "testing"

func TestBoxMesh_Layout(t *testing.T) {
	m := BoxMesh(Vec3{-1, 0, -2}, Vec3{1, 3, 2})
	if m.VertexCount() != 36 {
		t.Fatalf("VertexCount = %d, want 36", m.VertexCount())
	}
	if len(m.TexCoords) != 72 || len(m.Normals) != 108 {
		t.Fatalf("unexpected attribute sizes: uv=%d n=%d", len(m.TexCoords), len(m.Normals))
	}
	// first face is the top: every vertex at max y with an up normal
	for v := 0; v < 6; v++ {
		if m.Vertices[v*3+1] != 3 {
			t.Fatalf("top vertex %d has y=%v", v, m.Vertices[v*3+1])
		}
		if m.Normals[v*3] != 0 || m.Normals[v*3+1] != 1 || m.Normals[v*3+2] != 0 {
			t.Fatalf("top normal %d = %v", v, m.Normals[v*3:v*3+3])
		}
	}
	// last face is the bottom
	last := 35 * 3
	if m.Normals[last+1] != -1 || m.Vertices[last+1] != 0 {
		t.Fatalf("bottom face unexpected: v=%v n=%v", m.Vertices[last:last+3], m.Normals[last:last+3])
	}
}

func TestBoxMesh_NormalsArePrincipalAxes(t *testing.T) {
	m := BoxMesh(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	for v := 0; v < m.VertexCount(); v++ {
		n := m.Normals[v*3 : v*3+3]
		nonZero := 0
		for _, c := range n {
			if c != 0 {
				if c != 1 && c != -1 {
					t.Fatalf("normal %d not unit axis: %v", v, n)
				}
				nonZero++
			}
		}
		if nonZero != 1 {
			t.Fatalf("normal %d not along a principal axis: %v", v, n)
		}
	}
}

func TestQuadMesh_UpwardNormal(t *testing.T) {
	m := QuadMesh(Vec3{0, 0, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0}, Vec3{1, 0, 1})
	if m.VertexCount() != 6 {
		t.Fatalf("VertexCount = %d, want 6", m.VertexCount())
	}
	for v := 0; v < 6; v++ {
		if m.Normals[v*3+1] <= 0 {
			t.Fatalf("normal %d = %v, want positive y", v, m.Normals[v*3:v*3+3])
		}
	}
	if m.Vertices[0] != 0 || m.Vertices[2] != 1 {
		t.Fatalf("first vertex should be pos01, got %v", m.Vertices[0:3])
	}
}

func TestRendererKind_String(t *testing.T) {
	if RendererBox.String() != "aab" || RendererQuad.String() != "quad" {
		t.Fatalf("unexpected kind names: %s %s", RendererBox, RendererQuad)
	}
}
