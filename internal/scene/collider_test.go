/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "testing"

func TestNewAABB_CanonicalizesCorners(t *testing.T) {
	a := NewAABB("box", Vec3{}, Vec3{1, 0, 1}, Vec3{-1, 2, -1})
	if a.Min != (Vec3{-1, 0, -1}) || a.Max != (Vec3{1, 2, 1}) {
		t.Fatalf("unexpected corners: min=%v max=%v", a.Min, a.Max)
	}
	b := NewAABB("box", Vec3{}, Vec3{-1, 2, -1}, Vec3{1, 0, 1})
	if a.Min != b.Min || a.Max != b.Max {
		t.Fatalf("corner order changed result: %v/%v vs %v/%v", a.Min, a.Max, b.Min, b.Max)
	}
	if a.ActivateOption != ActivateOnce {
		t.Fatalf("default activate option = %v, want once", a.ActivateOption)
	}
}

func TestAABB_EffectiveWeight(t *testing.T) {
	a := NewAABB("w", Vec3{}, Vec3{}, Vec3{1, 1, 1})
	a.Weight = 3
	if a.EffectiveWeight() != 3 {
		t.Fatalf("dynamic weight = %v, want 3", a.EffectiveWeight())
	}
	a.Static = true
	if a.EffectiveWeight() != 0 {
		t.Fatalf("static collider must not move, got weight %v", a.EffectiveWeight())
	}
}

func TestAABB_WorldCornersAndContains(t *testing.T) {
	a := NewAABB("g", Vec3{10, 0, 0}, Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	if got := a.WorldMin(Vec3{0, 5, 0}); got != (Vec3{9, 4, -1}) {
		t.Fatalf("WorldMin = %v", got)
	}
	if got := a.WorldMax(Vec3{}); got != (Vec3{11, 1, 1}) {
		t.Fatalf("WorldMax = %v", got)
	}
	if !a.Contains(Vec3{11, 1, 1}) {
		t.Fatalf("edge point should be contained")
	}
	if a.Contains(Vec3{0, 0, 0}) {
		t.Fatalf("origin lies outside the shifted box")
	}
}

func TestAABB_Intersects(t *testing.T) {
	a := NewAABB("a", Vec3{}, Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewAABB("b", Vec3{}, Vec3{0, 0, 0}, Vec3{1, 1, 1})
	if !a.Intersects(Vec3{}, b, Vec3{1, 0, 0}) {
		t.Fatalf("touching boxes should intersect")
	}
	if a.Intersects(Vec3{}, b, Vec3{2, 0, 0}) {
		t.Fatalf("separated boxes should not intersect")
	}
}

func TestParseActivateOption(t *testing.T) {
	cases := map[string]ActivateOption{"once": 1, "toggle": 2, "press": 3}
	for tok, want := range cases {
		got, ok := ParseActivateOption(tok)
		if !ok || got != want {
			t.Fatalf("ParseActivateOption(%q) = %v,%v want %v", tok, got, ok, want)
		}
		if got.String() != tok {
			t.Fatalf("String() = %q, want %q", got.String(), tok)
		}
	}
	if _, ok := ParseActivateOption("twice"); ok {
		t.Fatalf("unexpected success for unknown token")
	}
}
