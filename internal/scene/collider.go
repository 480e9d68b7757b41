/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the position/color triple used throughout the scene data.
type Vec3 = mgl32.Vec3

// ActivateOption controls how a trigger collider fires its commands.
type ActivateOption int

const (
	// ActivateOnce fires the first time the trigger is entered, then latches.
	ActivateOnce ActivateOption = 1
	// ActivateToggle fires on every overlap transition.
	ActivateToggle ActivateOption = 2
	// ActivatePress arms an interact prompt instead of firing automatically.
	ActivatePress ActivateOption = 3
)

func (o ActivateOption) String() string {
	switch o {
	case ActivateOnce:
		return "once"
	case ActivateToggle:
		return "toggle"
	case ActivatePress:
		return "press"
	default:
		return fmt.Sprintf("ActivateOption(%d)", int(o))
	}
}

// ParseActivateOption maps the script tokens once|toggle|press to their codes.
func ParseActivateOption(token string) (ActivateOption, bool) {
	switch token {
	case "once":
		return ActivateOnce, true
	case "toggle":
		return ActivateToggle, true
	case "press":
		return ActivatePress, true
	}
	return 0, false
}

// AABB is an axis-aligned box collider as consumed by the collision runtime.
// Min and Max are local to InitPos and always canonical (Min <= Max per axis).
type AABB struct {
	Name    string
	InitPos Vec3
	Static  bool

	Min Vec3
	Max Vec3

	// Weight splits penetration resolution between two bodies; 0 means immovable.
	Weight float32

	Bounding bool
	Blocking bool
	Trigger  bool

	ActivateOption  ActivateOption
	TriggerCommands []string
}

// CanonicalCorners returns the component-wise minimum and maximum of a and b.
func CanonicalCorners(a, b Vec3) (lo, hi Vec3) {
	for i := 0; i < 3; i++ {
		if a[i] < b[i] {
			lo[i], hi[i] = a[i], b[i]
		} else {
			lo[i], hi[i] = b[i], a[i]
		}
	}
	return lo, hi
}

// NewAABB builds a collider from two corners given in any order.
func NewAABB(name string, initPos, cornerA, cornerB Vec3) *AABB {
	lo, hi := CanonicalCorners(cornerA, cornerB)
	return &AABB{Name: name, InitPos: initPos, Min: lo, Max: hi, ActivateOption: ActivateOnce}
}

// Types reports the bounding, blocking and trigger tags.
func (a *AABB) Types() (bounding, blocking, trigger bool) {
	return a.Bounding, a.Blocking, a.Trigger
}

// EffectiveWeight is the weight used for push-back; static colliders never move.
func (a *AABB) EffectiveWeight() float32 {
	if a.Static {
		return 0
	}
	return a.Weight
}

// WorldMin returns the minimum corner offset by the collider position and parent.
func (a *AABB) WorldMin(parent Vec3) Vec3 { return a.Min.Add(a.InitPos).Add(parent) }

// WorldMax returns the maximum corner offset by the collider position and parent.
func (a *AABB) WorldMax(parent Vec3) Vec3 { return a.Max.Add(a.InitPos).Add(parent) }

// Contains reports whether p (world space, no parent) lies inside the box, edges included.
func (a *AABB) Contains(p Vec3) bool {
	lo, hi := a.WorldMin(Vec3{}), a.WorldMax(Vec3{})
	for i := 0; i < 3; i++ {
		if p[i] < lo[i] || p[i] > hi[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes overlap. Touching faces count as overlap.
func (a *AABB) Intersects(aParent Vec3, b *AABB, bParent Vec3) bool {
	aLo, aHi := a.WorldMin(aParent), a.WorldMax(aParent)
	bLo, bHi := b.WorldMin(bParent), b.WorldMax(bParent)
	for i := 0; i < 3; i++ {
		if aHi[i] < bLo[i] || bHi[i] < aLo[i] {
			return false
		}
	}
	return true
}

func (a *AABB) String() string {
	return fmt.Sprintf("<AABB %q min=%v max=%v>", a.Name, a.WorldMin(Vec3{}), a.WorldMax(Vec3{}))
}
