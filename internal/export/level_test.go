/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"smllc/internal/smll"
)

const sample = `
bounding::aabb{ name(lvl_box); initpos(0,0,0); static(true); weight(0); minpos(-10,0,-10); maxpos(10,5,10); }
colgroup::aabb{ name(hall); initpos(0,0,0); static(true); weight(0); minpos(-5,0,-5); maxpos(5,5,5); }
light::pointlight{ name(sun); initpos(0,4,0); static(true); color(1,1,1); maxdist(20); }
object::define{ name(tile); static(true); initpos(0,0,0); colgrouptargets(hall);
	renderer::quad{ name(floor); texture(floor.png); initpos(0,0,0); texverc(1); texhorc(1); shininess(8); specstrength(0.1);
		pos00(0,0,0); pos01(0,0,1); pos10(1,0,0); pos11(1,0,1); }
	collider::aabb{ name(plate); type(trigger, bounding); command(open); initpos(0,0,0); weight(0); static(true);
		minpos(0,0,0); maxpos(1,0.2,1); activateoption(press); }
}
object::use{ name(tile2); static(true); initpos(1,0,0); tempname(tile); }
`

func TestMarshalProducesValidDocument(t *testing.T) {
	lvl, err := smll.CompileSource("yard", sample)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	data, err := Marshal(lvl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Format != FormatVersion || doc.Name != "yard" || len(doc.ColGroups) != 1 || len(doc.PointLights) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	tile := doc.Objects[0]
	if tile.Kind != "define" || tile.BoundingBox != "plate" || len(tile.Renderers) != 1 || len(tile.Colliders) != 1 {
		t.Fatalf("unexpected define object: %+v", tile)
	}
	if n := tile.Renderers[0].Normal; n == nil || n[1] <= 0 || tile.Renderers[0].Vertices != 6 {
		t.Fatalf("unexpected quad export: %+v", tile.Renderers[0])
	}
	if got := tile.Colliders[0].Types; strings.Join(got, ",") != "bounding,trigger" {
		t.Fatalf("collider types = %v", got)
	}
	if tile.Colliders[0].ActivateOption != "press" {
		t.Fatalf("activate option = %q", tile.Colliders[0].ActivateOption)
	}
	if use := doc.Objects[1]; use.Kind != "use" || use.Template != "tile" || use.ColGroupTargets == nil {
		t.Fatalf("unexpected use object: %+v", use)
	}
}

func TestValidateRejectsBrokenDocument(t *testing.T) {
	err := Validate([]byte(`{"format": 1, "name": "", "init_pos": [0, 0]}`))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Problems) < 3 {
		t.Fatalf("expected several problems, got %v", ve.Problems)
	}
}

func TestFromLevelRequiresBounding(t *testing.T) {
	if _, err := FromLevel(nil); err == nil {
		t.Fatalf("expected error for nil level")
	}
}

func TestSchemaIsCopied(t *testing.T) {
	s := Schema()
	s[0] = 'x'
	if Schema()[0] != '{' {
		t.Fatalf("Schema must return a copy")
	}
}
