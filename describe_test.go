// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package seqpipe

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestDescribe(t *testing.T) {
	d, err := Describe(func(s *Scope) error {
		col := Create(s, 1, 2, 3)
		sq := Map(s, col, func(v int) int { return v * v })
		namedDiscard(s, sq, "sink")
		return nil
	}, Name("describe"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := d.Name, "describe"; got != want {
		t.Errorf("description name got %q, want %q", got, want)
	}

	want := &Description{
		Name: "describe",
		Transforms: []TransformDescription{
			{ID: "e0", Kind: "source", Name: "Create", Outputs: map[string]string{"o0": "n0"}},
			{ID: "e1", Kind: "pardo", Name: "Map", Inputs: map[string]string{"parallel": "n0"}, Outputs: map[string]string{"Output": "n1"}},
			{ID: "e2", Kind: "pardo", Name: "sink", Inputs: map[string]string{"parallel": "n1"}},
		},
		Collections: []CollectionDescription{
			{ID: "n0", Producer: "e0", Type: "int"},
			{ID: "n1", Producer: "e1", Type: "int"},
		},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Describe diff (-want, +got):\n%v", diff)
	}

	b, err := d.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"name":"describe"`) {
		t.Errorf("JSON missing pipeline name:\n%s", b)
	}
}

func TestDescribeBuildError(t *testing.T) {
	_, err := Describe(func(s *Scope) error {
		return errors.New("incomplete graph")
	})
	if err == nil {
		t.Fatal("Describe succeeded, want build error")
	}
	if !strings.Contains(err.Error(), "incomplete graph") {
		t.Errorf("error %q doesn't carry the build failure", err)
	}
}
