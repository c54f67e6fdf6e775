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
	"github.com/go-json-experiment/json"
	"github.com/pkg/errors"

	"github.com/datchley/seqpipe/internal/pipeopts"
)

// Description is a static view of a pipeline graph as the user
// composed it, before implicit multiplex and discard insertion.
type Description struct {
	Name        string                  `json:"name"`
	Transforms  []TransformDescription  `json:"transforms"`
	Collections []CollectionDescription `json:"collections"`
}

// TransformDescription describes a single transform edge.
type TransformDescription struct {
	ID      string            `json:"id"`
	Kind    string            `json:"kind"`
	Name    string            `json:"name"`
	Inputs  map[string]string `json:"inputs,omitempty"`
	Outputs map[string]string `json:"outputs,omitempty"`
}

// CollectionDescription describes a single collection node.
type CollectionDescription struct {
	ID       string `json:"id"`
	Producer string `json:"producer"`
	Type     string `json:"type"`
}

// Describe builds the pipeline without running it and returns its
// graph description.
func Describe(build func(s *Scope) error, opts ...Options) (*Description, error) {
	var opt pipeopts.Struct
	opt.Join(opts...)
	name := opt.Name
	if name == "" {
		name = "pipeline"
	}

	g := &graph{}
	s := &Scope{name: name, g: g}
	if err := build(s); err != nil {
		return nil, errors.Wrapf(err, "building pipeline %q", name)
	}

	d := &Description{Name: name}
	for _, e := range g.edges {
		d.Transforms = append(d.Transforms, TransformDescription{
			ID:      e.edgeID().String(),
			Kind:    e.kind(),
			Name:    e.name(),
			Inputs:  stringifyPorts(e.inputs()),
			Outputs: stringifyPorts(e.outputs()),
		})
	}
	for _, n := range g.nodes {
		d.Collections = append(d.Collections, CollectionDescription{
			ID:       n.nodeID().String(),
			Producer: n.parentEdge().String(),
			Type:     n.elemType().String(),
		})
	}
	return d, nil
}

// JSON renders the description deterministically for tooling.
func (d *Description) JSON() ([]byte, error) {
	return json.Marshal(d, json.Deterministic(true))
}

func stringifyPorts(ports map[string]nodeIndex) map[string]string {
	if len(ports) == 0 {
		return nil
	}
	out := make(map[string]string, len(ports))
	for local, global := range ports {
		out[local] = global.String()
	}
	return out
}
