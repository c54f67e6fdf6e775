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

import "github.com/pkg/errors"

// Create adds a source that emits the given values, in order, to
// downstream transforms. An empty Create still runs the pipeline:
// downstream collections are empty and folds emit their seeds.
func Create[E Element](s *Scope, values ...E) PCol[E] {
	return addSource(s, "Create", values)
}

// Impulse adds a source that emits a single empty byte slice, allowing
// processing to begin for transforms that generate their own elements.
func Impulse(s *Scope) PCol[[]byte] {
	return addSource(s, "Impulse", [][]byte{{}})
}

func addSource[E Element](s *Scope, transform string, values []E) PCol[E] {
	edgeID := s.g.curEdgeIndex()
	nodeID := s.g.curNodeIndex()
	mets := &pcolMetrics{nodeIdx: nodeID, nextSampleIdx: 1}
	s.g.edges = append(s.g.edges, &edgeSource[E]{
		index:     edgeID,
		transform: transform,
		output:    nodeID,
		elms:      values,
		mets:      mets,
	})
	s.g.nodes = append(s.g.nodes, &typedNode[E]{index: nodeID, parent: edgeID})
	s.g.registerColMetrics(nodeID, mets)
	return PCol[E]{valid: true, globalIndex: nodeID}
}

// edgeSource represents an in-memory root of the graph.
type edgeSource[E Element] struct {
	index     edgeIndex
	transform string
	output    nodeIndex

	elms []E
	mets *pcolMetrics
}

func (e *edgeSource[E]) edgeID() edgeIndex {
	return e.index
}

func (e *edgeSource[E]) name() string {
	return e.transform
}

func (e *edgeSource[E]) kind() string {
	return "source"
}

// inputs for sources are nil.
func (e *edgeSource[E]) inputs() map[string]nodeIndex {
	return nil
}

// outputs for sources are one.
func (e *edgeSource[E]) outputs() map[string]nodeIndex {
	return map[string]nodeIndex{"o0": e.output}
}

// run pushes each element depth-first through the consuming transform,
// in input order.
func (e *edgeSource[E]) run(p *plan) error {
	dfc := p.procs[e.output].(*DFC[E])
	for _, elm := range e.elms {
		if err := p.ctx.Err(); err != nil {
			return errors.Wrapf(err, "source %q interrupted", e.transform)
		}
		e.mets.elementCount++
		if err := dfc.processElement(elm); err != nil {
			return errors.Wrapf(err, "source %q", e.transform)
		}
	}
	return nil
}

var (
	_ multiEdge = (*edgeSource[int])(nil)
	_ rootEdge  = (*edgeSource[int])(nil)
)
