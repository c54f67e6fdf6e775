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
	"fmt"
	"reflect"
)

// Scope is used to compose a pipeline graph. One is passed to the
// build function given to [Launch] or [LaunchAndWait].
type Scope struct {
	name string
	g    *graph
}

func (s *Scope) String() string {
	return s.name
}

type nodeIndex int
type edgeIndex int

func (i nodeIndex) String() string {
	return fmt.Sprintf("n%d", i)
}

func (i edgeIndex) String() string {
	return fmt.Sprintf("e%d", i)
}

// node is the untyped handle for a collection in the graph. Each node
// is implemented by a typedNode, which retains the element type for
// processor construction and plan preparation.
type node interface {
	nodeID() nodeIndex
	parentEdge() edgeIndex
	elemType() reflect.Type

	// newProcessor returns the DFC that the node's consuming edge
	// primes during plan preparation.
	newProcessor() processor

	// addDiscard and addMultiplex append the implicit edges inserted
	// for unconsumed and multiply consumed collections respectively.
	addDiscard(g *graph)
	addMultiplex(g *graph, consumers []edgeIndex)
}

type typedNode[E Element] struct {
	index  nodeIndex
	parent edgeIndex
}

func (n *typedNode[E]) nodeID() nodeIndex      { return n.index }
func (n *typedNode[E]) parentEdge() edgeIndex  { return n.parent }
func (n *typedNode[E]) elemType() reflect.Type { return reflect.TypeFor[E]() }

func (n *typedNode[E]) newProcessor() processor {
	return &DFC[E]{id: n.index}
}

func (n *typedNode[E]) addDiscard(g *graph) {
	edgeID := g.curEdgeIndex()
	g.consumers[n.index] = []edgeIndex{edgeID}
	g.edges = append(g.edges, &edgeDoFn[E]{
		index:      edgeID,
		transform:  "discard",
		dofn:       &discard[E]{},
		ins:        map[string]nodeIndex{"parallel": n.index},
		outs:       map[string]nodeIndex{},
		parallelIn: n.index,
	})
}

func (n *typedNode[E]) addMultiplex(g *graph, consumers []edgeIndex) {
	edgeID := g.curEdgeIndex()
	fn := &multiplex[E]{Outs: make([]PCol[E], len(consumers))}
	e := &edgeDoFn[E]{
		index:      edgeID,
		transform:  "multiplex",
		dofn:       fn,
		ins:        map[string]nodeIndex{"parallel": n.index},
		outs:       map[string]nodeIndex{},
		parallelIn: n.index,
	}
	for i, consumer := range consumers {
		g.initEmitter(&fn.Outs[i], edgeID, fmt.Sprintf("Outs%%%d", i), e.outs, &e.outsOrder)
		out := e.outsOrder[i]
		g.edges[consumer].(inputRewirer).rewireInput(n.index, out)
		g.consumers[out] = []edgeIndex{consumer}
	}
	g.consumers[n.index] = []edgeIndex{edgeID}
	g.edges = append(g.edges, e)
}

// multiEdge is the untyped handle for a transform in the graph.
type multiEdge interface {
	edgeID() edgeIndex
	name() string
	kind() string
	inputs() map[string]nodeIndex
	outputs() map[string]nodeIndex
}

// inputRewirer is implemented by edges whose parallel input may be
// redirected when a multiplex is inserted upstream.
type inputRewirer interface {
	rewireInput(from, to nodeIndex)
}

// preparableEdge is implemented by edges that prime a DFC at bundle
// start. The returned finisher runs after all sources have been
// drained, in edge order.
type preparableEdge interface {
	prepare(p *plan) (finish func() error, err error)
}

// rootEdge is implemented by edges that originate elements.
type rootEdge interface {
	run(p *plan) error
}

// graph is an append-only DAG of collections (nodes) and transforms
// (edges). Indices are assigned in creation order, so edge order is a
// valid topological order.
type graph struct {
	nodes     []node
	edges     []multiEdge
	consumers map[nodeIndex][]edgeIndex

	colMets  map[nodeIndex]*pcolMetrics
	counters []counterCell
}

func (g *graph) curNodeIndex() nodeIndex {
	return nodeIndex(len(g.nodes))
}

func (g *graph) curEdgeIndex() edgeIndex {
	return edgeIndex(len(g.edges))
}

// initEmitter initializes an output emitter field of a DoFn, creating
// the node for the collection it produces.
func (g *graph) initEmitter(emt emitIface, parent edgeIndex, name string, outs map[string]nodeIndex, order *[]nodeIndex) {
	localIndex := len(*order)
	globalIndex := g.curNodeIndex()
	mets := emt.setPColKey(globalIndex, localIndex)
	g.nodes = append(g.nodes, emt.newNode(globalIndex, parent))
	g.registerColMetrics(globalIndex, mets)
	outs[name] = globalIndex
	*order = append(*order, globalIndex)
}

func (g *graph) registerColMetrics(id nodeIndex, mets *pcolMetrics) {
	if g.colMets == nil {
		g.colMets = map[nodeIndex]*pcolMetrics{}
	}
	g.colMets[id] = mets
}

func (g *graph) initCounter(c counterIface, transform, field string) {
	g.counters = append(g.counters, counterCell{
		name: transform + "." + field,
		cell: c.initCounterCell(),
	})
}

// prepare inserts the implicit multiplex and discard edges so that
// every collection has exactly one consumer. Nodes created during the
// pass already satisfy that invariant and need no inspection.
func (g *graph) prepare() {
	if g.consumers == nil {
		g.consumers = map[nodeIndex][]edgeIndex{}
	}
	numNodes := len(g.nodes)
	for i := 0; i < numNodes; i++ {
		nd := g.nodes[i]
		cons := g.consumers[nd.nodeID()]
		switch len(cons) {
		case 0:
			nd.addDiscard(g)
		case 1:
			// Already a linear consumer.
		default:
			nd.addMultiplex(g, cons)
		}
	}
}
