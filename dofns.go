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

// dofns.go is about the field flavours that can be added to DoFn structs.

import (
	"math/rand/v2"
	"reflect"

	"github.com/pkg/errors"

	"github.com/datchley/seqpipe/coders"
)

// PCol represents a logical collection of elements produced or
// consumed by a transform.
//
// Used as an exported value field of a DoFn struct, a PCol is an
// output of the DoFn: at execution time [PCol.Emit] passes elements,
// along with the per element context, to downstream transforms. After
// the DoFn is added to the graph the field is initialized, and may be
// passed around by value to further build the pipeline.
type PCol[E Element] struct {
	valid                bool
	globalIndex          nodeIndex
	localDownstreamIndex int
	mets                 *pcolMetrics
	coder                coders.Coder[E]
}

type emitIface interface {
	setPColKey(global nodeIndex, id int) *pcolMetrics
	newNode(global nodeIndex, parent edgeIndex) node
}

var _ emitIface = (*PCol[any])(nil)

func (emt *PCol[E]) setPColKey(global nodeIndex, id int) *pcolMetrics {
	emt.valid = true
	emt.globalIndex = global
	emt.localDownstreamIndex = id
	emt.mets = &pcolMetrics{nodeIdx: global, nextSampleIdx: 1}
	// Size sampling is best effort: collections whose elements can't
	// be encoded, such as grouped iterators, only count elements.
	if coders.Encodable(reflect.TypeFor[E]()) {
		emt.coder = coders.MakeCoder[E]()
	}
	return emt.mets
}

func (emt *PCol[E]) newNode(global nodeIndex, parent edgeIndex) node {
	return &typedNode[E]{index: global, parent: parent}
}

// Emit the element within the current element's context.
//
// The ElmC value is sourced from the [DFC.Process] method.
func (emt *PCol[E]) Emit(ec ElmC, elm E) {
	if emt.mets != nil {
		cur := emt.mets.elementCount + 1
		emt.mets.elementCount = cur
		if cur == emt.mets.nextSampleIdx && emt.coder != nil {
			if emt.mets.nextSampleIdx < 4 {
				emt.mets.nextSampleIdx++
			} else {
				emt.mets.nextSampleIdx = cur + rand.Int64N(cur/10+2) + 1
			}
			enc := coders.NewEncoder()
			emt.coder.Encode(enc, elm)
			emt.mets.sample(int64(len(enc.Data())))
		}
	}
	// Call the downstream function directly to avoid another layer.
	proc := ec.pcollections[emt.localDownstreamIndex]
	dfc := proc.(*DFC[E])
	if err := dfc.perElm(ElmC{pcollections: dfc.downstream}, elm); err != nil {
		panic(errors.Wrapf(err, "transform %q failed processing %T", dfc.transform, elm))
	}
}

// OnBundleFinish allows a DoFn to register a function that runs after
// the last element of the bundle has been processed. Elements may
// still be emitted downstream from the callback.
type OnBundleFinish struct{}

type bundleFinisher interface {
	regBundleFinisher(finishBundle func() error)
}

// Do registers a callback to execute after all bundle elements have
// been processed. Any resources a DoFn holds that need explicit
// cleanup should be released here.
//
// Only a single callback may be registered, the last one passed to Do.
func (*OnBundleFinish) Do(dfc bundleFinisher, finishBundle func() error) {
	dfc.regBundleFinisher(finishBundle)
}
