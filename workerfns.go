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

// workerfns.go is where the transforms the evaluator itself inserts or
// that exist as common utilities live. Note that they are implemented
// in the same manner as user DoFns.

// multiplex and discard transforms are implicitly added to the
// execution graph when a collection is consumed by more than one
// transform, and zero transforms respectively.

// multiplex is a Transform inserted when a collection is used as an
// input into multiple downstream transforms. The same element is
// emitted to each consuming emitter in order.
type multiplex[E Element] struct {
	Outs []PCol[E]
}

func (fn *multiplex[E]) ProcessBundle(dfc *DFC[E]) error {
	return dfc.Process(func(ec ElmC, elm E) error {
		for _, out := range fn.Outs {
			out.Emit(ec, elm)
		}
		return nil
	})
}

// discard is a Transform inserted when a collection is unused by any
// downstream transform. It performs a no-op, so execution avoids
// per-element branches on whether a consumer is valid.
type discard[E Element] struct{}

func (fn *discard[E]) ProcessBundle(dfc *DFC[E]) error {
	return dfc.Process(func(ec ElmC, elm E) error {
		return nil
	})
}

// SourceFn emits the ints [0, Count) for each input element. Useful
// for generating test and benchmark inputs downstream of an [Impulse].
type SourceFn struct {
	Count int

	Output PCol[int]
}

func (fn *SourceFn) ProcessBundle(dfc *DFC[[]byte]) error {
	return dfc.Process(func(ec ElmC, _ []byte) error {
		for i := 0; i < fn.Count; i++ {
			fn.Output.Emit(ec, i)
		}
		return nil
	})
}

// DiscardFn is an explicit sink that counts the elements it receives.
type DiscardFn[E Element] struct {
	Processed CounterInt64
}

func (fn *DiscardFn[E]) ProcessBundle(dfc *DFC[E]) error {
	return dfc.Process(func(ec ElmC, _ E) error {
		fn.Processed.Inc(dfc, 1)
		return nil
	})
}

// CollectFn is a sink that accumulates every element it receives, in
// arrival order. Since pipelines run in process, the collected
// elements may be read from the Got field once the pipeline is done.
type CollectFn[E Element] struct {
	Processed CounterInt64

	Got []E
}

func (fn *CollectFn[E]) ProcessBundle(dfc *DFC[E]) error {
	return dfc.Process(func(ec ElmC, elm E) error {
		fn.Processed.Inc(dfc, 1)
		fn.Got = append(fn.Got, elm)
		return nil
	})
}
