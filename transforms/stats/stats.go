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

// Package stats provides combiners for common statistics over numeric
// collections. Use them with [seqpipe.CombineGlobally] or
// [seqpipe.CombinePerKey].
package stats

import (
	"golang.org/x/exp/constraints"

	"github.com/datchley/seqpipe"
)

// Number restricts the combiners to real numeric element types.
type Number interface {
	constraints.Integer | constraints.Float
}

type sumFn[E Number] struct{}

func (sumFn[E]) MergeAccumulators(a, b E) E { return a + b }

// Sum combines a collection by addition. An empty input produces 0.
func Sum[E Number]() seqpipe.Combine[E, E, E] {
	return seqpipe.SimpleMerge[E](sumFn[E]{})
}

type productFn[E Number] struct{}

func (productFn[E]) CreateAccumulator() E       { return 1 }
func (productFn[E]) MergeAccumulators(a, b E) E { return a * b }

// Product combines a collection by multiplication. An empty input
// produces 1.
func Product[E Number]() seqpipe.Combine[E, E, E] {
	return seqpipe.SimpleMerge[E](productFn[E]{})
}

// extremum tracks whether any input has arrived, so the zero element
// can't masquerade as a smallest or largest value.
type extremum[E Number] struct {
	Set bool
	Val E
}

type minFn[E Number] struct{}

func (minFn[E]) AddInput(a extremum[E], v E) extremum[E] {
	if !a.Set || v < a.Val {
		return extremum[E]{Set: true, Val: v}
	}
	return a
}

func (minFn[E]) MergeAccumulators(a, b extremum[E]) extremum[E] {
	if !a.Set {
		return b
	}
	if !b.Set {
		return a
	}
	if b.Val < a.Val {
		return b
	}
	return a
}

func (minFn[E]) ExtractOutput(a extremum[E]) E { return a.Val }

// Min combines a collection to its smallest element. An empty input
// produces the zero value.
func Min[E Number]() seqpipe.Combine[extremum[E], E, E] {
	return seqpipe.FullCombine[extremum[E], E, E](minFn[E]{})
}

type maxFn[E Number] struct{}

func (maxFn[E]) AddInput(a extremum[E], v E) extremum[E] {
	if !a.Set || v > a.Val {
		return extremum[E]{Set: true, Val: v}
	}
	return a
}

func (maxFn[E]) MergeAccumulators(a, b extremum[E]) extremum[E] {
	if !a.Set {
		return b
	}
	if !b.Set {
		return a
	}
	if b.Val > a.Val {
		return b
	}
	return a
}

func (maxFn[E]) ExtractOutput(a extremum[E]) E { return a.Val }

// Max combines a collection to its largest element. An empty input
// produces the zero value.
func Max[E Number]() seqpipe.Combine[extremum[E], E, E] {
	return seqpipe.FullCombine[extremum[E], E, E](maxFn[E]{})
}

type meanAccum[E Number] struct {
	Count int64
	Sum   E
}

type meanFn[E Number] struct{}

func (meanFn[E]) AddInput(a meanAccum[E], v E) meanAccum[E] {
	return meanAccum[E]{Count: a.Count + 1, Sum: a.Sum + v}
}

func (meanFn[E]) MergeAccumulators(a, b meanAccum[E]) meanAccum[E] {
	return meanAccum[E]{Count: a.Count + b.Count, Sum: a.Sum + b.Sum}
}

func (meanFn[E]) ExtractOutput(a meanAccum[E]) float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Sum) / float64(a.Count)
}

// Mean combines a collection to the arithmetic mean of its elements.
// An empty input produces 0.
func Mean[E Number]() seqpipe.Combine[meanAccum[E], E, float64] {
	return seqpipe.FullCombine[meanAccum[E], E, float64](meanFn[E]{})
}

type countFn[E seqpipe.Element] struct{}

func (countFn[E]) AddInput(a int64, _ E) int64        { return a + 1 }
func (countFn[E]) MergeAccumulators(a, b int64) int64 { return a + b }
func (countFn[E]) ExtractOutput(a int64) int64        { return a }

// Count combines a collection to the number of elements it contains.
func Count[E seqpipe.Element]() seqpipe.Combine[int64, E, int64] {
	return seqpipe.FullCombine[int64, E, int64](countFn[E]{})
}
