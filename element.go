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

import "iter"

// Element is the constraint for types that may flow through a pipeline
// collection.
type Element interface {
	any
}

// Keys is an [Element] that is also comparable, and so usable as a
// grouping key by [GBK] and [CombinePerKey].
type Keys interface {
	comparable
	Element
}

// KV represents a key and value pair, used by keyed transforms.
type KV[K, V Element] struct {
	Key   K
	Value V
}

// Iter is an ordered, re-iterable view over the values of a group,
// produced by [GBK]. Values are yielded in their input order.
type Iter[V Element] iter.Seq[V]
