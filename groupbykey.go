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

// GBK produces an output collection of values grouped by key. Groups
// are emitted once the input is exhausted, in first-seen key order,
// with each group's values in input order.
func GBK[K Keys, V Element](s *Scope, input PCol[KV[K, V]], opts ...Options) PCol[KV[K, Iter[V]]] {
	fn := &groupByKeyFn[K, V]{}
	return ParDo(s, input, fn, prependName("GroupByKey", opts)...).Output
}

type groupByKeyFn[K Keys, V Element] struct {
	keys   []K
	groups map[K][]V

	OnBundleFinish
	Output PCol[KV[K, Iter[V]]]
}

func (fn *groupByKeyFn[K, V]) ProcessBundle(dfc *DFC[KV[K, V]]) error {
	fn.keys = fn.keys[:0]
	fn.groups = map[K][]V{}
	fn.OnBundleFinish.Do(dfc, func() error {
		ec := dfc.elmC()
		for _, k := range fn.keys {
			vs := fn.groups[k]
			fn.Output.Emit(ec, KV[K, Iter[V]]{Key: k, Value: func(yield func(V) bool) {
				for _, v := range vs {
					if !yield(v) {
						return
					}
				}
			}})
		}
		return nil
	})
	return dfc.Process(func(ec ElmC, elm KV[K, V]) error {
		if _, ok := fn.groups[elm.Key]; !ok {
			fn.keys = append(fn.keys, elm.Key)
		}
		fn.groups[elm.Key] = append(fn.groups[elm.Key], elm.Value)
		return nil
	})
}
