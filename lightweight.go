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

// lightweight.go holds the closure convenience transforms: Map,
// Filter, and Fold wrap ordinary DoFns around caller supplied pure
// functions.

type mapper[I, O Element] struct {
	fn func(I) O

	Output PCol[O]
}

func (fn *mapper[I, O]) ProcessBundle(dfc *DFC[I]) error {
	return dfc.Process(func(ec ElmC, in I) error {
		fn.Output.Emit(ec, fn.fn(in))
		return nil
	})
}

// Map applies fn to each element of the input collection, producing a
// collection of the results with order and length preserved.
//
// fn must be a pure function of its input: the pipeline gives no
// ordering or lifetime guarantees beyond per element calls in input
// order.
func Map[I, O Element](s *Scope, input PCol[I], fn func(I) O, opts ...Options) PCol[O] {
	return ParDo(s, input, &mapper[I, O]{fn: fn}, prependName("Map", opts)...).Output
}

type filterer[E Element] struct {
	pred func(E) bool

	Output PCol[E]
}

func (fn *filterer[E]) ProcessBundle(dfc *DFC[E]) error {
	return dfc.Process(func(ec ElmC, elm E) error {
		if fn.pred(elm) {
			fn.Output.Emit(ec, elm)
		}
		return nil
	})
}

// Filter produces a collection containing, in their original order,
// exactly the input elements for which pred returns true.
func Filter[E Element](s *Scope, input PCol[E], pred func(E) bool, opts ...Options) PCol[E] {
	return ParDo(s, input, &filterer[E]{pred: pred}, prependName("Filter", opts)...).Output
}

type folder[A, E Element] struct {
	seed  A
	fn    func(A, E) A
	accum A

	OnBundleFinish
	Output PCol[A]
}

func (fn *folder[A, E]) ProcessBundle(dfc *DFC[E]) error {
	fn.accum = fn.seed
	fn.OnBundleFinish.Do(dfc, func() error {
		fn.Output.Emit(dfc.elmC(), fn.accum)
		return nil
	})
	return dfc.Process(func(ec ElmC, elm E) error {
		fn.accum = fn.fn(fn.accum, elm)
		return nil
	})
}

// Fold combines the input collection left to right, starting from
// seed, and emits the single final accumulator once the input is
// exhausted. An empty input emits the untouched seed.
//
// The combine function need not be commutative or associative:
// elements are folded strictly in input order.
func Fold[A, E Element](s *Scope, input PCol[E], seed A, combine func(A, E) A, opts ...Options) PCol[A] {
	return ParDo(s, input, &folder[A, E]{seed: seed, fn: combine}, prependName("Fold", opts)...).Output
}

// prependName gives the lightweight transforms a legible default name
// while letting caller options override it.
func prependName(name string, opts []Options) []Options {
	return append([]Options{Name(name)}, opts...)
}
