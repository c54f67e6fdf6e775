package seqpipe

// This is where the combiner transforms live. Combiners fold a
// collection (or each key's values) into a single output through an
// accumulator, in input order.

// Combine packages the accumulator operations a combiner transform
// applies. Build one with [SimpleMerge] or [FullCombine].
type Combine[A, I, O Element] struct {
	create  func() A
	add     func(A, I) A
	merge   func(A, A) A
	extract func(A) O
}

func (c Combine[A, I, O]) newAccum() A {
	if c.create != nil {
		return c.create()
	}
	var a A
	return a
}

// MergeCombiner is a combiner whose accumulator, input, and output are
// the same type.
type MergeCombiner[A Element] interface {
	MergeAccumulators(A, A) A
}

// FullCombiner is a combiner with distinct accumulator, input, and
// output types.
type FullCombiner[A, I, O Element] interface {
	AddInput(A, I) A
	MergeAccumulators(A, A) A
	ExtractOutput(A) O
}

// accumCreator is optionally implemented by combiners whose identity
// accumulator isn't the zero value, such as products.
type accumCreator[A Element] interface {
	CreateAccumulator() A
}

// SimpleMerge wraps a combiner that only merges values of a single
// type, such as a sum.
func SimpleMerge[A Element](c MergeCombiner[A]) Combine[A, A, A] {
	cmb := Combine[A, A, A]{
		add:     c.MergeAccumulators,
		merge:   c.MergeAccumulators,
		extract: func(a A) A { return a },
	}
	if ac, ok := c.(accumCreator[A]); ok {
		cmb.create = ac.CreateAccumulator
	}
	return cmb
}

// FullCombine wraps a combiner with distinct accumulator creation,
// input addition, and output extraction, such as a mean.
func FullCombine[A, I, O Element](c FullCombiner[A, I, O]) Combine[A, I, O] {
	cmb := Combine[A, I, O]{
		add:     c.AddInput,
		merge:   c.MergeAccumulators,
		extract: c.ExtractOutput,
	}
	if ac, ok := c.(accumCreator[A]); ok {
		cmb.create = ac.CreateAccumulator
	}
	return cmb
}

type combineGloballyFn[A, I, O Element] struct {
	cmb   Combine[A, I, O]
	accum A

	OnBundleFinish
	Output PCol[O]
}

func (fn *combineGloballyFn[A, I, O]) ProcessBundle(dfc *DFC[I]) error {
	fn.accum = fn.cmb.newAccum()
	fn.OnBundleFinish.Do(dfc, func() error {
		fn.Output.Emit(dfc.elmC(), fn.cmb.extract(fn.accum))
		return nil
	})
	return dfc.Process(func(ec ElmC, elm I) error {
		fn.accum = fn.cmb.add(fn.accum, elm)
		return nil
	})
}

// CombineGlobally folds the entire input collection into a single
// output element. An empty input emits the extracted identity
// accumulator.
func CombineGlobally[A, I, O Element](s *Scope, input PCol[I], cmb Combine[A, I, O], opts ...Options) PCol[O] {
	fn := &combineGloballyFn[A, I, O]{cmb: cmb}
	return ParDo(s, input, fn, prependName("CombineGlobally", opts)...).Output
}

type combinePerKeyFn[K Keys, A, I, O Element] struct {
	cmb    Combine[A, I, O]
	keys   []K
	accums map[K]A

	OnBundleFinish
	Output PCol[KV[K, O]]
}

func (fn *combinePerKeyFn[K, A, I, O]) ProcessBundle(dfc *DFC[KV[K, I]]) error {
	fn.keys = fn.keys[:0]
	fn.accums = map[K]A{}
	fn.OnBundleFinish.Do(dfc, func() error {
		ec := dfc.elmC()
		for _, k := range fn.keys {
			fn.Output.Emit(ec, KV[K, O]{Key: k, Value: fn.cmb.extract(fn.accums[k])})
		}
		return nil
	})
	return dfc.Process(func(ec ElmC, elm KV[K, I]) error {
		a, ok := fn.accums[elm.Key]
		if !ok {
			fn.keys = append(fn.keys, elm.Key)
			a = fn.cmb.newAccum()
		}
		fn.accums[elm.Key] = fn.cmb.add(a, elm.Value)
		return nil
	})
}

// CombinePerKey folds each key's values into a single output element
// per key. Keys are emitted in first-seen order, each key's values
// combined in input order. Keys never seen produce no output.
func CombinePerKey[K Keys, A, I, O Element](s *Scope, input PCol[KV[K, I]], cmb Combine[A, I, O], opts ...Options) PCol[KV[K, O]] {
	fn := &combinePerKeyFn[K, A, I, O]{cmb: cmb}
	return ParDo(s, input, fn, prependName("CombinePerKey", opts)...).Output
}
