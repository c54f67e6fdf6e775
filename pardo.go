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

	"github.com/pkg/errors"

	"github.com/datchley/seqpipe/internal/pipeopts"
)

// ParDo adds the user's DoFn to the pipeline, and returns the same
// value for downstream pipeline construction: the DoFn's now
// initialized PCol fields can be used as inputs into other transforms.
//
// Exported PCol fields become outputs of the transform, and exported
// CounterInt64 fields are registered as counters under the transform's
// name. Channel fields panic, as DoFns must be pure graph values.
func ParDo[E Element, DF Transform[E]](s *Scope, input PCol[E], dofn DF, opts ...Options) DF {
	if !input.valid {
		panic(fmt.Sprintf("uninitialized PCol[%v] passed to ParDo for %T", reflect.TypeFor[E](), dofn))
	}
	var opt pipeopts.Struct
	opt.Join(opts...)

	name := opt.Name
	if name == "" {
		name = typeName(dofn)
	}

	edgeID := s.g.curEdgeIndex()
	ins, outs, order := s.g.deferDoFn(dofn, input.globalIndex, edgeID, name)

	s.g.edges = append(s.g.edges, &edgeDoFn[E]{
		index:      edgeID,
		transform:  name,
		dofn:       dofn,
		ins:        ins,
		outs:       outs,
		outsOrder:  order,
		parallelIn: input.globalIndex,
		opts:       opt,
	})
	return dofn
}

func typeName(dofn any) string {
	rt := reflect.TypeOf(dofn)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt.Name()
}

// deferDoFn walks the DoFn's fields, initializing emitters and
// counters, and records the DoFn as a consumer of its input.
func (g *graph) deferDoFn(dofn any, input nodeIndex, global edgeIndex, transform string) (ins, outs map[string]nodeIndex, order []nodeIndex) {
	if g.consumers == nil {
		g.consumers = map[nodeIndex][]edgeIndex{}
	}
	g.consumers[input] = append(g.consumers[input], global)

	rv := reflect.ValueOf(dofn)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	ins = map[string]nodeIndex{
		"parallel": input,
	}
	outs = map[string]nodeIndex{}
	efaceRT := reflect.TypeOf((*emitIface)(nil)).Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		fv := rv.Field(i)
		sf := rt.Field(i)
		if !fv.CanAddr() || !sf.IsExported() {
			continue
		}
		switch sf.Type.Kind() {
		case reflect.Array, reflect.Slice:
			ptrEt := reflect.PointerTo(sf.Type.Elem())
			if !ptrEt.Implements(efaceRT) {
				continue
			}
			for j := 0; j < fv.Len(); j++ {
				fvj := fv.Index(j).Addr()
				g.initEmitter(fvj.Interface().(emitIface), global, fmt.Sprintf("%s%%%d", sf.Name, j), outs, &order)
			}
		case reflect.Struct:
			switch feature := fv.Addr().Interface().(type) {
			case emitIface:
				g.initEmitter(feature, global, sf.Name, outs, &order)
			case counterIface:
				g.initCounter(feature, transform, sf.Name)
			}
		case reflect.Chan:
			panic(fmt.Sprintf("field %v is a channel", fv))
		default:
			// Nothing to do for other field types.
		}
	}
	return ins, outs, order
}

type edgeDoFn[E Element] struct {
	index     edgeIndex
	transform string

	dofn       Transform[E]
	ins, outs  map[string]nodeIndex // local field names to global collection ids.
	outsOrder  []nodeIndex          // outputs by local downstream index.
	parallelIn nodeIndex

	opts pipeopts.Struct
}

func (e *edgeDoFn[E]) edgeID() edgeIndex {
	return e.index
}

func (e *edgeDoFn[E]) name() string {
	return e.transform
}

func (e *edgeDoFn[E]) kind() string {
	return "pardo"
}

func (e *edgeDoFn[E]) inputs() map[string]nodeIndex {
	return e.ins
}

func (e *edgeDoFn[E]) outputs() map[string]nodeIndex {
	return e.outs
}

func (e *edgeDoFn[E]) rewireInput(from, to nodeIndex) {
	if e.parallelIn == from {
		e.parallelIn = to
		e.ins["parallel"] = to
	}
}

// prepare primes the DFC of the edge's input collection: it wires the
// downstream processors for each output, then runs ProcessBundle so
// the DoFn registers its per element function.
func (e *edgeDoFn[E]) prepare(p *plan) (func() error, error) {
	dfc := p.procs[e.parallelIn].(*DFC[E])
	dfc.edge = e.index
	dfc.transform = e.transform
	dfc.ctx = p.ctx
	dfc.logger = p.loggerFor(e.transform)
	dfc.dofn = e.dofn
	dfc.downstream = make([]processor, len(e.outsOrder))
	for i, out := range e.outsOrder {
		dfc.downstream[i] = p.procs[out]
	}
	if err := e.dofn.ProcessBundle(dfc); err != nil {
		return nil, errors.Wrapf(err, "starting bundle for transform %q", e.transform)
	}
	if dfc.perElm == nil {
		return nil, errors.Errorf("transform %q: ProcessBundle didn't call DFC.Process", e.transform)
	}
	return func() error {
		if dfc.finishBundle == nil {
			return nil
		}
		return errors.Wrapf(dfc.finishBundle(), "finishing bundle for transform %q", e.transform)
	}, nil
}

var (
	_ multiEdge      = (*edgeDoFn[int])(nil)
	_ inputRewirer   = (*edgeDoFn[int])(nil)
	_ preparableEdge = (*edgeDoFn[int])(nil)
)
