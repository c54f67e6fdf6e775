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
	"context"
	"log/slog"
)

// processor is the untyped execution face of a DFC, used by the plan
// and by upstream emitters to push elements downstream.
type processor interface {
	processElement(elm any) error
}

// DFC is the per-run processing context for a single transform over a
// single input collection. A Transform's ProcessBundle method receives
// it at bundle start to register per element processing with
// [DFC.Process], and optionally a bundle finisher via [OnBundleFinish].
type DFC[E Element] struct {
	id        nodeIndex
	edge      edgeIndex
	transform string

	ctx    context.Context
	logger *slog.Logger

	dofn       Transform[E]
	downstream []processor

	perElm       func(ElmC, E) error
	finishBundle func() error
}

// Transform is the interface all pipeline transforms implement. The
// element type is that of the transform's parallel input collection.
type Transform[E Element] interface {
	ProcessBundle(dfc *DFC[E]) error
}

// Process registers the function to run on each element of the input
// collection. It must be called at most once per bundle.
func (c *DFC[E]) Process(perElm func(ec ElmC, elm E) error) error {
	if c.perElm != nil {
		panic("Process called twice for transform " + c.transform)
	}
	c.perElm = perElm
	return nil
}

// Context returns the context the pipeline was launched with.
func (c *DFC[E]) Context() context.Context {
	return c.ctx
}

// Logger returns a logger scoped to this transform.
func (c *DFC[E]) Logger() *slog.Logger {
	return c.logger
}

func (c *DFC[E]) regBundleFinisher(finishBundle func() error) {
	c.finishBundle = finishBundle
}

func (c *DFC[E]) metricSource() {}

func (c *DFC[E]) processElement(elm any) error {
	return c.perElm(ElmC{pcollections: c.downstream}, elm.(E))
}

// elmC mints an element context for emissions outside Process, such as
// from bundle finishers.
func (c *DFC[E]) elmC() ElmC {
	return ElmC{pcollections: c.downstream}
}

// ElmC is the per element context threaded through [PCol.Emit] so that
// emitted elements route to the correct downstream processors.
type ElmC struct {
	pcollections []processor
}
