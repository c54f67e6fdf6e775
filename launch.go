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
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/datchley/seqpipe/internal/execlog"
	"github.com/datchley/seqpipe/internal/pipeopts"
)

// Pipeline is a handle to a launched pipeline.
type Pipeline struct {
	id     uuid.UUID
	name   string
	g      *graph
	logger *slog.Logger

	done chan struct{}
	res  PipelineResult
	err  error
}

// PipelineResult is the final state of a completed pipeline.
type PipelineResult struct {
	RunID uuid.UUID
	Name  string

	// Counters holds the user counters, keyed
	// "<transform name>.<FieldName>".
	Counters map[string]int64
	// ElementCounts holds per collection element counts, keyed by
	// collection id as reported by [Describe].
	ElementCounts map[string]int64

	Duration time.Duration
}

// Launch builds the pipeline with the given function and begins
// evaluating it. Use [Pipeline.Wait] to retrieve the result.
//
// Construction errors are returned immediately; execution errors,
// including panics in user functions, surface from Wait.
func Launch(ctx context.Context, build func(s *Scope) error, opts ...Options) (*Pipeline, error) {
	var opt pipeopts.Struct
	opt.Join(opts...)
	name := opt.Name
	if name == "" {
		name = "pipeline"
	}

	g := &graph{}
	s := &Scope{name: name, g: g}
	if err := build(s); err != nil {
		return nil, errors.Wrapf(err, "building pipeline %q", name)
	}

	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	p := &Pipeline{
		id:     id,
		name:   name,
		g:      g,
		logger: logger.With(slog.String("run_id", id.String())),
		done:   make(chan struct{}),
	}
	go p.run(ctx)
	return p, nil
}

// Wait blocks until the pipeline finishes, returning its result.
func (p *Pipeline) Wait() (PipelineResult, error) {
	<-p.done
	return p.res, p.err
}

// LaunchAndWait builds the pipeline with the given function and
// evaluates it to completion.
func LaunchAndWait(ctx context.Context, build func(s *Scope) error, opts ...Options) (PipelineResult, error) {
	p, err := Launch(ctx, build, opts...)
	if err != nil {
		return PipelineResult{}, err
	}
	return p.Wait()
}

func (p *Pipeline) run(ctx context.Context) {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				p.err = errors.WithMessagef(err, "pipeline %q", p.name)
				return
			}
			p.err = errors.Errorf("pipeline %q panicked: %v", p.name, r)
		}
	}()

	start := time.Now()
	p.logger.Info("pipeline starting", slog.String("pipeline", p.name))
	err := p.execute(ctx)
	dur := time.Since(start)
	if err != nil {
		p.logger.Error("pipeline failed", slog.String("pipeline", p.name), slog.Any("error", err))
		p.err = err
		return
	}
	p.logger.Info("pipeline finished", slog.String("pipeline", p.name), slog.Duration("duration", dur))

	p.res = PipelineResult{
		RunID:         p.id,
		Name:          p.name,
		Counters:      map[string]int64{},
		ElementCounts: map[string]int64{},
		Duration:      dur,
	}
	for _, c := range p.g.counters {
		p.res.Counters[c.name] += *c.cell
	}
	for idx, m := range p.g.colMets {
		p.res.ElementCounts[idx.String()] = m.elementCount
	}
}

// plan holds the per-run execution state: one processor per
// collection, primed by its consuming edge.
type plan struct {
	ctx    context.Context
	logger *slog.Logger
	procs  []processor
}

func (p *plan) loggerFor(transform string) *slog.Logger {
	return p.logger.With(execlog.WithTransformID(transform))
}

// execute evaluates the graph: the plan is prepared, every edge primes
// the DFC of its input collection, sources push their elements depth
// first in order, and bundle finishers run in edge (topological)
// order so final emissions flow through downstream transforms before
// their own finishers run.
func (p *Pipeline) execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g := p.g
	g.prepare()

	pl := &plan{ctx: ctx, logger: p.logger, procs: make([]processor, len(g.nodes))}
	for i, n := range g.nodes {
		pl.procs[i] = n.newProcessor()
	}

	var finishers []func() error
	for _, e := range g.edges {
		pe, ok := e.(preparableEdge)
		if !ok {
			continue
		}
		fin, err := pe.prepare(pl)
		if err != nil {
			return err
		}
		finishers = append(finishers, fin)
	}

	for _, e := range g.edges {
		src, ok := e.(rootEdge)
		if !ok {
			continue
		}
		if err := src.run(pl); err != nil {
			return err
		}
	}

	for _, fin := range finishers {
		if err := fin(); err != nil {
			return err
		}
	}
	return nil
}
