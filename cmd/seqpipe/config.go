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

package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/datchley/seqpipe"
	"github.com/datchley/seqpipe/transforms/io/textio"
)

// File is the YAML pipeline config file.
type File struct {
	Pipelines []Spec `yaml:"pipelines"`
}

// Spec declares a single pipeline: a numeric input, an optional filter
// and map stage, and a reduction.
type Spec struct {
	Name string `yaml:"name"`

	// Input holds inline input values. InputURL and InputKeys instead
	// read one number per line from the named bucket objects.
	Input     []float64 `yaml:"input"`
	InputURL  string    `yaml:"input_url"`
	InputKeys []string  `yaml:"input_keys"`
	Charset   string    `yaml:"charset"`

	Filter string `yaml:"filter"` // all, even, odd, positive, negative
	Map    string `yaml:"map"`    // identity, square, double, negate, abs
	Reduce string `yaml:"reduce"` // sum, product, min, max, count

	// Seed overrides the reduction's default starting value.
	Seed *float64 `yaml:"seed"`
}

// build assembles the pipeline, returning the sink its single result
// lands in.
func (spec Spec) build(s *seqpipe.Scope) (*seqpipe.CollectFn[float64], error) {
	pred, err := predicateFor(spec.Filter)
	if err != nil {
		return nil, errors.WithMessagef(err, "pipeline %q", spec.Name)
	}
	mapper, err := mapperFor(spec.Map)
	if err != nil {
		return nil, errors.WithMessagef(err, "pipeline %q", spec.Name)
	}
	reducer, seed, err := reducerFor(spec.Reduce)
	if err != nil {
		return nil, errors.WithMessagef(err, "pipeline %q", spec.Name)
	}
	if spec.Seed != nil {
		seed = *spec.Seed
	}

	var col seqpipe.PCol[float64]
	if spec.InputURL != "" {
		lines := textio.ReadCharset(s, spec.Charset, spec.InputURL, spec.InputKeys...)
		col = seqpipe.ParDo(s, lines, &parseFn{}, seqpipe.Name("parse")).Out
	} else {
		col = seqpipe.Create(s, spec.Input...)
	}
	if pred != nil {
		col = seqpipe.Filter(s, col, pred)
	}
	if mapper != nil {
		col = seqpipe.Map(s, col, mapper)
	}
	folded := seqpipe.Fold(s, col, seed, reducer)
	return seqpipe.ParDo(s, folded, &seqpipe.CollectFn[float64]{}, seqpipe.Name("result")), nil
}

// parseFn converts input lines to numbers, failing the pipeline on the
// first malformed line.
type parseFn struct {
	Out seqpipe.PCol[float64]
}

func (fn *parseFn) ProcessBundle(dfc *seqpipe.DFC[string]) error {
	return dfc.Process(func(ec seqpipe.ElmC, line string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return errors.Wrapf(err, "parsing line %q", line)
		}
		fn.Out.Emit(ec, v)
		return nil
	})
}

func predicateFor(name string) (func(float64) bool, error) {
	switch name {
	case "":
		return nil, nil
	case "all":
		return func(float64) bool { return true }, nil
	case "even":
		return func(v float64) bool { return math.Mod(v, 2) == 0 }, nil
	case "odd":
		return func(v float64) bool { return math.Mod(v, 2) != 0 }, nil
	case "positive":
		return func(v float64) bool { return v > 0 }, nil
	case "negative":
		return func(v float64) bool { return v < 0 }, nil
	}
	return nil, errors.Errorf("unknown filter %q", name)
}

func mapperFor(name string) (func(float64) float64, error) {
	switch name {
	case "":
		return nil, nil
	case "identity":
		return func(v float64) float64 { return v }, nil
	case "square":
		return func(v float64) float64 { return v * v }, nil
	case "double":
		return func(v float64) float64 { return 2 * v }, nil
	case "negate":
		return func(v float64) float64 { return -v }, nil
	case "abs":
		return math.Abs, nil
	}
	return nil, errors.Errorf("unknown map %q", name)
}

func reducerFor(name string) (func(float64, float64) float64, float64, error) {
	switch name {
	case "", "sum":
		return func(a, v float64) float64 { return a + v }, 0, nil
	case "product":
		return func(a, v float64) float64 { return a * v }, 1, nil
	case "min":
		return math.Min, math.Inf(1), nil
	case "max":
		return math.Max, math.Inf(-1), nil
	case "count":
		return func(a, _ float64) float64 { return a + 1 }, 0, nil
	}
	return nil, 0, errors.Errorf("unknown reduce %q", name)
}
