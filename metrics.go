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

// pcolMetrics tracks per collection element counts, with occasionally
// sampled encoded element sizes on a growing stride. Cells are plain
// ints: the evaluator is single threaded.
type pcolMetrics struct {
	nodeIdx nodeIndex

	elementCount  int64
	nextSampleIdx int64

	sampleCount, sampleSum int64
	sampleMin, sampleMax   int64
}

func (m *pcolMetrics) sample(size int64) {
	if m.sampleCount == 0 || size < m.sampleMin {
		m.sampleMin = size
	}
	if m.sampleCount == 0 || size > m.sampleMax {
		m.sampleMax = size
	}
	m.sampleCount++
	m.sampleSum += size
}

// CounterInt64 is a user metric field for DoFn structs. Exported
// CounterInt64 fields are registered when the DoFn is added with
// [ParDo], and surface in the [PipelineResult] Counters map keyed
// "<transform name>.<FieldName>".
type CounterInt64 struct {
	cell *int64
}

// metricSource is implemented by DFCs, tying counter updates to the
// processing context they occur in.
type metricSource interface {
	metricSource()
}

// Inc adds diff to the counter.
func (c *CounterInt64) Inc(_ metricSource, diff int64) {
	if c.cell == nil {
		panic("CounterInt64 must be a field of a DoFn added to a pipeline")
	}
	*c.cell += diff
}

type counterIface interface {
	initCounterCell() *int64
}

func (c *CounterInt64) initCounterCell() *int64 {
	c.cell = new(int64)
	return c.cell
}

var _ counterIface = (*CounterInt64)(nil)

type counterCell struct {
	name string
	cell *int64
}
