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
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestParDoMultiplex(t *testing.T) {
	pr, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		imp := Impulse(s)
		src := ParDo(s, imp, &SourceFn{Count: 10})
		namedDiscard(s, src.Output, "discard1")
		namedDiscard(s, src.Output, "discard2")
		return nil
	}, pipeName(t))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := int(pr.Counters["discard1.Processed"]), 10; got != want {
		t.Errorf("discard1 got %v, want %v", got, want)
	}
	if got, want := int(pr.Counters["discard2.Processed"]), 10; got != want {
		t.Errorf("discard2 got %v, want %v", got, want)
	}
	// n0 is the impulse, n1 the source output.
	if got, want := pr.ElementCounts["n1"], int64(10); got != want {
		t.Errorf("source output count got %v, want %v", got, want)
	}
}

func TestParDoUnconsumedOutput(t *testing.T) {
	pr, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		imp := Impulse(s)
		ParDo(s, imp, &SourceFn{Count: 10})
		return nil
	}, pipeName(t))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pr.ElementCounts["n1"], int64(10); got != want {
		t.Errorf("unconsumed output count got %v, want %v", got, want)
	}
}

func TestParDoDefaultName(t *testing.T) {
	pr, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		imp := Impulse(s)
		src := ParDo(s, imp, &SourceFn{Count: 3})
		ParDo(s, src.Output, &DiscardFn[int]{})
		return nil
	}, pipeName(t))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := int(pr.Counters["DiscardFn[int].Processed"]), 3; got != want {
		t.Errorf("default named counter got %v, want %v", got, want)
	}
}

type failingBundleFn struct {
	Output PCol[int]
}

func (fn *failingBundleFn) ProcessBundle(dfc *DFC[[]byte]) error {
	return errors.New("bundle setup failed")
}

func TestParDoProcessBundleError(t *testing.T) {
	_, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		imp := Impulse(s)
		fn := ParDo(s, imp, &failingBundleFn{}, Name("broken"))
		namedDiscard(s, fn.Output, "sink")
		return nil
	}, pipeName(t))
	if err == nil {
		t.Fatal("pipeline succeeded, want bundle error")
	}
	if !strings.Contains(err.Error(), "bundle setup failed") || !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q doesn't name the failing transform", err)
	}
}

type rejectFn struct {
	Bad int

	Output PCol[int]
}

func (fn *rejectFn) ProcessBundle(dfc *DFC[int]) error {
	return dfc.Process(func(ec ElmC, elm int) error {
		if elm == fn.Bad {
			return errors.Errorf("rejecting %v", elm)
		}
		fn.Output.Emit(ec, elm)
		return nil
	})
}

func TestParDoElementError(t *testing.T) {
	// The failing transform sits behind a Map, so the error unwinds
	// through an upstream emit.
	_, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		col := Create(s, 1, 2, 3, 4)
		doubled := Map(s, col, func(v int) int { return 2 * v })
		fn := ParDo(s, doubled, &rejectFn{Bad: 6}, Name("reject"))
		namedDiscard(s, fn.Output, "sink")
		return nil
	}, pipeName(t))
	if err == nil {
		t.Fatal("pipeline succeeded, want element error")
	}
	if !strings.Contains(err.Error(), "rejecting 6") {
		t.Errorf("error %q doesn't carry the element failure", err)
	}
}

func TestParDoDirectElementError(t *testing.T) {
	// The failing transform consumes the source directly.
	_, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		col := Create(s, 1, 2, 3)
		fn := ParDo(s, col, &rejectFn{Bad: 2}, Name("reject"))
		namedDiscard(s, fn.Output, "sink")
		return nil
	}, pipeName(t))
	if err == nil {
		t.Fatal("pipeline succeeded, want element error")
	}
	if !strings.Contains(err.Error(), "rejecting 2") {
		t.Errorf("error %q doesn't carry the element failure", err)
	}
}
