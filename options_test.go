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
	"testing"

	"github.com/datchley/seqpipe/internal/execlog"
)

func TestOptions_laterWins(t *testing.T) {
	pr, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		Impulse(s)
		return nil
	}, Name("first"), Name("second"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pr.Name, "second"; got != want {
		t.Errorf("pipeline name got %q, want %q", got, want)
	}
}

func TestOptions_Logger(t *testing.T) {
	entries := make(chan *execlog.Entry, 100)
	logger := slog.New(execlog.New(entries, nil))

	pr, err := LaunchAndWait(context.TODO(), func(s *Scope) error {
		imp := Impulse(s)
		src := ParDo(s, imp, &SourceFn{Count: 3})
		namedDiscard(s, src.Output, "sink")
		return nil
	}, pipeName(t), Logger(logger))
	if err != nil {
		t.Fatal(err)
	}

	e := <-entries
	if got, want := e.Message, "pipeline starting"; got != want {
		t.Errorf("first log message got %q, want %q", got, want)
	}
	if got, want := e.Attrs["run_id"], pr.RunID.String(); got != want {
		t.Errorf("run_id attr got %v, want %v", got, want)
	}
	if got, want := e.Attrs["pipeline"], t.Name(); got != want {
		t.Errorf("pipeline attr got %v, want %v", got, want)
	}
}
