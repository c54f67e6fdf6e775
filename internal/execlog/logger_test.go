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

package execlog

import (
	"log/slog"
	"testing"
	"testing/slogtest"
)

func TestSlogtest(t *testing.T) {
	out := make(chan *Entry, 100)
	slogtest.Run(t,
		func(_ *testing.T) slog.Handler { return New(out, nil) },
		func(_ *testing.T) map[string]any {
			return parseEntry(<-out)
		})
}

func parseEntry(e *Entry) map[string]any {
	m := map[string]any{
		slog.MessageKey: e.Message,
		slog.LevelKey:   e.Level,
	}
	if !e.Time.IsZero() {
		m[slog.TimeKey] = e.Time
	}
	if e.Source != "" {
		m[slog.SourceKey] = e.Source
	}
	for k, v := range e.Attrs {
		m[k] = v
	}
	return m
}

func TestWithTransformID(t *testing.T) {
	out := make(chan *Entry, 100)
	want := Options{
		RunID: "testRun",
	}

	l := slog.New(New(out, &want))
	l.Info("testMsg1")

	got := <-out
	if got.RunID != want.RunID {
		t.Errorf("logging handler didn't set RunID, got %q want %q", got.RunID, want.RunID)
	}
	if got.TransformID != "" {
		t.Errorf("logging handler set TransformID, got %q want %q", got.TransformID, "")
	}

	const transformID = "testTransformID"
	l2 := l.With(WithTransformID(transformID))

	l2.Info("testMsg2")

	got = <-out
	if got.RunID != want.RunID {
		t.Errorf("logging handler didn't set RunID, got %q want %q", got.RunID, want.RunID)
	}
	if got.TransformID != transformID {
		t.Errorf("logging handler didn't set TransformID, got %q want %q", got.TransformID, transformID)
	}

	// The original logger should still have an unset transform id.
	l.Warn("testMsg1")
	got = <-out
	if got.TransformID != "" {
		t.Errorf("initial logging handler is aliasing TransformID, got %q want %q", got.TransformID, "")
	}
}
