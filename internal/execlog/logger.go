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

// Package execlog provides the slog handler used to capture pipeline
// execution logs as structured entries, so tooling and tests can match
// messages up with their respective run and transform.
package execlog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/jba/slog/withsupport"
)

const transformKey = "transform_id"

// WithTransformID produces the attribute identifying the transform a
// log message originated from. The ID must match the transform's name
// in the pipeline graph so messages can be attributed.
func WithTransformID(id string) slog.Attr {
	return slog.String(transformKey, id)
}

// Entry is a single captured log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Source  string

	RunID       string
	TransformID string

	Attrs map[string]any
}

// Options configure a Handler.
type Options struct {
	// RunID is stamped onto every entry.
	RunID string
	// Level reports the minimum record level that will be logged.
	// When nil, slog.LevelInfo is used.
	Level slog.Leveler
}

// Handler is a slog.Handler that sends entries to a channel.
type Handler struct {
	out  chan<- *Entry
	opts Options
	goa  *withsupport.GroupOrAttrs
}

// New returns a Handler sending entries to out. A nil opts uses
// defaults.
func New(out chan<- *Entry, opts *Options) *Handler {
	h := &Handler{out: out}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.goa = h.goa.WithGroup(name)
	return &h2
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.goa = h.goa.WithAttrs(attrs)
	return &h2
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	e := &Entry{
		Level:   r.Level,
		Message: r.Message,
		RunID:   h.opts.RunID,
		Attrs:   map[string]any{},
	}
	if !r.Time.IsZero() {
		e.Time = r.Time
	}
	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		e.Source = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	groups := h.goa.Apply(func(gs []string, a slog.Attr) {
		e.setAttr(gs, a)
	})
	r.Attrs(func(a slog.Attr) bool {
		e.setAttr(groups, a)
		return true
	})
	h.out <- e
	return nil
}

func (e *Entry) setAttr(groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if len(groups) == 0 && a.Key == transformKey && a.Value.Kind() == slog.KindString {
		e.TransformID = a.Value.String()
		return
	}
	m := e.Attrs
	for _, g := range groups {
		sub, ok := m[g].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[g] = sub
		}
		m = sub
	}
	putAttr(m, a)
}

func putAttr(m map[string]any, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		gas := a.Value.Group()
		// An empty group key inlines its attrs; an empty group is
		// elided entirely.
		if a.Key == "" {
			for _, ga := range gas {
				putAttr(m, ga)
			}
			return
		}
		if len(gas) == 0 {
			return
		}
		sub, ok := m[a.Key].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[a.Key] = sub
		}
		for _, ga := range gas {
			putAttr(sub, ga)
		}
		return
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	m[a.Key] = a.Value.Any()
}

var _ slog.Handler = (*Handler)(nil)
