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

// Package pipeopts holds the option plumbing shared across seqpipe
// packages.
package pipeopts

import (
	"log/slog"

	"github.com/datchley/seqpipe/internal"
)

// Options is the common options type shared across seqpipe packages.
type Options interface {
	// PipeOptions is exported so related seqpipe packages can implement
	// Options.
	PipeOptions(internal.NotForPublicUse)
}

// Struct is the combination of all options in struct form. This is
// efficient to pass down the call stack and to query.
type Struct struct {
	Name   string       // The configured name of the options target. Otherwise it's autogenerated.
	Logger *slog.Logger // The configured logger for execution. Otherwise slog.Default.
}

func (dst *Struct) PipeOptions(internal.NotForPublicUse) {}

// Join sets the dst fields from each src in order, with later sources
// overriding earlier ones.
func (dst *Struct) Join(srcs ...Options) {
	for _, src := range srcs {
		switch src := src.(type) {
		case *Struct:
			if src.Name != "" {
				dst.Name = src.Name
			}
			if src.Logger != nil {
				dst.Logger = src.Logger
			}
		}
	}
}
