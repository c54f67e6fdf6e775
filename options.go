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
	"log/slog"

	"github.com/datchley/seqpipe/internal/pipeopts"
)

// Options configure Launch, ParDo, and the lightweight transforms with
// specific features. Each function takes a variadic list of options,
// where properties set in later options override the value of
// previously set properties.
type Options = pipeopts.Options

// Name sets the name of the pipeline or transform in question,
// typically to make it easier to refer to in results and logs.
func Name(name string) Options {
	return &pipeopts.Struct{
		Name: name,
	}
}

// Logger sets the logger the pipeline executes with. When unset,
// [slog.Default] is used.
func Logger(l *slog.Logger) Options {
	return &pipeopts.Struct{
		Logger: l,
	}
}
