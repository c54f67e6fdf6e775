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

import "testing"

func pipeName(t *testing.T) Options {
	return Name(t.Name())
}

// convenience function to allow the discard type to be inferred.
func namedDiscard[E Element](s *Scope, input PCol[E], name string) {
	ParDo(s, input, &DiscardFn[E]{}, Name(name))
}
