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

// Package seqpipe builds and runs typed transformation pipelines over
// finite, ordered, in-memory sequences. It leverages generics so that
// Go typechecks the pipeline at construction, instead of relying on
// reflection heavy per-element plumbing.
//
// A pipeline is composed under a [Scope]: sources such as [Create]
// produce collections, and transforms such as [Filter], [Map], [Fold],
// [GBK], and user DoFns added with [ParDo] derive new collections from
// them. [LaunchAndWait] evaluates the graph to completion in process,
// synchronously and single threaded, pushing each source element
// depth-first through its consumers in input order.
//
// Collections retain element order end to end: a filtered collection
// holds the retained elements in their original order, a mapped
// collection preserves order and length, and folds apply strictly left
// to right from their seed.
package seqpipe
