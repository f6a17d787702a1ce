// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search provides semantic search over the analyzed knowledge base.
//
// The Searcher embeds the query, ranks stored item vectors by cosine
// similarity, then applies two lightweight boosts on top:
//   - Verbatim keyword matching with stop-word filtering
//   - A path boost when the query names a module or tutorial directly
//
// Results are scored and ranked to surface the most relevant items for
// a given question.
package search
