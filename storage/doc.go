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


// Package storage defines the persistence interfaces for the knowledge base.
//
// Two repositories back the pipeline:
//   - ItemRepository holds corpus items, their stage outputs (analysis,
//     embedding vector), and the per-(item, stage) processing state.
//   - CheckpointRepository holds durable per-stage run progress so an
//     interrupted pipeline can resume without repeating work.
//
// All item writes are idempotent upserts. Serialization uses the MUS
// binary format via the core package serializers.
package storage
