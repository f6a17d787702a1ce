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


package pipeline

import (
	"context"

	"github.com/poiesic/aquakb/core"
)

// Stage is one phase of the pipeline. Implementations perform the
// expensive external call for a single item and write their output
// into the record.
type Stage interface {
	// Name identifies the stage for status tracking and checkpoints.
	Name() core.Stage

	// DependsOn names the stage whose completion gates this stage's
	// candidates, or "" when the stage has no dependency.
	DependsOn() core.Stage

	// Process runs the stage's external call for one item and mutates
	// the record with the output. Errors follow the ai taxonomy:
	// transient errors may be retried by the caller, anything else is
	// recorded as a permanent failure.
	Process(ctx context.Context, record *core.ItemRecord) error
}
