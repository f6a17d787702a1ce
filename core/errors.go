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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidAnalysis indicates an Analysis failed validation.
	ErrInvalidAnalysis = errors.New("invalid analysis")

	// ErrInvalidStageRecord indicates a StageRecord failed validation.
	ErrInvalidStageRecord = errors.New("invalid stage record")

	// ErrEmptyPath indicates the item Path field is empty.
	ErrEmptyPath = errors.New("item path cannot be empty")

	// ErrEmptyFingerprint indicates the item Fingerprint field is empty.
	ErrEmptyFingerprint = errors.New("item fingerprint cannot be empty")

	// ErrInvalidSourceType indicates an invalid SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidStatus indicates an invalid Status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidStage indicates an unknown Stage name.
	ErrInvalidStage = errors.New("invalid stage")

	// ErrEmptyPurpose indicates the analysis Purpose field is empty.
	ErrEmptyPurpose = errors.New("analysis purpose cannot be empty")

	// ErrNoQuestions indicates the analysis has no discriminative questions.
	ErrNoQuestions = errors.New("analysis must contain at least one question")

	// ErrNoKeyConcepts indicates the analysis has no key concepts.
	ErrNoKeyConcepts = errors.New("analysis must contain at least one key concept")

	// ErrNegativeLength indicates a serialized collection carried a negative length.
	ErrNegativeLength = errors.New("negative collection length")
)
