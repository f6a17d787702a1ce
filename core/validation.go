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

import "fmt"

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - Path must not be empty
//   - Fingerprint must not be empty
//   - Source must be a known SourceType
//
// NOT validated (populated later):
//   - Title (issues carry one; modules may not)
//   - Contents (may be trimmed before persistence)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyPath)
	}

	if item.Fingerprint == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyFingerprint)
	}

	if err := ValidateSourceType(item.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	return nil
}

// ValidateAnalysis validates an Analysis against the stage's
// required-field contract. A violation is a permanent failure: the
// pipeline records it without retrying.
func ValidateAnalysis(analysis *Analysis) error {
	if analysis == nil {
		return fmt.Errorf("%w: analysis is nil", ErrInvalidAnalysis)
	}

	if analysis.Purpose == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAnalysis, ErrEmptyPurpose)
	}

	if len(analysis.Questions) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAnalysis, ErrNoQuestions)
	}

	if len(analysis.KeyConcepts) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAnalysis, ErrNoKeyConcepts)
	}

	return nil
}

// ValidateStageRecord validates a StageRecord according to domain rules.
func ValidateStageRecord(record *StageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidStageRecord)
	}

	if record.ItemId == 0 {
		return fmt.Errorf("%w: item id is zero", ErrInvalidStageRecord)
	}

	if err := ValidateStage(record.Stage); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStageRecord, err)
	}

	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStageRecord, err)
	}

	return nil
}

// ValidateSourceType validates that a SourceType has a valid value.
func ValidateSourceType(source SourceType) error {
	if source != SourceModule && source != SourceTutorial && source != SourceIssue {
		return fmt.Errorf("%w: value %d", ErrInvalidSourceType, source)
	}
	return nil
}

// ValidateStatus validates that a Status has a valid value.
func ValidateStatus(status Status) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// ValidateStage validates that a Stage has a known name.
func ValidateStage(stage Stage) error {
	switch stage {
	case StageAnalysis, StageEmbedding:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
}

// CanTransition reports whether a status transition is legal for a stage
// record. Completed is terminal for an unchanged fingerprint; failed may
// return to pending via explicit reset or a fingerprint change.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed || to == StatusPending
	case StatusFailed:
		return to == StatusPending || to == StatusProcessing
	case StatusCompleted:
		return false
	default:
		return false
	}
}
