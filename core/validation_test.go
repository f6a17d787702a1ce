package core

import (
	"errors"
	"testing"
)

func TestValidateItem(t *testing.T) {
	tests := []struct {
		name    string
		item    *Item
		wantErr error
	}{
		{
			name: "valid item",
			item: &Item{
				Path:        "flopy/mf6/modflow/mfgwfdis.py",
				Source:      SourceModule,
				Fingerprint: "abc123",
			},
			wantErr: nil,
		},
		{
			name:    "nil item",
			item:    nil,
			wantErr: ErrInvalidItem,
		},
		{
			name: "empty path",
			item: &Item{
				Source:      SourceModule,
				Fingerprint: "abc123",
			},
			wantErr: ErrEmptyPath,
		},
		{
			name: "empty fingerprint",
			item: &Item{
				Path:   "flopy/mbase.py",
				Source: SourceModule,
			},
			wantErr: ErrEmptyFingerprint,
		},
		{
			name: "invalid source type",
			item: &Item{
				Path:        "flopy/mbase.py",
				Source:      SourceType(42),
				Fingerprint: "abc123",
			},
			wantErr: ErrInvalidSourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItem(tt.item)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis *Analysis
		wantErr  error
	}{
		{
			name: "valid analysis",
			analysis: &Analysis{
				Purpose:     "Configures the DIS package for structured grids.",
				Questions:   []string{"What nlay does this use?"},
				KeyConcepts: []string{"dis package"},
			},
			wantErr: nil,
		},
		{
			name:     "nil analysis",
			analysis: nil,
			wantErr:  ErrInvalidAnalysis,
		},
		{
			name: "empty purpose",
			analysis: &Analysis{
				Questions:   []string{"q"},
				KeyConcepts: []string{"c"},
			},
			wantErr: ErrEmptyPurpose,
		},
		{
			name: "no questions",
			analysis: &Analysis{
				Purpose:     "p",
				KeyConcepts: []string{"c"},
			},
			wantErr: ErrNoQuestions,
		},
		{
			name: "no key concepts",
			analysis: &Analysis{
				Purpose:   "p",
				Questions: []string{"q"},
			},
			wantErr: ErrNoKeyConcepts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysis(tt.analysis)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAnalysis() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStageRecord(t *testing.T) {
	valid := &StageRecord{
		ItemId:      ID(1),
		Stage:       StageAnalysis,
		Status:      StatusPending,
		Fingerprint: "abc",
	}
	if err := ValidateStageRecord(valid); err != nil {
		t.Fatalf("ValidateStageRecord() unexpected error: %v", err)
	}

	if err := ValidateStageRecord(nil); !errors.Is(err, ErrInvalidStageRecord) {
		t.Errorf("Expected ErrInvalidStageRecord for nil, got %v", err)
	}

	badStage := &StageRecord{ItemId: ID(1), Stage: Stage("bogus"), Status: StatusPending, Fingerprint: "abc"}
	if err := ValidateStageRecord(badStage); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Expected ErrInvalidStage, got %v", err)
	}

	badStatus := &StageRecord{ItemId: ID(1), Stage: StageEmbedding, Status: Status(42), Fingerprint: "abc"}
	if err := ValidateStageRecord(badStatus); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, true},
		{StatusFailed, StatusPending, true},
		{StatusFailed, StatusProcessing, true},
		{StatusFailed, StatusCompleted, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusCompleted, StatusFailed, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
