package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/aquakb/core"
)

func TestCheckpointRoundTrip(t *testing.T) {
	_, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	cp := &core.Checkpoint{
		Stage:          core.StageAnalysis,
		RunId:          uuid.NewString(),
		CompletedItems: []core.ID{1, 2, 3},
		TotalItems:     10,
		StartedAt:      time.Now().UTC(),
	}

	if err := cpRepo.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	got, err := cpRepo.LoadCheckpoint(ctx, core.StageAnalysis)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if got == nil {
		t.Fatal("Expected checkpoint, got nil")
	}
	if got.RunId != cp.RunId {
		t.Errorf("Expected run ID %s, got %s", cp.RunId, got.RunId)
	}
	if len(got.CompletedItems) != 3 {
		t.Errorf("Expected 3 completed items, got %d", len(got.CompletedItems))
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set on save")
	}
}

func TestLoadCheckpoint_Missing(t *testing.T) {
	_, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer backend.Close()

	got, err := cpRepo.LoadCheckpoint(context.Background(), core.StageEmbedding)
	if err != nil {
		t.Fatalf("Unexpected error for missing checkpoint: %v", err)
	}
	if got != nil {
		t.Fatal("Expected nil for missing checkpoint")
	}
}

func TestCheckpointsAreStageScoped(t *testing.T) {
	_, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	analysis := &core.Checkpoint{Stage: core.StageAnalysis, RunId: uuid.NewString(), CompletedItems: []core.ID{1}}
	embedding := &core.Checkpoint{Stage: core.StageEmbedding, RunId: uuid.NewString(), CompletedItems: []core.ID{2, 3}}

	if err := cpRepo.SaveCheckpoint(ctx, analysis); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}
	if err := cpRepo.SaveCheckpoint(ctx, embedding); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	got, err := cpRepo.LoadCheckpoint(ctx, core.StageEmbedding)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if got.RunId != embedding.RunId {
		t.Errorf("Loaded wrong checkpoint: %s", got.RunId)
	}
}

func TestDeleteCheckpoint(t *testing.T) {
	_, cpRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	cp := &core.Checkpoint{Stage: core.StageAnalysis, RunId: uuid.NewString()}
	if err := cpRepo.SaveCheckpoint(ctx, cp); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	if err := cpRepo.DeleteCheckpoint(ctx, core.StageAnalysis); err != nil {
		t.Fatalf("Failed to delete checkpoint: %v", err)
	}

	got, err := cpRepo.LoadCheckpoint(ctx, core.StageAnalysis)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}
	if got != nil {
		t.Fatal("Expected nil after delete")
	}

	// Deleting a missing checkpoint is not an error
	if err := cpRepo.DeleteCheckpoint(ctx, core.StageAnalysis); err != nil {
		t.Fatalf("Delete of missing checkpoint should not error: %v", err)
	}
}
