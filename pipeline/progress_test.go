package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, "analysis", 10, 5)
	tracker.Start()

	for i := 0; i < 4; i++ {
		tracker.Succeeded()
	}
	assert.Empty(t, buf.String(), "no report before interval")

	tracker.Succeeded()
	assert.Contains(t, buf.String(), "analysis: 5/10")
}

func TestProgressTracker_CountsAllOutcomes(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, "embedding", 3, 1)
	tracker.Start()

	tracker.Succeeded()
	tracker.Failed()
	tracker.Skipped()
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "ok=1")
	assert.Contains(t, out, "failed=1")
	assert.Contains(t, out, "skipped=1")
	assert.Contains(t, out, "3/3 (100.0%)")
}

func TestProgressTracker_NoOutputBeforeStart(t *testing.T) {
	var buf strings.Builder
	tracker := NewProgressTracker(&buf, "analysis", 10, 1)

	tracker.Succeeded()
	tracker.Finish()
	assert.Empty(t, buf.String())
}
