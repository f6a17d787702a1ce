package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransientWrapsAndUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := Transient(inner)

	assert.True(t, IsTransient(err))
	assert.False(t, IsValidation(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationWrapsAndUnwraps(t *testing.T) {
	inner := errors.New("missing purpose field")
	err := Validation(inner)

	assert.True(t, IsValidation(err))
	assert.False(t, IsTransient(err))
	assert.ErrorIs(t, err, inner)
}

func TestClassificationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("analyzing item: %w", Transient(errors.New("timeout")))

	assert.True(t, IsTransient(err))
	assert.False(t, IsValidation(err))
}

func TestNilErrorsStayNil(t *testing.T) {
	assert.Nil(t, Transient(nil))
	assert.Nil(t, Validation(nil))
	assert.False(t, IsTransient(nil))
	assert.False(t, IsValidation(nil))
}
