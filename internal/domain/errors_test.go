package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessError(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		resource string
		err      error
		wantMsg  string
	}{
		{
			name:     "forbidden classroom",
			userID:   "42",
			resource: "classroom/7",
			err:      ErrForbidden,
			wantMsg:  "user 42 on classroom/7: forbidden",
		},
		{
			name:     "anonymous caller",
			userID:   "",
			resource: "leaderboard",
			err:      ErrUnauthenticated,
			wantMsg:  "leaderboard: unauthenticated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &AccessError{UserID: tt.userID, Resource: tt.resource, Err: tt.err}

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Classroom")
		err.AddError("name is required")

		assert.Equal(t, "invalid Classroom: name is required", err.Error())
		assert.True(t, err.HasErrors())
		assert.Len(t, err.Errors, 1)
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("AnalyzeRequest")
		err.AddError("image_id is required")
		err.AddError("classroom_id is required")

		assert.Equal(t, "invalid AnalyzeRequest: image_id is required; classroom_id is required", err.Error())
		assert.Len(t, err.Errors, 2)
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Empty")
		assert.False(t, err.HasErrors())
	})

	t.Run("matches invalid input", func(t *testing.T) {
		err := NewValidationError("Period")
		err.AddError("unknown period")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
