package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	err := NewSchemaError([]string{"location", "date"})
	assert.Equal(t, "missing required column(s): date, location", err.Error())

	var target *SchemaError
	require.True(t, errors.As(fmt.Errorf("clean: %w", err), &target))
	assert.ElementsMatch(t, []string{"location", "date"}, target.Missing)
}

func TestCollaboratorErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &CollaboratorError{Op: "generateContent", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "generateContent")
}

func TestFromPipeline(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "schema error",
			err:        fmt.Errorf("clean: %w", NewSchemaError([]string{"location"})),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "SCHEMA_ERROR",
		},
		{
			name:       "invalid dates under strict policy",
			err:        &InvalidDatesError{Rows: 3},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_DATES",
		},
		{
			name:       "empty dataset",
			err:        ErrEmptyDataset,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "EMPTY_DATASET",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromPipeline(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
