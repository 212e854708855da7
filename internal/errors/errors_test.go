package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsType_Wrapped(t *testing.T) {
	base := NewAnalysisFailureError("failed to analyze images", context.Canceled)
	wrapped := fmt.Errorf("run: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeAnalysisFailure))
	assert.False(t, IsType(wrapped, ErrorTypeNavigationPrecondition))
	assert.ErrorIs(t, wrapped, context.Canceled)
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"precondition", NewNavigationPreconditionError("need files", nil), http.StatusSeeOther},
		{"analysis failure", NewAnalysisFailureError("boom", nil), http.StatusBadGateway},
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"plain error", fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetStatusCode(tt.err))
		})
	}
}

func TestAppError_Message(t *testing.T) {
	err := NewAnalysisFailureError("failed to analyze images", fmt.Errorf("status 500"))
	assert.Equal(t, "analysis_failure: failed to analyze images (caused by: status 500)", err.Error())

	err = NewValidationError("no files", nil)
	assert.Equal(t, "validation: no files", err.Error())
}
