package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation with fields",
			err:        Validation("invalid payment link request", map[string]string{"amount": "must be greater than 0"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "invalid payment link request",
		},
		{
			name:       "configuration",
			err:        Configuration("missing processor access token"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "CONFIGURATION_ERROR",
			wantMsg:    "missing processor access token",
		},
		{
			name:       "upstream wrapped twice",
			err:        fmt.Errorf("create link: %w", Upstream("preference request failed", context.DeadlineExceeded)),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_ERROR",
			wantMsg:    "preference request failed",
		},
		{
			name:       "store hides cause",
			err:        Store("put link", errors.New("dial tcp: refused")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "STORE_ERROR",
			wantMsg:    "record store unavailable",
		},
		{
			name:       "not found",
			err:        NotFound("abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "payment link abc not found",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestErrorUnwrapsKindAndCause(t *testing.T) {
	err := Upstream("payment lookup failed", context.DeadlineExceeded)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "payment lookup failed")
}
