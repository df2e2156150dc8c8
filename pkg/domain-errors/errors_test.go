package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CarriesCodeAndMessage(t *testing.T) {
	err := New(CodeInvalidInput, "title too short")
	require.Error(t, err)
	assert.Equal(t, "title too short", err.Error())
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestWrap_PreservesChain(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap(inner, CodeUnavailable, "fetch registry")

	require.Error(t, err)
	assert.Equal(t, "fetch registry: connection refused", err.Error())
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.ErrorIs(t, err, inner)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeTimeout, CodeOf(New(CodeTimeout, "node push timed out")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	// fmt wrapping keeps the code reachable
	wrapped := fmt.Errorf("outer: %w", New(CodeNotFound, "no such proposal"))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "no quorum", MessageOf(New(CodeConflict, "no quorum")))
	assert.Empty(t, MessageOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInvalidState, http.StatusConflict},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInvariantViolation, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.code))
		})
	}
}
