package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{code: CodeInvalidFormat, want: http.StatusBadRequest},
		{code: CodeInvalidInput, want: http.StatusUnprocessableEntity},
		{code: CodeNotFound, want: http.StatusNotFound},
		{code: CodeConflict, want: http.StatusConflict},
		{code: CodeTooManyRequest, want: http.StatusTooManyRequests},
		{code: CodeUnauthorized, want: http.StatusUnauthorized},
		{code: CodeForbidden, want: http.StatusForbidden},
		{code: CodeTimeout, want: http.StatusRequestTimeout},
		{code: CodeBadGateway, want: http.StatusBadGateway},
		{code: CodeServiceUnavailable, want: http.StatusServiceUnavailable},
		{code: CodeInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := &Error{code: tt.code}
			assert.Equal(t, tt.want, err.StatusCode())
		})
	}
}

func TestNewBusinessErr(t *testing.T) {
	sentinel := errors.New("code mismatch")

	err := NewBusinessErr(sentinel, "invalid or expired code", CodeUnauthorized)

	assert.ErrorIs(t, err, sentinel)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "invalid or expired code", gerr.Msg())
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, http.StatusUnauthorized, gerr.StatusCode())
}

func TestNewServer(t *testing.T) {
	cause := errors.New("connection reset")

	err := NewServer(cause)

	assert.ErrorIs(t, err, cause)
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, TypeServer, gerr.Type())
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.Equal(t, http.StatusInternalServerError, gerr.StatusCode())
}

func TestNewInvalidInput(t *testing.T) {
	t.Run("Fields", func(t *testing.T) {
		err := NewInvalidInput(nil, "email", "is required", "password", "is required")

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, map[string]string{"email": "is required", "password": "is required"}, gerr.Fields())
		assert.Equal(t, CodeInvalidInput, gerr.Code())
	})

	t.Run("OddPairs", func(t *testing.T) {
		err := NewInvalidInput(nil, "email")

		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, CodeInvalidFormat, gerr.Code())
	})
}

func TestNewInvalidFormat(t *testing.T) {
	var gerr *Error
	require.ErrorAs(t, NewInvalidFormat(), &gerr)
	assert.Equal(t, "Invalid request body", gerr.Msg())

	require.ErrorAs(t, NewInvalidFormat("unknown org slug acme"), &gerr)
	assert.Equal(t, "unknown org slug acme", gerr.Error())
	assert.Equal(t, http.StatusBadRequest, gerr.StatusCode())
}

func TestError_LogValue(t *testing.T) {
	err := NewBusinessErr(errors.New("smtp down"), "could not send code", CodeBadGateway)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)

	v := gerr.LogValue()
	got := map[string]string{}
	for _, a := range v.Group() {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{
		"type":  "ERROR_TYPE_BUSINESS",
		"code":  "ERROR_CODE_BAD_GATEWAY",
		"msg":   "could not send code",
		"cause": "smtp down",
	}, got)
}

func TestCode_UnknownFallsBackToInternal(t *testing.T) {
	c := Code(99)
	assert.Equal(t, "ERROR_CODE_INTERNAL", c.String())
	assert.Equal(t, http.StatusInternalServerError, (&Error{code: c}).StatusCode())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(42).String())
}
