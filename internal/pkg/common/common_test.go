package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationResult(t *testing.T) {
	r := NewValidationResult()
	assert.True(t, r.IsValid())

	r.Add("title", "Title is required", CodeRequired)
	inner := NewValidationResult()
	inner.Addf("region", CodeTooShort, "Region must be at least %d characters", 2)
	r.Merge("data[0]", inner)

	assert.False(t, r.IsValid())
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "data[0].region", r.Errors[1].Field)
	assert.Equal(t, "Region must be at least 2 characters", r.Errors[1].Message)
}

func TestNewNotFound(t *testing.T) {
	e := NewNotFound("External recipe", "52772")
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "External recipe not found with ID '52772'", e.Message)
	assert.Equal(t, "52772", e.Details["requested_id"])
	assert.Equal(t, "external recipe", e.Details["resource_type"])
}

func TestAsCustomError(t *testing.T) {
	base := NewBadRequest("bad", nil)
	wrapped := errors.Join(errors.New("context"), base)
	assert.Same(t, base, AsCustomError(wrapped))

	unknown := AsCustomError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, unknown.Status)
	assert.Equal(t, ErrCodeInternalError, unknown.Code)
}

func TestNewErrorResponse(t *testing.T) {
	r := NewValidationResult()
	r.Add("title", "Title is required", CodeRequired)
	resp := NewErrorResponse(NewValidationFailed(r))

	assert.True(t, resp.Error)
	assert.Equal(t, ErrCodeValidationFailed, resp.ErrorCode)
	assert.Equal(t, 422, resp.StatusCode)
	assert.Equal(t, 1, resp.ValidationErrorCount)
}

func TestParseJSONBytesRejectsTrailingData(t *testing.T) {
	var v map[string]any
	assert.NoError(t, ParseJSONBytes([]byte(`{"a":1}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"a":1} {"b":2}`), &v))

	var n any
	require.NoError(t, DecodeJSON(strings.NewReader(`[1, 2.5]`), &n))
	assert.Equal(t, json.Number("2.5"), n.([]any)[1])
}

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitNonEmpty(" a ,, b ,", ","))
	assert.Empty(t, SplitNonEmpty("   ", "\n"))
}

func TestRoundMS(t *testing.T) {
	assert.Equal(t, 10.13, RoundMS(10.126))
	assert.Equal(t, 0.0, RoundMS(0.001))
}
