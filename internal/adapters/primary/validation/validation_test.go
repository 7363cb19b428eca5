package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

func TestValidator_Chain(t *testing.T) {
	v := NewValidator().
		Required("title", "  ").
		MaxLength("location", strings.Repeat("ก", 5), 5).
		MaxLength("department", "toolong", 3).
		Phone("phone", "081-234-5678").
		Phone("backup_phone", "call me").
		Month("month", "2024-13").
		OneOf("priority", "urgent", []string{"low", "medium", "high"}).
		Custom("requester", true, "unused")

	require.True(t, v.HasErrors())
	errs := v.Errors().Errors
	assert.Contains(t, errs, "title")
	assert.NotContains(t, errs, "location", "length is counted in characters")
	assert.Contains(t, errs, "department")
	assert.NotContains(t, errs, "phone")
	assert.Contains(t, errs, "backup_phone")
	assert.Contains(t, errs, "month")
	assert.Contains(t, errs, "priority")
	assert.NotContains(t, errs, "requester")
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"monthly"}`))
	got, err := DecodeAndValidate[body](httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "monthly", got.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	_, err = DecodeAndValidate[body](httptest.NewRecorder(), req)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 25, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=-1&offset=-5", 25, 0},
		{"limit=500", 100, 0},
		{"limit=abc", 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			p := ParsePagination(req, 100)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestParseTimeQueryParam(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*60*60)
	req := httptest.NewRequest(http.MethodGet, "/?start=2024-01-15&end=2024-02-01T10:00:00Z&bad=15/01/2024", nil)
	v := NewValidator()

	start := ParseTimeQueryParam(req, "start", bangkok, v)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, bangkok), *start)

	end := ParseTimeQueryParam(req, "end", bangkok, v)
	require.NotNil(t, end)
	assert.True(t, end.Equal(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)))

	assert.Nil(t, ParseTimeQueryParam(req, "missing", bangkok, v))
	assert.False(t, v.HasErrors())

	assert.Nil(t, ParseTimeQueryParam(req, "bad", bangkok, v))
	assert.Contains(t, v.Errors().Errors, "bad")
}

func TestParseStringQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?department=%20IT%20&empty=", nil)

	got := ParseStringQueryParam(req, "department")
	require.NotNil(t, got)
	assert.Equal(t, "IT", *got)
	assert.Nil(t, ParseStringQueryParam(req, "empty"))
}

func TestParseEndTimeQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?to=2024-01-31&exact=2024-01-31T08:00:00Z", nil)
	v := NewValidator()

	to := ParseEndTimeQueryParam(req, "to", time.UTC, v)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *to)

	exact := ParseEndTimeQueryParam(req, "exact", time.UTC, v)
	require.NotNil(t, exact)
	assert.Equal(t, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), exact.UTC())
	assert.False(t, v.HasErrors())
}
