package registrations

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int
		expected Pagination
	}{
		{
			name:  "first of three pages",
			page:  1,
			limit: 10,
			total: 25,
			expected: Pagination{
				CurrentPage: 1, TotalPages: 3, TotalCount: 25,
				HasNext: true, HasPrev: false,
			},
		},
		{
			name:  "last partial page",
			page:  3,
			limit: 10,
			total: 25,
			expected: Pagination{
				CurrentPage: 3, TotalPages: 3, TotalCount: 25,
				HasNext: false, HasPrev: true,
			},
		},
		{
			name:  "middle page",
			page:  2,
			limit: 10,
			total: 25,
			expected: Pagination{
				CurrentPage: 2, TotalPages: 3, TotalCount: 25,
				HasNext: true, HasPrev: true,
			},
		},
		{
			name:  "no rows",
			page:  1,
			limit: 10,
			total: 0,
			expected: Pagination{
				CurrentPage: 1, TotalPages: 0, TotalCount: 0,
				HasNext: false, HasPrev: false,
			},
		},
		{
			name:  "exact multiple",
			page:  2,
			limit: 10,
			total: 20,
			expected: Pagination{
				CurrentPage: 2, TotalPages: 2, TotalCount: 20,
				HasNext: false, HasPrev: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewPagination(tt.page, tt.limit, tt.total))
		})
	}
}

func listContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/registrations?"+rawQuery, nil)
	return c
}

func TestParseListParamsDefaults(t *testing.T) {
	params, err := parseListParams(listContext(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "", params.Search)
	assert.Equal(t, "all", params.Coupon)
	assert.Nil(t, params.From)
	assert.Nil(t, params.To)
}

func TestParseListParamsClamping(t *testing.T) {
	params, err := parseListParams(listContext(t, "page=0&limit=500"))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.Limit)

	params, err = parseListParams(listContext(t, "page=-2&limit=0"))
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 1, params.Limit)
}

func TestParseListParamsDateRange(t *testing.T) {
	params, err := parseListParams(listContext(t, "fromDate=2025-12-01&toDate=2025-12-20"))
	require.NoError(t, err)

	require.NotNil(t, params.From)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), *params.From)

	// The end date covers its whole day so the range stays inclusive.
	require.NotNil(t, params.To)
	to := *params.To
	assert.Equal(t, 2025, to.Year())
	assert.Equal(t, time.December, to.Month())
	assert.Equal(t, 20, to.Day())
	assert.Equal(t, 23, to.Hour())
	assert.Equal(t, 59, to.Minute())
	assert.Equal(t, 59, to.Second())
	assert.True(t, to.Before(time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC)))
}

func TestParseListParamsBadDate(t *testing.T) {
	_, err := parseListParams(listContext(t, "fromDate=20-12-2025"))
	assert.Error(t, err)

	_, err = parseListParams(listContext(t, "toDate=notadate"))
	assert.Error(t, err)
}
