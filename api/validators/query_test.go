package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&big=500", nil)

	v, err := ParseQueryInt(req, "page", 1, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = ParseQueryInt(req, "limit", 10, 1, 100)
	assert.Equal(t, []string{"limit must be an integer"}, details(t, err))

	_, err = ParseQueryInt(req, "big", 10, 1, 100)
	assert.Equal(t, []string{"big must be between 1 and 100"}, details(t, err))
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minPrice=10.50&maxPrice=-1&bad=x", nil)

	v, err := ParseQueryDecimal(req, "minPrice")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "10.5", v.String())

	v, err = ParseQueryDecimal(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseQueryDecimal(req, "maxPrice")
	assert.Error(t, err)
	_, err = ParseQueryDecimal(req, "bad")
	assert.Error(t, err)
}

func TestParseQueryEnum(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?sortOrder=DESC&sortBy=color", nil)

	order, err := ParseQueryEnum(req, "sortOrder", enums.ParseSortOrder, enums.SortOrderNames())
	require.NoError(t, err)
	assert.Equal(t, enums.SortDesc, order)

	_, err = ParseQueryEnum(req, "sortBy", enums.ParseProductSortField, []string{"name", "price"})
	assert.Equal(t, []string{"sortBy must be one of: name, price"}, details(t, err))

	status, err := ParseQueryEnum(req, "stockStatus", enums.ParseStockStatus, enums.StockStatusNames())
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestParseQueryList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?categories=%20Books,,Games%20,", nil)
	assert.Equal(t, []string{"Books", "Games"}, ParseQueryList(req, "categories", 50))
	assert.Nil(t, ParseQueryList(req, "absent", 50))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "héll", SanitizeString("  héllo ", 4))
	assert.Nil(t, OptionalString("   ", 10))
	assert.Equal(t, "x", *OptionalString(" x ", 10))
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = BearerToken("bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, bad := range []string{"", "Bearer", "Bearer   ", "Basic abc", "abc"} {
		_, err := BearerToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken, bad)
	}
}
