package communities

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nitty-hq/server/internal/api/pagination"
)

func TestParseFiltersDefaults(t *testing.T) {
	filters, page, err := ParseFilters(url.Values{})

	require.NoError(t, err)
	require.Nil(t, filters.IsPublic)
	require.Nil(t, filters.IsActive)
	require.Empty(t, filters.Query)
	require.Equal(t, 0, page.Skip)
	require.Equal(t, pagination.DefaultLimit, page.Limit)
}

func TestParseFiltersBooleans(t *testing.T) {
	values := url.Values{}
	values.Set("is_public", "true")
	values.Set("is_active", "false")

	filters, _, err := ParseFilters(values)

	require.NoError(t, err)
	require.NotNil(t, filters.IsPublic)
	require.True(t, *filters.IsPublic)
	require.NotNil(t, filters.IsActive)
	require.False(t, *filters.IsActive)
}

func TestParseFiltersInvalidBoolean(t *testing.T) {
	values := url.Values{}
	values.Set("is_public", "maybe")

	_, _, err := ParseFilters(values)

	var fieldErr FilterError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "is_public", fieldErr.Field)
}

func TestParseFiltersQueryTrimmed(t *testing.T) {
	values := url.Values{}
	values.Set("q", "  gophers ")

	filters, _, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, "gophers", filters.Query)
}

func TestParseFiltersPagination(t *testing.T) {
	values := url.Values{}
	values.Set("skip", "10")
	values.Set("limit", "2000")

	_, page, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, 10, page.Skip)
	require.Equal(t, pagination.MaxLimit, page.Limit)

	values.Set("skip", "-2")
	_, _, err = ParseFilters(values)
	require.Error(t, err)
}
