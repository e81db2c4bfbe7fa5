package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	page, err := Parse(url.Values{})
	require.NoError(t, err)
	require.Equal(t, 0, page.Skip)
	require.Equal(t, DefaultLimit, page.Limit)
}

func TestParseExplicitValues(t *testing.T) {
	values := url.Values{}
	values.Set("skip", "40")
	values.Set("limit", "20")

	page, err := Parse(values)
	require.NoError(t, err)
	require.Equal(t, 40, page.Skip)
	require.Equal(t, 20, page.Limit)
}

func TestParseNegativeSkip(t *testing.T) {
	values := url.Values{}
	values.Set("skip", "-1")

	_, err := Parse(values)
	var fieldErr FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "skip", fieldErr.Field)
}

func TestParseNonNumeric(t *testing.T) {
	for _, field := range []string{"skip", "limit"} {
		values := url.Values{}
		values.Set(field, "ten")

		_, err := Parse(values)
		var fieldErr FieldError
		require.ErrorAs(t, err, &fieldErr)
		require.Equal(t, field, fieldErr.Field)
	}
}

func TestLimitClamping(t *testing.T) {
	require.Equal(t, 1000, New(0, 5000).Limit)
	require.Equal(t, DefaultLimit, New(0, 0).Limit)
	require.Equal(t, 1, New(0, -5).Limit)
	require.Equal(t, 1, New(0, 1).Limit)
	require.Equal(t, 1000, New(0, 1000).Limit)
	require.Equal(t, 0, New(-3, 10).Skip)
}

func TestParseClampsLimit(t *testing.T) {
	values := url.Values{}
	values.Set("limit", "99999")

	page, err := Parse(values)
	require.NoError(t, err)
	require.Equal(t, MaxLimit, page.Limit)
}
