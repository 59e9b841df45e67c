package rxapi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/go-querystring/query"
)

// FiltersToQuery turns loose filter values into query parameters. Nil values, nil
// string/int/bool pointers and empty strings are skipped; zero numbers are kept.
func FiltersToQuery(filters map[string]any) url.Values {
	values := url.Values{}
	for key, value := range filters {
		if s, ok := formatFilter(value); ok {
			values.Set(key, s)
		}
	}
	return values
}

// PaginationQuery builds the query string for a page request. page and limit are always
// present; extra values follow the FiltersToQuery rules and may override them.
func PaginationQuery(page, limit int, extra map[string]any) string {
	values := FiltersToQuery(extra)
	if !values.Has("page") {
		values.Set("page", strconv.Itoa(page))
	}
	if !values.Has("limit") {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values.Encode()
}

// withQuery appends the `url`-tagged fields of filters to endpoint.
func withQuery(endpoint string, filters any) (string, error) {
	values, err := query.Values(filters)
	if err != nil {
		return "", fmt.Errorf("encoding query for %s: %w", endpoint, err)
	}
	if len(values) == 0 {
		return endpoint, nil
	}
	return endpoint + "?" + values.Encode(), nil
}

func formatFilter(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case *string:
		if v == nil {
			return "", false
		}
		return formatFilter(*v)
	case *int:
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	case *bool:
		if v == nil {
			return "", false
		}
		return strconv.FormatBool(*v), true
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	default:
		s := fmt.Sprint(v)
		return s, s != ""
	}
}
