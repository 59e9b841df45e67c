// response/result.go
package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Shape tags what a successful call returned, so callers branch once on a closed set
// instead of probing the payload for arrays or "data" fields.
type Shape int

const (
	// ShapeRaw is a non-JSON response; Result.Response holds the unread body.
	ShapeRaw Shape = iota
	// ShapeEmpty is a JSON response with an empty body or a JSON null.
	ShapeEmpty
	// ShapeObject is a JSON object.
	ShapeObject
	// ShapeArray is a bare JSON array.
	ShapeArray
	// ShapePaginated is an object carrying a "data" array next to "meta".
	ShapePaginated
	// ShapeScalar is a JSON string, number or boolean.
	ShapeScalar
)

func (s Shape) String() string {
	switch s {
	case ShapeRaw:
		return "raw"
	case ShapeEmpty:
		return "empty"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	case ShapePaginated:
		return "paginated"
	case ShapeScalar:
		return "scalar"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// ErrRawResponse is returned when decoding is attempted on a non-JSON result.
var ErrRawResponse = errors.New("response is not JSON")

// Result is the outcome of a successful call.
type Result struct {
	Shape Shape
	// Value is the unwrapped JSON value; numbers are json.Number.
	Value any
	// Data is Value re-encoded as JSON, ready to decode into typed structs.
	Data []byte
	// Response is the underlying HTTP response. For ShapeRaw its body is unread and the
	// caller must close it; for every other shape the body has been consumed and closed.
	Response *http.Response
}

// Decode unmarshals the unwrapped payload into out.
func (r *Result) Decode(out any) error {
	if r == nil || r.Shape == ShapeRaw {
		return ErrRawResponse
	}
	if r.Shape == ShapeEmpty || out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("decoding %s payload: %w", r.Shape, err)
	}
	return nil
}

// PageMeta is the pagination block the API attaches to list responses.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is a list result. Meta is nil when the server returned a bare array.
type Page[T any] struct {
	Items []T
	Meta  *PageMeta
}

// DecodePage decodes either a bare JSON array or a {"data": [...], "meta": {...}}
// envelope into a Page.
func DecodePage[T any](r *Result) (Page[T], error) {
	var page Page[T]
	if r == nil {
		return page, ErrRawResponse
	}
	switch r.Shape {
	case ShapeEmpty:
		return page, nil
	case ShapeArray:
		err := r.Decode(&page.Items)
		return page, err
	case ShapePaginated, ShapeObject:
		var envelope struct {
			Data []T      `json:"data"`
			Meta PageMeta `json:"meta"`
		}
		if err := r.Decode(&envelope); err != nil {
			return page, err
		}
		page.Items = envelope.Data
		if r.Shape == ShapePaginated {
			meta := envelope.Meta
			page.Meta = &meta
		}
		return page, nil
	case ShapeRaw:
		return page, ErrRawResponse
	default:
		return page, fmt.Errorf("cannot decode %s payload as a page", r.Shape)
	}
}

// classify derives the Shape of an unwrapped JSON value.
func classify(v any) Shape {
	switch t := v.(type) {
	case nil:
		return ShapeEmpty
	case []any:
		return ShapeArray
	case map[string]any:
		if _, isList := t["data"].([]any); isList {
			if _, hasMeta := t["meta"]; hasMeta {
				return ShapePaginated
			}
		}
		return ShapeObject
	default:
		return ShapeScalar
	}
}
