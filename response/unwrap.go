// response/unwrap.go
package response

// DefaultUnwrapDepth is the number of "data" envelopes peeled off a JSON payload.
const DefaultUnwrapDepth = 2

// Unwrapper strips server-side envelopes from a decoded JSON value.
type Unwrapper interface {
	Unwrap(v any) any
}

// DataUnwrapper peels up to MaxDepth levels of {"<Key>": ...} envelopes.
//
// A level is only peeled when the value is a JSON object that has Key and none of
// StopKeys. An object such as {"data": [...], "meta": {...}} is therefore returned
// intact, keeping pagination metadata next to the items it describes.
type DataUnwrapper struct {
	MaxDepth int
	Key      string
	StopKeys []string
}

// DefaultUnwrapper peels at most two "data" levels and stops at "meta".
var DefaultUnwrapper Unwrapper = DataUnwrapper{
	MaxDepth: DefaultUnwrapDepth,
	Key:      "data",
	StopKeys: []string{"meta"},
}

// NewDataUnwrapper returns the default unwrapper with a different depth. A depth of
// zero disables unwrapping.
func NewDataUnwrapper(depth int) DataUnwrapper {
	return DataUnwrapper{MaxDepth: depth, Key: "data", StopKeys: []string{"meta"}}
}

// Unwrap implements Unwrapper.
func (u DataUnwrapper) Unwrap(v any) any {
	key := u.Key
	if key == "" {
		key = "data"
	}
	for i := 0; i < u.MaxDepth; i++ {
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}
		inner, ok := obj[key]
		if !ok || u.stops(obj) {
			return v
		}
		v = inner
	}
	return v
}

func (u DataUnwrapper) stops(obj map[string]any) bool {
	for _, k := range u.StopKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

// NoUnwrap returns payloads exactly as the server sent them.
type NoUnwrap struct{}

// Unwrap implements Unwrapper.
func (NoUnwrap) Unwrap(v any) any { return v }
