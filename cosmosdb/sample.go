package cosmosdb

import (
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/Abraxas-365/cosmosloader/datasource"
)

// canonicalJSON sorts object keys and leaves HTML characters alone so that
// serialized samples are stable and byte-for-byte readable.
var canonicalJSON = jsoniter.Config{
	SortMapKeys:            true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// SampleKind tags the shape of a value produced by the filter expression
type SampleKind int

// Sample kinds
const (
	KindNull SampleKind = iota
	KindString
	KindObject
	// KindScalar covers numbers, booleans and arrays
	KindScalar
)

func (k SampleKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindScalar:
		return "scalar"
	}
	return fmt.Sprintf("SampleKind(%d)", int(k))
}

// Sample is one value produced by evaluating the filter against an item
type Sample struct {
	kind  SampleKind
	value interface{}
}

// NewSample classifies v
func NewSample(v interface{}) Sample {
	switch v.(type) {
	case nil:
		return Sample{kind: KindNull}
	case string:
		return Sample{kind: KindString, value: v}
	case map[string]interface{}:
		return Sample{kind: KindObject, value: v}
	default:
		return Sample{kind: KindScalar, value: v}
	}
}

// Kind returns the sample's tag
func (s Sample) Kind() SampleKind {
	return s.kind
}

// Value returns the underlying value
func (s Sample) Value() interface{} {
	return s.value
}

// Text converts the sample into page content.
// In text mode only strings are accepted.
func (s Sample) Text(textContent bool) (string, error) {
	if textContent && s.kind != KindString {
		return "", datasource.NewDataSourceError(sourceName, "Text", nil, datasource.ErrCodeTypeMismatch,
			fmt.Sprintf("expected page_content to be a string, got %s (%T) instead; "+
				"set TextContent to false if the desired page_content is not a string", s.kind, s.value))
	}

	switch s.kind {
	case KindString:
		return s.value.(string), nil
	case KindObject:
		if len(s.value.(map[string]interface{})) == 0 {
			return "", nil
		}
		return marshalText(s.value)
	case KindScalar:
		return marshalText(s.value)
	default:
		return "", nil
	}
}

func marshalText(v interface{}) (string, error) {
	raw, err := canonicalJSON.Marshal(finiteNumbers(v))
	if err != nil {
		return "", datasource.NewDataSourceError(sourceName, "Text", err, datasource.ErrCodeInvalidFormat,
			fmt.Sprintf("failed to serialize %T sample", v))
	}
	return string(raw), nil
}

// finiteNumbers rewrites non-finite floats the way jq prints them: infinities
// clamp to the largest float64 and NaN becomes null.
func finiteNumbers(v interface{}) interface{} {
	switch v := v.(type) {
	case float64:
		switch {
		case math.IsNaN(v):
			return nil
		case math.IsInf(v, 1):
			return math.MaxFloat64
		case math.IsInf(v, -1):
			return -math.MaxFloat64
		}
		return v
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = finiteNumbers(x)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, x := range v {
			out[k] = finiteNumbers(x)
		}
		return out
	}
	return v
}
