package gateway

import (
	"bytes"
	"encoding/json"
)

// Shape is the envelope a collection response arrived in.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeBare
	ShapeData
	ShapeNamed
)

func (s Shape) String() string {
	switch s {
	case ShapeBare:
		return "bare"
	case ShapeData:
		return "data"
	case ShapeNamed:
		return "named"
	default:
		return "empty"
	}
}

// Classify finds the array in body, checking a bare array, then .data, then
// the first of names that holds an array. It returns ShapeEmpty and nil when
// none match.
func Classify(body []byte, names ...string) (Shape, []json.RawMessage) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ShapeEmpty, nil
	}

	var arr []json.RawMessage
	if body[0] == '[' {
		if json.Unmarshal(body, &arr) == nil {
			return ShapeBare, arr
		}
		return ShapeEmpty, nil
	}
	if body[0] != '{' {
		return ShapeEmpty, nil
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return ShapeEmpty, nil
	}
	if raw, ok := obj["data"]; ok && isArray(raw) {
		if json.Unmarshal(raw, &arr) == nil {
			return ShapeData, arr
		}
	}
	for _, name := range names {
		raw, ok := obj[name]
		if !ok || !isArray(raw) {
			continue
		}
		if json.Unmarshal(raw, &arr) == nil {
			return ShapeNamed, arr
		}
	}
	return ShapeEmpty, nil
}

// DecodeCollection extracts a list of T from any of the collection shapes the
// backend uses. Elements that do not decode are skipped; the result is never nil.
func DecodeCollection[T any](body []byte, names ...string) []T {
	_, raws := Classify(body, names...)
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DecodeObject decodes a single object, unwrapping one .data layer or, failing
// that, the first of names present as an object.
func DecodeObject[T any](body []byte, names ...string) (T, error) {
	var zero T
	body = bytes.TrimSpace(body)

	var obj map[string]json.RawMessage
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &obj) == nil {
		if raw, ok := obj["data"]; ok && isObject(raw) {
			body = raw
		} else {
			for _, name := range names {
				if raw, ok := obj[name]; ok && isObject(raw) {
					body = raw
					break
				}
			}
		}
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, ErrMalformed
	}
	return v, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
