package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers key insertion order.
type Object = orderedmap.OrderedMap[string, any]

// ErrInvalidJSON is returned by ParseJSON for malformed documents.
var ErrInvalidJSON = errors.New("invalid json")

// NewObject returns an empty ordered JSON object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ParseJSON decodes text into a tree of *Object, []any, string, json.Number,
// bool and nil. Object keys keep their document order.
func ParseJSON(text []byte) (any, error) {
	if !json.Valid(text) {
		return nil, ErrInvalidJSON
	}
	value, dataType, _, err := jsonparser.Get(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(raw, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			v, err := decodeValue(value, vt)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil
	case jsonparser.Array:
		items := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if inner != nil {
				return
			}
			v, err := decodeValue(value, vt)
			if err != nil {
				inner = err
				return
			}
			items = append(items, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return items, nil
	case jsonparser.String:
		return jsonparser.ParseString(raw)
	case jsonparser.Number:
		return json.Number(string(raw)), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrInvalidJSON, raw)
	}
}

// StringifyJSON encodes v compactly, preserving object key order. HTML
// characters are written as is at every depth.
func StringifyJSON(v any) (string, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeJSON walks objects and arrays itself so nested keys and values go
// through the same non-escaping encoder as scalars.
func writeJSON(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			if pair != val.Oldest() {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, pair.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, v)
	}
}

func writeScalar(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Keys returns the keys of a JSON object in order.
// Values that are not objects have no keys.
func Keys(v any) []string {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return []string{}
	}
	keys := make([]string, 0, obj.Len())
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
