package flow

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which variant a Data holds.
type Kind int

const (
	KindNone Kind = iota
	KindError
	KindString
	KindStringArray
	KindInt
	KindIntArray
	KindJSON
)

var kindNames = map[Kind]string{
	KindNone:        "None",
	KindError:       "Error",
	KindString:      "String",
	KindStringArray: "StringArray",
	KindInt:         "Int",
	KindIntArray:    "IntArray",
	KindJSON:        "Json",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Data is the value produced by a node pull.
// The zero value is None.
type Data struct {
	kind    Kind
	text    string
	strings []string
	num     int64
	nums    []int64
	json    any
}

// None returns the empty value.
func None() Data { return Data{} }

// Error returns a data-flow failure carrying msg.
func Error(msg string) Data { return Data{kind: KindError, text: msg} }

// Errorf formats a data-flow failure.
func Errorf(format string, args ...any) Data { return Error(fmt.Sprintf(format, args...)) }

// String wraps a text value.
func String(s string) Data { return Data{kind: KindString, text: s} }

// StringArray wraps an ordered sequence of strings. A nil slice is stored as empty.
func StringArray(values []string) Data {
	if values == nil {
		values = []string{}
	}
	return Data{kind: KindStringArray, strings: values}
}

// Int wraps an integer.
func Int(n int64) Data { return Data{kind: KindInt, num: n} }

// IntArray wraps an ordered sequence of integers. A nil slice is stored as empty.
func IntArray(values []int64) Data {
	if values == nil {
		values = []int64{}
	}
	return Data{kind: KindIntArray, nums: values}
}

// JSON wraps a structured value as produced by ParseJSON.
func JSON(v any) Data { return Data{kind: KindJSON, json: v} }

// Kind reports the variant held by d.
func (d Data) Kind() Kind { return d.kind }

// IsNone reports whether d is None.
func (d Data) IsNone() bool { return d.kind == KindNone }

// IsError reports whether d is an Error.
func (d Data) IsError() bool { return d.kind == KindError }

// ErrorMessage returns the message of an Error value.
func (d Data) ErrorMessage() (string, bool) {
	return d.text, d.kind == KindError
}

// AsString returns the text of a String value.
func (d Data) AsString() (string, bool) {
	return d.text, d.kind == KindString
}

// AsStringArray returns the elements of a StringArray value.
func (d Data) AsStringArray() ([]string, bool) {
	return d.strings, d.kind == KindStringArray
}

// AsInt returns the integer of an Int value.
func (d Data) AsInt() (int64, bool) {
	return d.num, d.kind == KindInt
}

// AsIntArray returns the elements of an IntArray value.
func (d Data) AsIntArray() ([]int64, bool) {
	return d.nums, d.kind == KindIntArray
}

// AsJSON returns the structured value of a Json value.
func (d Data) AsJSON() (any, bool) {
	return d.json, d.kind == KindJSON
}

// String renders the debug representation, e.g. Int(6) or StringArray(["a", "b"]).
func (d Data) String() string {
	switch d.kind {
	case KindNone:
		return "None"
	case KindError:
		return "Error(" + strconv.Quote(d.text) + ")"
	case KindString:
		return "String(" + strconv.Quote(d.text) + ")"
	case KindStringArray:
		quoted := make([]string, len(d.strings))
		for i, s := range d.strings {
			quoted[i] = strconv.Quote(s)
		}
		return "StringArray([" + strings.Join(quoted, ", ") + "])"
	case KindInt:
		return "Int(" + strconv.FormatInt(d.num, 10) + ")"
	case KindIntArray:
		parts := make([]string, len(d.nums))
		for i, n := range d.nums {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return "IntArray([" + strings.Join(parts, ", ") + "])"
	case KindJSON:
		text, err := StringifyJSON(d.json)
		if err != nil {
			return "Json(<invalid>)"
		}
		return "Json(" + text + ")"
	default:
		return d.kind.String()
	}
}
