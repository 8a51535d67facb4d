package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// jsonValue is a decoded JSON document that remembers member order.
type jsonValue struct {
	object  []jsonMember
	array   []*jsonValue
	scalar  string
	isObj   bool
	isArray bool
}

type jsonMember struct {
	key   string
	value *jsonValue
}

// CanonicalJSON re-encodes a JSON document with two-space indentation the
// way a browser's JSON.stringify(JSON.parse(text), null, 2) does:
//   - a repeated key keeps its first position and its last value
//   - integer-like keys come first in ascending order
//   - numbers are printed in their shortest round-trip form (8.0 is 8)
//   - strings are unescaped except for quotes, backslashes and control characters
func CanonicalJSON(text string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return "", err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("unexpected data after the JSON document")
	}

	var sb strings.Builder
	writeValue(&sb, value, 0)
	return sb.String(), nil
}

func decodeValue(dec *json.Decoder) (*jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return &jsonValue{scalar: quoteString(t)}, nil
	case json.Number:
		return &jsonValue{scalar: formatNumber(t)}, nil
	case bool:
		return &jsonValue{scalar: strconv.FormatBool(t)}, nil
	case nil:
		return &jsonValue{scalar: "null"}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (*jsonValue, error) {
	obj := &jsonValue{isObj: true}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			obj.object[i].value = value
			continue
		}
		index[key] = len(obj.object)
		obj.object = append(obj.object, jsonMember{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	sort.SliceStable(obj.object, func(i, j int) bool {
		a, aIdx := arrayIndex(obj.object[i].key)
		b, bIdx := arrayIndex(obj.object[j].key)
		if aIdx && bIdx {
			return a < b
		}
		return aIdx && !bIdx
	})
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*jsonValue, error) {
	arr := &jsonValue{isArray: true}
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.array = append(arr.array, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// arrayIndex reports whether key is a canonical unsigned integer below
// 2^32-1. Such keys are enumerated before the others.
func arrayIndex(key string) (uint64, bool) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == math.MaxUint32 || strconv.FormatUint(n, 10) != key {
		return 0, false
	}
	return n, true
}

func writeValue(sb *strings.Builder, v *jsonValue, depth int) {
	switch {
	case v.isObj:
		if len(v.object) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{\n")
		for i, m := range v.object {
			indent(sb, depth+1)
			sb.WriteString(quoteString(m.key))
			sb.WriteString(": ")
			writeValue(sb, m.value, depth+1)
			if i < len(v.object)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		indent(sb, depth)
		sb.WriteByte('}')
	case v.isArray:
		if len(v.array) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for i, item := range v.array {
			indent(sb, depth+1)
			writeValue(sb, item, depth+1)
			if i < len(v.array)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		indent(sb, depth)
		sb.WriteByte(']')
	default:
		sb.WriteString(v.scalar)
	}
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// formatNumber prints n as a double in the shortest form that reads back
// to the same value. Values out of the double range print as null.
func formatNumber(n json.Number) string {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "null"
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == 0 {
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// "d.ddde±x" gives the digits and the decimal exponent.
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(e, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(expPart)
	k := len(digits)
	point := exp + 1

	var out string
	switch {
	case k <= point && point <= 21:
		out = digits + strings.Repeat("0", point-k)
	case 0 < point && point <= 21:
		out = digits[:point] + "." + digits[point:]
	case -6 < point && point <= 0:
		out = "0." + strings.Repeat("0", -point) + digits
	default:
		expSign := "+"
		if point-1 < 0 {
			expSign = "-"
		}
		expAbs := point - 1
		if expAbs < 0 {
			expAbs = -expAbs
		}
		out = digits[:1]
		if k > 1 {
			out += "." + digits[1:]
		}
		out += "e" + expSign + strconv.Itoa(expAbs)
	}
	return sign + out
}
