package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type jsonKind int

const (
	kindNull jsonKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// jsonValue is a decoded JSON document that keeps object keys in first-seen
// order. A repeated key keeps its first position and its last value.
type jsonValue struct {
	kind   jsonKind
	b      bool
	num    float64
	str    string
	items  []*jsonValue
	keys   []string
	fields map[string]*jsonValue
}

func decodeJSON(body []byte) (*jsonValue, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return &jsonValue{kind: kindNull}, nil
	case bool:
		return &jsonValue{kind: kindBool, b: t}, nil
	case string:
		return &jsonValue{kind: kindString, str: t}, nil
	case json.Number:
		// Out-of-range numbers become ±Inf, which render as null.
		f, _ := strconv.ParseFloat(t.String(), 64)
		return &jsonValue{kind: kindNumber, num: f}, nil
	case json.Delim:
		switch t {
		case '[':
			v := &jsonValue{kind: kindArray}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, item)
			}
			_, err := dec.Token()
			return v, err
		case '{':
			v := &jsonValue{kind: kindObject, fields: map[string]*jsonValue{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, seen := v.fields[key]; !seen {
					v.keys = append(v.keys, key)
				}
				v.fields[key] = child
			}
			_, err := dec.Token()
			return v, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// truthy follows JavaScript truthiness.
func (v *jsonValue) truthy() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case kindString:
		return v.str != ""
	case kindArray, kindObject:
		return true
	}
	return false
}

// text renders a scalar the way it reads on screen: strings unquoted,
// numbers in shortest form.
func (v *jsonValue) text() string {
	switch v.kind {
	case kindString:
		return v.str
	case kindBool:
		return strconv.FormatBool(v.b)
	case kindNumber:
		return formatNumber(v.num)
	}
	return v.indent()
}

// indent renders v with two-space indentation, normalising numbers.
func (v *jsonValue) indent() string {
	var sb strings.Builder
	v.write(&sb, "")
	return sb.String()
}

func (v *jsonValue) write(sb *strings.Builder, prefix string) {
	switch v.kind {
	case kindNull:
		sb.WriteString("null")
	case kindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case kindNumber:
		sb.WriteString(formatNumber(v.num))
	case kindString:
		sb.WriteString(quote(v.str))
	case kindArray:
		if len(v.items) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteString("[\n")
		for i, item := range v.items {
			sb.WriteString(prefix + "  ")
			item.write(sb, prefix+"  ")
			if i < len(v.items)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(prefix + "]")
	case kindObject:
		if len(v.keys) == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteString("{\n")
		for i, k := range v.keys {
			sb.WriteString(prefix + "  " + quote(k) + ": ")
			v.fields[k].write(sb, prefix+"  ")
			if i < len(v.keys)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(prefix + "}")
	}
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// formatNumber prints f like JavaScript's Number#toString: integers without a
// fraction, exponent form outside [1e-6, 1e21), non-finite values as null.
func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
