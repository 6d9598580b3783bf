package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the parsed comparison value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueList
)

// Value is the comparison operand of a rule, decoded once when the rule
// configuration is loaded. Stored rule values are JSON text; anything that
// fails to decode is kept as a raw string.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueList:
		return fmt.Sprintf("%v", v.List)
	default:
		return v.Str
	}
}

// ParseValue decodes a stored rule value. JSON strings, numbers, booleans and
// arrays map to the corresponding kinds; arrays are flattened to their string
// forms. Invalid JSON falls back to the raw text as a string.
func ParseValue(raw string) Value {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Value{Kind: ValueString, Str: raw}
	}

	switch v := decoded.(type) {
	case string:
		return Value{Kind: ValueString, Str: v}
	case float64:
		return Value{Kind: ValueNumber, Num: v}
	case bool:
		return Value{Kind: ValueBool, Bool: v}
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			switch e := item.(type) {
			case string:
				items = append(items, e)
			case float64:
				items = append(items, strconv.FormatFloat(e, 'g', -1, 64))
			case bool:
				items = append(items, strconv.FormatBool(e))
			default:
				items = append(items, fmt.Sprintf("%v", e))
			}
		}
		return Value{Kind: ValueList, List: items}
	default:
		// null and objects have no comparison semantics
		return Value{Kind: ValueString, Str: raw}
	}
}
