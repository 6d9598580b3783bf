// Package rules implements deterministic scoring rule evaluation against a
// lead snapshot. Evaluation never errors into the caller: a rule either
// matches and contributes its points, or contributes zero.
package rules

import (
	"regexp"
	"strings"
)

// Category buckets criteria contributions in the score breakdown.
type Category string

const (
	CategoryDemographic  Category = "demographic"
	CategoryFirmographic Category = "firmographic"
	CategoryBehavioral   Category = "behavioral"
	CategoryEngagement   Category = "engagement"
	CategorySource       Category = "source"
	CategoryTemporal     Category = "temporal"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryDemographic, CategoryFirmographic, CategoryBehavioral,
	CategoryEngagement, CategorySource, CategoryTemporal,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Operator is a rule comparison operator.
type Operator string

const (
	OpEq        Operator = "eq"
	OpGt        Operator = "gt"
	OpGte       Operator = "gte"
	OpLt        Operator = "lt"
	OpLte       Operator = "lte"
	OpContains  Operator = "contains"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpIsNull    Operator = "is_null"
	OpIsNotNull Operator = "is_not_null"
	OpRegex     Operator = "regex"
)

// Operators lists every valid operator.
var Operators = []Operator{
	OpEq, OpGt, OpGte, OpLt, OpLte, OpContains,
	OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpRegex,
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// Rule is a single field comparison worth a number of points.
type Rule struct {
	FieldName string
	Operator  Operator
	Value     Value
	Points    int
}

// Evaluate returns the rule's points when it matches the snapshot and zero
// otherwise. Unknown fields, null fields under ordering operators, type
// mismatches and malformed patterns all degrade to zero.
func Evaluate(snap Snapshot, r Rule) int {
	accessor, ok := registry[r.FieldName]
	if !ok {
		return 0
	}
	field := accessor(snap)

	if matches(field, r.Operator, r.Value) {
		return r.Points
	}
	return 0
}

func matches(field FieldValue, op Operator, value Value) bool {
	switch op {
	case OpEq:
		if field.Null {
			return false
		}
		if field.IsNumber {
			return value.Kind == ValueNumber && field.Num == value.Num
		}
		return value.Kind == ValueString && field.Str == value.Str

	case OpGt, OpGte, OpLt, OpLte:
		// A null field never satisfies an ordering comparison.
		if field.Null {
			return false
		}
		return ordered(field, op, value)

	case OpContains:
		if field.Null || value.Kind != ValueString {
			return false
		}
		return strings.Contains(field.stringForm(), value.Str)

	case OpIn:
		// A non-list value can never match.
		if value.Kind != ValueList || field.Null {
			return false
		}
		return containsString(value.List, field.stringForm())

	case OpNotIn:
		// A non-list value always matches.
		if value.Kind != ValueList {
			return true
		}
		if field.Null {
			return true
		}
		return !containsString(value.List, field.stringForm())

	case OpIsNull:
		return field.Null

	case OpIsNotNull:
		return !field.Null

	case OpRegex:
		if value.Kind != ValueString {
			return false
		}
		// Anchored at the start of the field's string form.
		re, err := regexp.Compile("^(?:" + value.Str + ")")
		if err != nil {
			return false
		}
		return re.MatchString(field.stringForm())

	default:
		return false
	}
}

func ordered(field FieldValue, op Operator, value Value) bool {
	var cmp int
	switch {
	case field.IsNumber && value.Kind == ValueNumber:
		switch {
		case field.Num < value.Num:
			cmp = -1
		case field.Num > value.Num:
			cmp = 1
		}
	case !field.IsNumber && value.Kind == ValueString:
		cmp = strings.Compare(field.Str, value.Str)
	default:
		// Ordering across mismatched types is undefined.
		return false
	}

	switch op {
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
