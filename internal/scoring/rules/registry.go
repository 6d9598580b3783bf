package rules

import (
	"fmt"
	"sort"
	"strconv"
)

// Snapshot is the flattened view of a lead that rules evaluate against.
// Blank strings represent absent values, matching how lead fields are stored.
type Snapshot struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	CompanyName   string
	JobTitle      string
	Address       string
	City          string
	Territory     string
	Industry      string
	CompanySize   string
	AnnualRevenue string
	BudgetRange   string
	Timeline      string
	Status        string
	Priority      string
	SourceType    string
	Score         int
	DaysAsLead    int
}

// FieldValue is a resolved snapshot field. Null covers both genuinely absent
// values and blank strings on nullable text fields.
type FieldValue struct {
	IsNumber bool
	Str      string
	Num      float64
	Null     bool
}

func (f FieldValue) stringForm() string {
	if f.Null {
		return ""
	}
	if f.IsNumber {
		return strconv.FormatFloat(f.Num, 'g', -1, 64)
	}
	return f.Str
}

func stringField(v string) FieldValue {
	return FieldValue{Str: v, Null: v == ""}
}

func numberField(v float64) FieldValue {
	return FieldValue{IsNumber: true, Num: v}
}

// registry is the closed set of fields a rule may reference.
var registry = map[string]func(Snapshot) FieldValue{
	"first_name":     func(s Snapshot) FieldValue { return stringField(s.FirstName) },
	"last_name":      func(s Snapshot) FieldValue { return stringField(s.LastName) },
	"email":          func(s Snapshot) FieldValue { return stringField(s.Email) },
	"phone_number":   func(s Snapshot) FieldValue { return stringField(s.Phone) },
	"company_name":   func(s Snapshot) FieldValue { return stringField(s.CompanyName) },
	"job_title":      func(s Snapshot) FieldValue { return stringField(s.JobTitle) },
	"address":        func(s Snapshot) FieldValue { return stringField(s.Address) },
	"city":           func(s Snapshot) FieldValue { return stringField(s.City) },
	"territory":      func(s Snapshot) FieldValue { return stringField(s.Territory) },
	"industry":       func(s Snapshot) FieldValue { return stringField(s.Industry) },
	"company_size":   func(s Snapshot) FieldValue { return stringField(s.CompanySize) },
	"annual_revenue": func(s Snapshot) FieldValue { return stringField(s.AnnualRevenue) },
	"budget_range":   func(s Snapshot) FieldValue { return stringField(s.BudgetRange) },
	"timeline":       func(s Snapshot) FieldValue { return stringField(s.Timeline) },
	"status":         func(s Snapshot) FieldValue { return stringField(s.Status) },
	"priority":       func(s Snapshot) FieldValue { return stringField(s.Priority) },
	"source_type":    func(s Snapshot) FieldValue { return stringField(s.SourceType) },
	"lead_score":     func(s Snapshot) FieldValue { return numberField(float64(s.Score)) },
	"days_as_lead":   func(s Snapshot) FieldValue { return numberField(float64(s.DaysAsLead)) },
}

// Resolve reports whether a field name is known. Rule configuration endpoints
// call this so bad names surface at write time instead of silently scoring 0.
func Resolve(name string) error {
	if _, ok := registry[name]; !ok {
		return fmt.Errorf("unknown scoring field %q", name)
	}
	return nil
}

// FieldNames returns the registry's field names, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
