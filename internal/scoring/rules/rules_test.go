package rules

import "testing"

func TestParseValueKinds(t *testing.T) {
	cases := []struct {
		raw  string
		kind ValueKind
	}{
		{`"1000+"`, ValueString},
		{`42`, ValueNumber},
		{`3.5`, ValueNumber},
		{`true`, ValueBool},
		{`["technology", "finance"]`, ValueList},
		{`not json at all`, ValueString},
		{``, ValueString},
	}

	for _, tc := range cases {
		got := ParseValue(tc.raw)
		if got.Kind != tc.kind {
			t.Fatalf("ParseValue(%q) kind = %d, want %d", tc.raw, got.Kind, tc.kind)
		}
	}
}

func TestParseValueFallbackKeepsRawText(t *testing.T) {
	v := ParseValue("1000+")
	if v.Kind != ValueString || v.Str != "1000+" {
		t.Fatalf("expected raw fallback string, got kind=%d str=%q", v.Kind, v.Str)
	}
}

func TestEvaluateEqualsCompanySize(t *testing.T) {
	snap := Snapshot{CompanySize: "1000+"}
	rule := Rule{FieldName: "company_size", Operator: OpEq, Value: ParseValue(`"1000+"`), Points: 25}

	if got := Evaluate(snap, rule); got != 25 {
		t.Fatalf("expected 25 points for matching company size, got %d", got)
	}

	snap.CompanySize = "11-50"
	if got := Evaluate(snap, rule); got != 0 {
		t.Fatalf("expected 0 points for non-matching company size, got %d", got)
	}
}

func TestEvaluateInListIndustry(t *testing.T) {
	rule := Rule{
		FieldName: "industry",
		Operator:  OpIn,
		Value:     ParseValue(`["technology", "finance", "healthcare"]`),
		Points:    10,
	}

	if got := Evaluate(Snapshot{Industry: "finance"}, rule); got != 10 {
		t.Fatalf("expected in-list match, got %d", got)
	}
	if got := Evaluate(Snapshot{Industry: "retail"}, rule); got != 0 {
		t.Fatalf("expected no match for industry outside list, got %d", got)
	}
}

func TestEvaluateInWithNonListNeverMatches(t *testing.T) {
	rule := Rule{FieldName: "industry", Operator: OpIn, Value: ParseValue(`"technology"`), Points: 10}
	if got := Evaluate(Snapshot{Industry: "technology"}, rule); got != 0 {
		t.Fatalf("in with non-list value must never match, got %d", got)
	}
}

func TestEvaluateNotInWithNonListAlwaysMatches(t *testing.T) {
	rule := Rule{FieldName: "industry", Operator: OpNotIn, Value: ParseValue(`"technology"`), Points: 5}
	if got := Evaluate(Snapshot{Industry: "technology"}, rule); got != 5 {
		t.Fatalf("not_in with non-list value must always match, got %d", got)
	}
}

func TestEvaluateUnknownFieldScoresZero(t *testing.T) {
	rule := Rule{FieldName: "no_such_field", Operator: OpEq, Value: ParseValue(`"x"`), Points: 50}
	if got := Evaluate(Snapshot{}, rule); got != 0 {
		t.Fatalf("unknown field must score 0, got %d", got)
	}
}

func TestEvaluateOrderingOnNullField(t *testing.T) {
	for _, op := range []Operator{OpGt, OpGte, OpLt, OpLte} {
		rule := Rule{FieldName: "company_size", Operator: op, Value: ParseValue(`"a"`), Points: 5}
		if got := Evaluate(Snapshot{}, rule); got != 0 {
			t.Fatalf("null field must not satisfy %s, got %d", op, got)
		}
	}
}

func TestEvaluateNumericOrdering(t *testing.T) {
	snap := Snapshot{Score: 75}

	cases := []struct {
		op    Operator
		value string
		want  int
	}{
		{OpGte, `70`, 5},
		{OpGte, `75`, 5},
		{OpGt, `75`, 0},
		{OpLt, `80`, 5},
		{OpLte, `74`, 0},
	}
	for _, tc := range cases {
		rule := Rule{FieldName: "lead_score", Operator: tc.op, Value: ParseValue(tc.value), Points: 5}
		if got := Evaluate(snap, rule); got != tc.want {
			t.Fatalf("lead_score %s %s = %d, want %d", tc.op, tc.value, got, tc.want)
		}
	}
}

func TestEvaluateOrderingTypeMismatchScoresZero(t *testing.T) {
	rule := Rule{FieldName: "lead_score", Operator: OpGt, Value: ParseValue(`"50"`), Points: 5}
	if got := Evaluate(Snapshot{Score: 90}, rule); got != 0 {
		t.Fatalf("number-vs-string ordering must score 0, got %d", got)
	}
}

func TestEvaluateIsNullTreatsEmptyStringAsNull(t *testing.T) {
	nullRule := Rule{FieldName: "phone_number", Operator: OpIsNull, Value: ParseValue(`""`), Points: 3}
	notNullRule := Rule{FieldName: "phone_number", Operator: OpIsNotNull, Value: ParseValue(`""`), Points: 1}

	if got := Evaluate(Snapshot{}, nullRule); got != 3 {
		t.Fatalf("empty phone must be null, got %d", got)
	}
	if got := Evaluate(Snapshot{Phone: "+6329171234567"}, notNullRule); got != 1 {
		t.Fatalf("present phone must be not-null, got %d", got)
	}
	if got := Evaluate(Snapshot{Phone: "+6329171234567"}, nullRule); got != 0 {
		t.Fatalf("present phone must not match is_null, got %d", got)
	}
}

func TestEvaluateContains(t *testing.T) {
	rule := Rule{FieldName: "job_title", Operator: OpContains, Value: ParseValue(`"Director"`), Points: 8}
	if got := Evaluate(Snapshot{JobTitle: "Managing Director"}, rule); got != 8 {
		t.Fatalf("expected contains match, got %d", got)
	}
	if got := Evaluate(Snapshot{JobTitle: "Engineer"}, rule); got != 0 {
		t.Fatalf("expected no contains match, got %d", got)
	}
}

func TestEvaluateRegexAnchoredAtStart(t *testing.T) {
	rule := Rule{FieldName: "email", Operator: OpRegex, Value: ParseValue(`".*@acme\\.com$"`), Points: 10}
	if got := Evaluate(Snapshot{Email: "ceo@acme.com"}, rule); got != 10 {
		t.Fatalf("expected regex match, got %d", got)
	}

	prefix := Rule{FieldName: "email", Operator: OpRegex, Value: ParseValue(`"admin"`), Points: 10}
	if got := Evaluate(Snapshot{Email: "admin@acme.com"}, prefix); got != 10 {
		t.Fatalf("pattern should match at the start of the field, got %d", got)
	}
	if got := Evaluate(Snapshot{Email: "the-admin@acme.com"}, prefix); got != 0 {
		t.Fatalf("pattern must be anchored at the start, got %d", got)
	}
}

func TestEvaluateBadRegexScoresZero(t *testing.T) {
	rule := Rule{FieldName: "email", Operator: OpRegex, Value: ParseValue(`"(["`), Points: 10}
	if got := Evaluate(Snapshot{Email: "anything"}, rule); got != 0 {
		t.Fatalf("malformed pattern must score 0, got %d", got)
	}
}

func TestEvaluateNegativePoints(t *testing.T) {
	rule := Rule{FieldName: "status", Operator: OpEq, Value: ParseValue(`"unqualified"`), Points: -20}
	if got := Evaluate(Snapshot{Status: "unqualified"}, rule); got != -20 {
		t.Fatalf("expected negative points on match, got %d", got)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	snap := Snapshot{CompanySize: "51-200", Industry: "technology", Score: 42}
	rule := Rule{FieldName: "company_size", Operator: OpEq, Value: ParseValue(`"51-200"`), Points: 10}

	first := Evaluate(snap, rule)
	for i := 0; i < 100; i++ {
		if got := Evaluate(snap, rule); got != first {
			t.Fatalf("evaluation not deterministic: %d vs %d", got, first)
		}
	}
}

func TestResolveKnownAndUnknownFields(t *testing.T) {
	if err := Resolve("company_size"); err != nil {
		t.Fatalf("company_size should resolve: %v", err)
	}
	if err := Resolve("bogus_field"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}
