package transport

import (
	"testing"

	"leadgen_backend/platform/validator"
)

func TestActivityRulePointsAcceptPenalties(t *testing.T) {
	val := validator.New()

	req := CreateActivityRuleRequest{
		Name:              "No Response Penalty",
		Outcome:           "no_response",
		PointsPerActivity: -5,
		MaxPointsPerDay:   15,
		DecayDays:         30,
		DecayRate:         0.1,
	}
	if err := val.Struct(req); err != nil {
		t.Fatalf("negative points per activity must validate: %v", err)
	}

	req.PointsPerActivity = -101
	if err := val.Struct(req); err == nil {
		t.Fatal("points below -100 must be rejected")
	}
	req.PointsPerActivity = 101
	if err := val.Struct(req); err == nil {
		t.Fatal("points above 100 must be rejected")
	}
}

func TestRulePointsAllowZero(t *testing.T) {
	val := validator.New()

	req := CreateRuleRequest{
		FieldName: "company_size",
		Operator:  "eq",
		Value:     "\"1000+\"",
		Points:    0,
	}
	if err := val.Struct(req); err != nil {
		t.Fatalf("zero points must validate: %v", err)
	}

	req.Points = -101
	if err := val.Struct(req); err == nil {
		t.Fatal("points below -100 must be rejected")
	}
}

func TestProfileThresholdsAllowZero(t *testing.T) {
	val := validator.New()

	req := CreateProfileRequest{
		Name:                "Assign Everything",
		AutoAssignThreshold: 0,
		HotLeadThreshold:    0,
	}
	if err := val.Struct(req); err != nil {
		t.Fatalf("zero thresholds must validate: %v", err)
	}

	req.HotLeadThreshold = 101
	if err := val.Struct(req); err == nil {
		t.Fatal("threshold above 100 must be rejected")
	}
}
