package services

import (
	"context"
	"testing"

	"autazul-backend-go/internal/models"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
		code     Code
	}{
		{"2024-01", "2024-01", 1, ""},
		{"2023-11", "2024-02", 4, ""},
		{"2022-01", "2023-12", 24, ""},
		{"2022-01", "2024-01", 0, CodeValidation},
		{"2024-03", "2024-01", 0, CodeValidation},
		{"2024-1", "2024-02", 0, CodeValidation},
	}
	for _, tt := range tests {
		months, err := MonthRange(tt.from, tt.to)
		if tt.code != "" {
			expectCode(t, err, tt.code)
			continue
		}
		if err != nil {
			t.Fatalf("%s..%s: %v", tt.from, tt.to, err)
		}
		if len(months) != tt.want || months[0] != tt.from || months[len(months)-1] != tt.to {
			t.Fatalf("%s..%s = %v", tt.from, tt.to, months)
		}
	}
}

func TestBuildReport(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	parent := mustSignup(t, database, "a@x.com", "Parent A", models.RoleParent)
	ana := mustCreateChild(t, database, parent, "Ana", "2015-03-10")
	inputs := []EventInput{
		{ChildID: ana.ID, Type: "crisis", Date: "2024-02-10", Severity: "high", Description: "a"},
		{ChildID: ana.ID, Type: "crisis", Date: "2024-01-05", Severity: "severe", Description: "b"},
		{ChildID: ana.ID, Type: "sleep", Date: "2024-03-01", Severity: "low", Description: "c"},
		{ChildID: ana.ID, Type: "sleep", Date: "2024-04-01", Severity: "mild", Description: "outside"},
	}
	for _, in := range inputs {
		if _, err := CreateEvent(ctx, database, parent, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	report, err := BuildReport(ctx, database, parent.ID, ana.ID, "2024-01", "2024-03")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("total = %d, want 3", report.Total)
	}
	if report.ByType[models.EventCrisis] != 2 || report.ByType[models.EventSleep] != 1 {
		t.Fatalf("byType = %v", report.ByType)
	}
	if report.BySeverity[models.SeveritySevere] != 2 || report.BySeverity[models.SeverityMild] != 1 {
		t.Fatalf("bySeverity = %v", report.BySeverity)
	}
	if len(report.ByMonth) != 3 || report.ByMonth[1].Month != "2024-02" || report.ByMonth[1].Count != 1 {
		t.Fatalf("byMonth = %v", report.ByMonth)
	}
	if report.Events[0].Description != "b" || report.Events[2].Description != "c" {
		t.Fatalf("events not chronological: %v", report.Events)
	}
}
