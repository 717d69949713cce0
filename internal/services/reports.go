package services

import (
	"context"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"
)

const maxReportMonths = 24

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Report struct {
	ChildID    string                   `json:"childId"`
	From       string                   `json:"from"`
	To         string                   `json:"to"`
	Total      int                      `json:"total"`
	ByType     map[models.EventType]int `json:"byType"`
	BySeverity map[models.Severity]int  `json:"bySeverity"`
	ByMonth    []MonthCount             `json:"byMonth"`
	Events     []models.Event           `json:"-"`
}

// MonthRange expands an inclusive YYYY-MM window into its month keys.
func MonthRange(from, to string) ([]string, error) {
	start, err := time.Parse(monthLayout, from)
	if err != nil {
		return nil, ErrBadRequest("from must use the YYYY-MM format")
	}
	end, err := time.Parse(monthLayout, to)
	if err != nil {
		return nil, ErrBadRequest("to must use the YYYY-MM format")
	}
	if end.Before(start) {
		return nil, ErrBadRequest("from must not be after to")
	}
	months := []string{}
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		months = append(months, cursor.Format(monthLayout))
		if len(months) > maxReportMonths {
			return nil, ErrBadRequest("Reports cover at most 24 months")
		}
	}
	return months, nil
}

// BuildReport fetches the window one month partition at a time and
// aggregates the result. Severities are counted on the current scale.
func BuildReport(ctx context.Context, q db.Querier, userID, childID, from, to string) (Report, error) {
	months, err := MonthRange(from, to)
	if err != nil {
		return Report{}, err
	}
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanRead); err != nil {
		return Report{}, err
	}
	report := Report{
		ChildID:    childID,
		From:       months[0],
		To:         months[len(months)-1],
		ByType:     map[models.EventType]int{},
		BySeverity: map[models.Severity]int{},
		ByMonth:    make([]MonthCount, 0, len(months)),
		Events:     []models.Event{},
	}
	for _, month := range months {
		events, err := eventsForMonth(ctx, q, childID, month)
		if err != nil {
			return Report{}, err
		}
		report.ByMonth = append(report.ByMonth, MonthCount{Month: month, Count: len(events)})
		report.Events = append(report.Events, events...)
	}
	SortEvents(report.Events)
	for _, event := range report.Events {
		report.ByType[event.Type]++
		report.BySeverity[event.Severity.Current()]++
	}
	report.Total = len(report.Events)
	return report, nil
}
