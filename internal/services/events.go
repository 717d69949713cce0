package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"autazul-backend-go/internal/db"
	"autazul-backend-go/internal/models"

	"github.com/google/uuid"
)

const eventColumns = `id, child_id, creator_id, creator_role, type, event_date, event_time, year_month, severity, description, evaluation, photos, created_at`

const (
	monthLayout = "2006-01"
	timeLayout  = "15:04"
	maxPhotos   = 10
)

type EventInput struct {
	ChildID     string
	Type        string
	Date        string
	Time        string
	Severity    string
	Description string
	Evaluation  *string
	Photos      []string
}

func (in EventInput) validate() (models.Event, error) {
	eventType := models.EventType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !eventType.Valid() {
		return models.Event{}, ErrBadRequest("Unknown event type")
	}
	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return models.Event{}, ErrBadRequest("date must use the YYYY-MM-DD format")
	}
	clock := strings.TrimSpace(in.Time)
	if clock == "" {
		clock = "00:00"
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return models.Event{}, ErrBadRequest("time must use the HH:MM format")
	}
	severity, ok := models.ParseSeverity(in.Severity)
	if !ok {
		return models.Event{}, ErrBadRequest("Unknown severity")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return models.Event{}, ErrBadRequest("Description is required")
	}
	if len(in.Photos) > maxPhotos {
		return models.Event{}, ErrBadRequest(fmt.Sprintf("At most %d photos per event", maxPhotos))
	}
	photos := []string{}
	for _, photo := range in.Photos {
		if value := strings.TrimSpace(photo); value != "" {
			photos = append(photos, value)
		}
	}
	encoded, err := json.Marshal(photos)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		ChildID:     in.ChildID,
		Type:        eventType,
		Date:        date,
		Time:        clock,
		YearMonth:   date[:7],
		Severity:    severity,
		Description: description,
		Evaluation:  trimOptional(in.Evaluation),
		Photos:      string(encoded),
	}, nil
}

// CreateEvent records an event for a child. Events are immutable once
// written. Events logged by a professional notify the child's parents.
func CreateEvent(ctx context.Context, database *db.DB, user models.User, in EventInput) (models.Event, error) {
	event, err := in.validate()
	if err != nil {
		return models.Event{}, err
	}
	event.ID = uuid.NewString()
	event.CreatorID = user.ID
	event.CreatorRole = user.Role
	event.CreatedAt = nowFunc()
	err = database.WithTx(ctx, func(tx *db.Tx) error {
		child, capability, err := RequireCapability(ctx, tx, user.ID, in.ChildID, models.Capability.CanWriteEvents)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO events (id, child_id, creator_id, creator_role, type, event_date, event_time, year_month, severity, description, evaluation, photos, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
`, event.ID, event.ChildID, event.CreatorID, event.CreatorRole, event.Type, event.Date, event.Time, event.YearMonth,
			event.Severity, event.Description, event.Evaluation, event.Photos, event.CreatedAt)
		if err != nil {
			return WrapError(err, "insert event")
		}
		if capability != models.CapabilityProfessional {
			return nil
		}
		parents := []string{child.ParentID}
		coparents := []string{}
		if err := tx.SelectContext(ctx, &coparents, `SELECT user_id FROM child_coparents WHERE child_id = ?`, child.ID); err != nil {
			return err
		}
		message := fmt.Sprintf("%s registered a new %s event for %s.", user.Name, event.Type, child.Name)
		for _, parentID := range append(parents, coparents...) {
			if err := createNotification(ctx, tx, parentID, models.NotificationNewEvent, "New event", message, &event.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if _, err := time.Parse(monthLayout, value); err != nil {
		return "", ErrBadRequest("month must use the YYYY-MM format")
	}
	return value, nil
}

// ListEventsByMonth returns the child's events within one calendar month,
// in chronological order.
func ListEventsByMonth(ctx context.Context, q db.Querier, userID, childID, month string) ([]models.Event, error) {
	month, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	if _, _, err := RequireCapability(ctx, q, userID, childID, models.Capability.CanRead); err != nil {
		return nil, err
	}
	return eventsForMonth(ctx, q, childID, month)
}

func eventsForMonth(ctx context.Context, q db.Querier, childID, month string) ([]models.Event, error) {
	items := []models.Event{}
	if err := q.SelectContext(ctx, &items, `
SELECT `+eventColumns+`
FROM events
WHERE child_id = ? AND year_month = ?
`, childID, month); err != nil {
		return nil, err
	}
	SortEvents(items)
	return items, nil
}

func GetEvent(ctx context.Context, q db.Querier, userID, eventID string) (models.Event, error) {
	var event models.Event
	err := q.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = ?`, eventID)
	if db.IsNoRows(err) {
		return models.Event{}, ErrNotFound("Event not found")
	}
	if err != nil {
		return models.Event{}, err
	}
	if _, _, err := RequireCapability(ctx, q, userID, event.ChildID, models.Capability.CanRead); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// SortEvents orders events by date, then time, then creation.
func SortEvents(items []models.Event) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		if items[i].Time != items[j].Time {
			return items[i].Time < items[j].Time
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// EventPhotos decodes the stored photo list.
func EventPhotos(event models.Event) []string {
	photos := []string{}
	if event.Photos == "" {
		return photos
	}
	_ = json.Unmarshal([]byte(event.Photos), &photos)
	return photos
}
