// Package gcal implements the calendar backend on the Google Calendar API.
//
// The Backend interface is the seam the reconciler and CLI operate through;
// Client is its production implementation. Authentication and token refresh
// live entirely on this side of the boundary.
package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/ymichaeli/fixture-sync/internal/config"
	"github.com/ymichaeli/fixture-sync/internal/fixture"
)

// Events created by this tool carry a private extended property so later
// runs can recognize them without guessing from titles.
const (
	OwnershipProperty = "fixturesync"
	OwnershipValue    = "1"
)

// Backend is the calendar service surface the rest of the pipeline uses.
type Backend interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (string, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	CreateCalendar(ctx context.Context, name, timeZone string) (string, error)
}

// CalendarInfo is one entry of the user's calendar list.
type CalendarInfo struct {
	ID          string
	Name        string
	Description string
	Primary     bool
}

// Client is the Google Calendar implementation of Backend.
type Client struct {
	svc *calendar.Service
}

// NewClient authenticates against Google Calendar and returns a ready
// client. Construction does not hit the network; the first API call does.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	ts, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// ListCalendars returns the calendars visible to the authenticated user.
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}

	infos := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		infos = append(infos, CalendarInfo{
			ID:          item.Id,
			Name:        item.Summary,
			Description: item.Description,
			Primary:     item.Primary,
		})
	}
	return infos, nil
}

// ListEvents returns the single (non-recurring-expanded) events of a
// calendar within the given range, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	result, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return result.Items, nil
}

// InsertEvent creates an event and returns its ID.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (string, error) {
	created, err := c.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("inserting event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent replaces an event body and returns the event ID.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (string, error) {
	updated, err := c.svc.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("updating event: %w", err)
	}
	return updated.Id, nil
}

// DeleteEvent removes an event from a calendar.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

// CreateCalendar creates a dedicated calendar and returns its ID.
func (c *Client) CreateCalendar(ctx context.Context, name, timeZone string) (string, error) {
	created, err := c.svc.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: timeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating calendar: %w", err)
	}
	return created.Id, nil
}

// EventBody builds the calendar event for one canonical fixture, including
// the reminder overrides and the ownership property.
func EventBody(fx *fixture.Canonical, timeZone string, reminders []config.Reminder) *calendar.Event {
	overrides := make([]*calendar.EventReminder, 0, len(reminders))
	for _, r := range reminders {
		overrides = append(overrides, &calendar.EventReminder{
			Method:  r.Method,
			Minutes: r.Minutes,
		})
	}

	return &calendar.Event{
		Summary:     fx.Title,
		Location:    fx.Venue,
		Description: "Football match: " + fx.Title,
		Start: &calendar.EventDateTime{
			DateTime: fx.Kickoff.Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: fx.End().Format(time.RFC3339),
			TimeZone: timeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{OwnershipProperty: OwnershipValue},
		},
	}
}

// IsOwned reports whether an event was created by this tool, checking the
// ownership property first and falling back to title-token matching for
// events created before tagging existed.
func IsOwned(ev *calendar.Event, matchTokens []string) bool {
	if ev.ExtendedProperties != nil && ev.ExtendedProperties.Private != nil {
		if ev.ExtendedProperties.Private[OwnershipProperty] == OwnershipValue {
			return true
		}
	}
	for _, token := range matchTokens {
		if token != "" && strings.Contains(ev.Summary, token) {
			return true
		}
	}
	return false
}
