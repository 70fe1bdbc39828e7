// Package reconcile brings the target calendar in line with a freshly
// scraped fixture list.
//
// Two modes exist. Full replace deletes every remote event recognized as one
// of ours and recreates the whole fixture set; it runs whenever the sync
// controller detects a changed scrape. Targeted update only prepends the
// tentative-time marker to remote titles that lack it, leaving everything
// else untouched. In both modes a single failed item is counted and logged,
// never fatal; only an unreachable backend aborts.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/ymichaeli/fixture-sync/internal/config"
	"github.com/ymichaeli/fixture-sync/internal/fixture"
	"github.com/ymichaeli/fixture-sync/internal/gcal"
	"github.com/ymichaeli/fixture-sync/internal/logger"
)

// listHorizon is how far ahead remote events are inspected. A season never
// extends past it.
const listHorizon = 365 * 24 * time.Hour

// Reconciler executes reconciliation plans against the calendar backend.
type Reconciler struct {
	backend        gcal.Backend
	calendarID     string
	matchTokens    []string
	tentativeToken string
	timeZone       string
	reminders      []config.Reminder

	now func() time.Time
}

// New creates a Reconciler targeting the configured calendar.
func New(backend gcal.Backend, cfg *config.Config) *Reconciler {
	return &Reconciler{
		backend:        backend,
		calendarID:     cfg.CalendarID,
		matchTokens:    cfg.MatchTokens,
		tentativeToken: cfg.TentativeToken,
		timeZone:       cfg.TargetTimezone,
		reminders:      cfg.Reminders,
		now:            time.Now,
	}
}

// Result summarizes a full-replace run.
type Result struct {
	Deleted int
	Created int
	Failed  int

	// EventIDs maps fixture keys to the IDs of the events created for them.
	EventIDs map[string]string
}

// Affected is the total number of remote events touched.
func (r *Result) Affected() int {
	return r.Deleted + r.Created
}

// FullReplace deletes all recognized fixture events in the calendar and
// recreates one event per canonical fixture. Per-event failures are counted
// and logged; the run continues through the remaining events.
func (r *Reconciler) FullReplace(ctx context.Context, fixtures []fixture.Canonical) (*Result, error) {
	now := r.now()
	events, err := r.backend.ListEvents(ctx, r.calendarID, now, now.Add(listHorizon))
	if err != nil {
		return nil, fmt.Errorf("listing remote events: %w", err)
	}

	result := &Result{EventIDs: make(map[string]string)}

	for _, ev := range events {
		if !gcal.IsOwned(ev, r.matchTokens) {
			continue
		}
		if err := r.backend.DeleteEvent(ctx, r.calendarID, ev.Id); err != nil {
			logger.Error("Deleting event failed", logger.Fields{"event_id": ev.Id}, err)
			logger.IncrCounter("reconcile.delete_failures")
			result.Failed++
			continue
		}
		result.Deleted++
	}
	logger.Info("Deleted existing fixture events", logger.Fields{"count": result.Deleted})

	for i := range fixtures {
		fx := &fixtures[i]
		id, err := r.backend.InsertEvent(ctx, r.calendarID, gcal.EventBody(fx, r.timeZone, r.reminders))
		if err != nil {
			logger.Error("Inserting event failed", logger.Fields{"title": fx.Title}, err)
			logger.IncrCounter("reconcile.insert_failures")
			result.Failed++
			continue
		}
		result.Created++
		result.EventIDs[fx.Key] = id
	}
	logger.Info("Created fixture events", logger.Fields{
		"created": result.Created,
		"failed":  result.Failed,
	})

	return result, nil
}

// UpdateTentative prepends the tentative-time marker to the title of the
// first remote event matching each tentative fixture's base title, provided
// the title does not already carry the marker. All other event fields are
// preserved as they are on the remote side. Returns the number of events
// updated.
func (r *Reconciler) UpdateTentative(ctx context.Context, fixtures []fixture.Canonical) (int, error) {
	now := r.now()
	events, err := r.backend.ListEvents(ctx, r.calendarID, now, now.Add(listHorizon))
	if err != nil {
		return 0, fmt.Errorf("listing remote events: %w", err)
	}

	updated := 0
	for i := range fixtures {
		fx := &fixtures[i]
		if fx.Tentative == "" || fx.BaseTitle == "" {
			continue
		}

		for _, ev := range events {
			if !strings.Contains(ev.Summary, fx.BaseTitle) {
				continue
			}
			if strings.Contains(ev.Summary, r.tentativeToken) {
				continue
			}

			body := &calendar.Event{
				Summary:            fx.Tentative + " " + ev.Summary,
				Location:           ev.Location,
				Description:        ev.Description,
				Start:              ev.Start,
				End:                ev.End,
				Reminders:          ev.Reminders,
				ExtendedProperties: ev.ExtendedProperties,
			}

			if _, err := r.backend.UpdateEvent(ctx, r.calendarID, ev.Id, body); err != nil {
				logger.Error("Updating event failed", logger.Fields{"event_id": ev.Id}, err)
				logger.IncrCounter("reconcile.update_failures")
			} else {
				logger.Info("Marked event time as tentative", logger.Fields{"title": body.Summary})
				updated++
			}
			// First match wins for this fixture either way.
			break
		}
	}

	return updated, nil
}
