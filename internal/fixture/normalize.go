package fixture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ymichaeli/fixture-sync/internal/logger"
)

// ErrNoTitle signals a fixture that has neither team names nor a competition
// to derive a title from. Such fixtures are skipped, not synced.
var ErrNoTitle = errors.New("fixture has no teams and no competition")

// Normalizer converts Raw fixtures into Canonical ones. The month table and
// zones are injected so the pipeline stays club-agnostic.
type Normalizer struct {
	months   map[string]time.Month
	source   *time.Location
	target   *time.Location
	duration time.Duration

	// now is swappable for tests; year inference depends on it.
	now func() time.Time
}

// NewNormalizer creates a Normalizer. The months table maps locale month
// labels (without trailing punctuation) to 1..12.
func NewNormalizer(months map[string]int, source, target *time.Location, duration time.Duration) *Normalizer {
	table := make(map[string]time.Month, len(months))
	for label, m := range months {
		table[label] = time.Month(m)
	}
	return &Normalizer{
		months:   table,
		source:   source,
		target:   target,
		duration: duration,
		now:      time.Now,
	}
}

// Normalize converts one scraped fixture into its canonical form.
// The kickoff is built in the source zone and converted to the target zone
// through the zone database, so DST transitions are honored.
func (n *Normalizer) Normalize(r *Raw) (*Canonical, error) {
	if !r.HasTeams() && r.Competition == "" {
		return nil, ErrNoTitle
	}

	day, err := strconv.Atoi(strings.TrimSpace(r.Day))
	if err != nil {
		return nil, fmt.Errorf("parsing day %q: %w", r.Day, err)
	}

	month, ok := n.resolveMonth(r.MonthLabel)
	if !ok {
		// Known quirk carried over from the original deployment: an
		// unrecognized label falls back to January instead of dropping the
		// fixture. Surfaced as a warning so scrape drift is visible.
		logger.Warn("Unknown month label, defaulting to January", logger.Fields{
			"label": r.MonthLabel,
		})
		month = time.January
	}

	hour, minute, err := parseClock(r.Time)
	if err != nil {
		return nil, fmt.Errorf("parsing time %q: %w", r.Time, err)
	}

	kickoff := time.Date(n.inferYear(month), month, day, hour, minute, 0, 0, n.source).In(n.target)

	return &Canonical{
		Kickoff:   kickoff,
		Duration:  n.duration,
		Title:     n.buildTitle(r),
		Venue:     r.Venue,
		BaseTitle: baseTitle(r),
		Tentative: r.Tentative,
		Key:       r.DedupeKey(),
	}, nil
}

// resolveMonth looks up a locale month label, tolerating a trailing
// apostrophe or geresh on the abbreviation.
func (n *Normalizer) resolveMonth(label string) (time.Month, bool) {
	label = strings.TrimSpace(label)
	if m, ok := n.months[label]; ok {
		return m, true
	}
	trimmed := strings.TrimRight(label, "'׳")
	if m, ok := n.months[trimmed]; ok {
		return m, true
	}
	return 0, false
}

// inferYear picks the current year when the fixture month has not passed
// yet, otherwise the next year. Fixtures are never more than eleven months
// out, so this is unambiguous.
func (n *Normalizer) inferYear(month time.Month) int {
	now := n.now()
	if month >= now.Month() {
		return now.Year()
	}
	return now.Year() + 1
}

// buildTitle constructs the display title. The away team is listed first on
// purpose: team names are in a right-to-left language and the Latin "vs"
// token reverses the perceived order, so swapping the sides renders the
// matchup correctly.
func (n *Normalizer) buildTitle(r *Raw) string {
	title := r.Competition
	if r.HasTeams() {
		title = fmt.Sprintf("%s vs %s", r.AwayTeam, r.HomeTeam)
		if r.Competition != "" {
			title += " - " + r.Competition
		}
	}
	if r.Tentative != "" {
		title = r.Tentative + " " + title
	}
	return title
}

func baseTitle(r *Raw) string {
	if !r.HasTeams() {
		return ""
	}
	return fmt.Sprintf("%s vs %s", r.AwayTeam, r.HomeTeam)
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", parts[1])
	}
	return hour, minute, nil
}
