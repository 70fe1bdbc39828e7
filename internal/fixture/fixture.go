package fixture

import (
	"fmt"
	"time"
)

// Raw represents a fixture as scraped from the club website, before any
// normalization. Field values are kept exactly as displayed so that dedupe
// keys and fingerprints are stable across runs.
type Raw struct {
	Day         string `json:"date_day"`
	MonthLabel  string `json:"date_month"`
	Time        string `json:"time"` // HH:MM in the source time zone
	Competition string `json:"competition"`
	Venue       string `json:"venue"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Tentative   string `json:"not_final_time"` // empty when the kickoff time is final
}

// HasTeams reports whether both team names were extracted. The parser sets
// both or neither, never one.
func (r *Raw) HasTeams() bool {
	return r.HomeTeam != "" && r.AwayTeam != ""
}

// DedupeKey identifies the same physical fixture across overlapping
// date-filtered page fetches. It is built from pre-normalization fields so
// that two sightings of one fixture always collide.
func (r *Raw) DedupeKey() string {
	return fmt.Sprintf("%s-%s-%s-%s", r.Day, r.MonthLabel, r.HomeTeam, r.AwayTeam)
}

// Canonical is a normalized fixture ready to be written to the calendar.
type Canonical struct {
	Kickoff  time.Time     `json:"kickoff"`
	Duration time.Duration `json:"-"`
	Title    string        `json:"title"`
	Venue    string        `json:"venue"`

	// BaseTitle is the team matchup without the tentative prefix or the
	// competition suffix. Targeted updates match remote events against it.
	// Empty when the fixture had no team names.
	BaseTitle string `json:"base_title,omitempty"`

	// Tentative carries the raw tentative-time annotation, empty when the
	// kickoff time is final.
	Tentative string `json:"tentative,omitempty"`

	// Key is the source Raw's DedupeKey, used to map created event IDs back
	// to fixtures in the persisted sync state.
	Key string `json:"key"`
}

// End returns the kickoff plus the fixed fixture duration.
func (c *Canonical) End() time.Time {
	return c.Kickoff.Add(c.Duration)
}
