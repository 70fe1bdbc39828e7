// Package config provides the YAML-based application configuration.
//
// Everything club-specific (site URL, name normalization table, month
// labels, tentative-time token) lives here so the pipeline itself stays
// club-agnostic. Default returns the configuration of the deployment this
// tool was written for; a config file overrides any subset of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Reminder describes one calendar reminder override attached to created
// events.
type Reminder struct {
	Method  string `yaml:"method"`
	Minutes int64  `yaml:"minutes"`
}

// Config is the top-level application configuration.
type Config struct {
	// SourceURL is the club website's match listing page.
	SourceURL string `yaml:"source_url"`

	// Tab is the listing tab query parameter selecting upcoming matches.
	Tab string `yaml:"tab"`

	// WindowOffsetsDays are the day offsets of the date-filtered fetches.
	// Each offset produces one request filtered to "from now+offset"; the
	// union of the responses defeats the site's incremental loading.
	WindowOffsetsDays []int `yaml:"window_offsets_days"`

	// FetchRetries is the number of retries per page fetch on transport
	// failure, on top of the initial attempt.
	FetchRetries uint64 `yaml:"fetch_retries"`

	// SourceTimezone is the zone kickoff times are published in.
	SourceTimezone string `yaml:"source_timezone"`

	// TargetTimezone is the club's local zone, used for calendar entries.
	TargetTimezone string `yaml:"target_timezone"`

	// Months maps locale month abbreviations (without trailing punctuation)
	// to month numbers 1..12.
	Months map[string]int `yaml:"months"`

	// ClubNames maps long-form team names to the short form used in titles
	// and dedupe keys.
	ClubNames map[string]string `yaml:"club_names"`

	// CompetitionAliases rewrites competition labels containing the key to
	// the value (sponsor-branded league names to the plain name).
	CompetitionAliases map[string]string `yaml:"competition_aliases"`

	// TentativeToken is the substring marking a kickoff time as not final.
	TentativeToken string `yaml:"tentative_token"`

	// MatchTokens identify fixture events among all calendar events by
	// title substring; the fallback when an event predates ownership
	// tagging.
	MatchTokens []string `yaml:"match_tokens"`

	// UnknownVenue is the placeholder used when the page lists no venue.
	UnknownVenue string `yaml:"unknown_venue"`

	// DurationHours is the fixed event length; kickoff plus this is the end.
	DurationHours float64 `yaml:"duration_hours"`

	// CalendarID is the target calendar. "primary" targets the main one.
	CalendarID string `yaml:"calendar_id"`

	// CalendarName is used by the setup command when creating a dedicated
	// calendar.
	CalendarName string `yaml:"calendar_name"`

	// Reminders are attached to every created event.
	Reminders []Reminder `yaml:"reminders"`

	// WatchCron is the schedule of the watch command.
	WatchCron string `yaml:"watch_cron"`

	StateFile       string `yaml:"state_file"`
	LogFile         string `yaml:"log_file"`
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
}

// Default returns the built-in configuration: the Maccabi Haifa deployment
// this tool grew out of.
func Default() *Config {
	return &Config{
		SourceURL:         "https://www.mhaifafc.com/matches",
		Tab:               "משחקים הבאים",
		WindowOffsetsDays: []int{0, 120},
		FetchRetries:      2,
		SourceTimezone:    "UTC",
		TargetTimezone:    "Asia/Jerusalem",
		Months: map[string]int{
			"ינו": 1, "פבר": 2, "מרץ": 3, "אפר": 4, "מאי": 5, "יונ": 6,
			"יול": 7, "אוג": 8, "ספט": 9, "אוק": 10, "נוב": 11, "דצמ": 12,
		},
		ClubNames: map[string]string{
			"מכבי חיפה": "מכבי",
		},
		CompetitionAliases: map[string]string{
			"WINNER": "ליגה",
		},
		TentativeToken: "לא סופי",
		MatchTokens:    []string{"מכבי", "vs", "ליגה", "קונפרנס"},
		UnknownVenue:   "לא ידוע",
		DurationHours:  2,
		CalendarID:     "primary",
		CalendarName:   "מכבי חיפה",
		Reminders: []Reminder{
			{Method: "email", Minutes: 24 * 60},
			{Method: "popup", Minutes: 60},
		},
		WatchCron:       "0 */6 * * *",
		StateFile:       "sync_state.json",
		LogFile:         "sync.log",
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	if c.SourceURL == "" {
		return errors.New("source_url must not be empty")
	}
	if len(c.WindowOffsetsDays) == 0 {
		return errors.New("window_offsets_days must list at least one offset")
	}
	if c.DurationHours <= 0 {
		return errors.New("duration_hours must be positive")
	}
	for label, m := range c.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("month label %q maps to invalid month %d", label, m)
		}
	}
	if _, err := time.LoadLocation(c.SourceTimezone); err != nil {
		return fmt.Errorf("invalid source_timezone: %w", err)
	}
	if _, err := time.LoadLocation(c.TargetTimezone); err != nil {
		return fmt.Errorf("invalid target_timezone: %w", err)
	}
	return nil
}

// Duration returns the fixed event duration.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.DurationHours * float64(time.Hour))
}

// Zones loads the source and target locations from the zone database.
func (c *Config) Zones() (source, target *time.Location, err error) {
	source, err = time.LoadLocation(c.SourceTimezone)
	if err != nil {
		return nil, nil, fmt.Errorf("loading source zone: %w", err)
	}
	target, err = time.LoadLocation(c.TargetTimezone)
	if err != nil {
		return nil, nil, fmt.Errorf("loading target zone: %w", err)
	}
	return source, target, nil
}
