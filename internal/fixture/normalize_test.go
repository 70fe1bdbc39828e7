package fixture

import (
	"errors"
	"testing"
	"time"
)

var testMonths = map[string]int{
	"ינו": 1, "פבר": 2, "מרץ": 3, "אפר": 4, "מאי": 5, "יונ": 6,
	"יול": 7, "אוג": 8, "ספט": 9, "אוק": 10, "נוב": 11, "דצמ": 12,
}

// testNormalizer pins "now" to 2025-08-15 so year inference is
// deterministic.
func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	target, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("loading target zone: %v", err)
	}
	n := NewNormalizer(testMonths, time.UTC, target, 2*time.Hour)
	n.now = func() time.Time {
		return time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)
	}
	return n
}

func TestNormalizer_resolveMonth(t *testing.T) {
	n := testNormalizer(t)

	tests := []struct {
		name  string
		label string
		want  time.Month
		ok    bool
	}{
		{"plain label", "אוג", time.August, true},
		{"trailing apostrophe", "אוג'", time.August, true},
		{"trailing geresh", "אוג׳", time.August, true},
		{"surrounding whitespace", " מרץ ", time.March, true},
		{"unknown label", "Zzz", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.resolveMonth(tt.label)
			if ok != tt.ok {
				t.Fatalf("resolveMonth(%q) ok = %v, want %v", tt.label, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("resolveMonth(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestNormalizer_inferYear(t *testing.T) {
	n := testNormalizer(t) // now = August 2025

	tests := []struct {
		name  string
		month time.Month
		want  int
	}{
		{"month already passed", time.March, 2026},
		{"current month", time.August, 2025},
		{"month ahead", time.September, 2025},
		{"december", time.December, 2025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.inferYear(tt.month); got != tt.want {
				t.Errorf("inferYear(%v) = %d, want %d", tt.month, got, tt.want)
			}
		})
	}
}

func TestNormalizer_Normalize_title(t *testing.T) {
	n := testNormalizer(t)

	tests := []struct {
		name string
		raw  Raw
		want string
	}{
		{
			name: "away listed first with competition",
			raw: Raw{
				Day: "7", MonthLabel: "אוג", Time: "19:00",
				HomeTeam: "A", AwayTeam: "B", Competition: "C",
			},
			want: "B vs A - C",
		},
		{
			name: "tentative marker prefixes everything",
			raw: Raw{
				Day: "7", MonthLabel: "אוג", Time: "19:00",
				HomeTeam: "A", AwayTeam: "B", Competition: "C", Tentative: "(TBD)",
			},
			want: "(TBD) B vs A - C",
		},
		{
			name: "teams without competition",
			raw: Raw{
				Day: "7", MonthLabel: "אוג", Time: "19:00",
				HomeTeam: "A", AwayTeam: "B",
			},
			want: "B vs A",
		},
		{
			name: "competition only",
			raw: Raw{
				Day: "7", MonthLabel: "אוג", Time: "19:00", Competition: "גמר גביע",
			},
			want: "גמר גביע",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := n.Normalize(&tt.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if fx.Title != tt.want {
				t.Errorf("Title = %q, want %q", fx.Title, tt.want)
			}
		})
	}
}

func TestNormalizer_Normalize_kickoffZoneConversion(t *testing.T) {
	n := testNormalizer(t)

	tests := []struct {
		name       string
		raw        Raw
		wantYear   int
		wantMonth  time.Month
		wantDay    int
		wantClock  string
		wantOffset string
	}{
		{
			// Israel observes IDT (UTC+3) in August.
			name:      "summer time",
			raw:       Raw{Day: "20", MonthLabel: "אוג", Time: "19:00", Competition: "ליגה"},
			wantYear:  2025,
			wantMonth: time.August,
			wantDay:   20,
			wantClock: "22:00",
		},
		{
			// IST (UTC+2) in January, which lands in the inferred next year.
			name:      "winter time next year",
			raw:       Raw{Day: "10", MonthLabel: "ינו", Time: "18:30", Competition: "ליגה"},
			wantYear:  2026,
			wantMonth: time.January,
			wantDay:   10,
			wantClock: "20:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := n.Normalize(&tt.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if fx.Kickoff.Year() != tt.wantYear || fx.Kickoff.Month() != tt.wantMonth || fx.Kickoff.Day() != tt.wantDay {
				t.Errorf("Kickoff date = %v, want %d-%v-%d", fx.Kickoff, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
			if got := fx.Kickoff.Format("15:04"); got != tt.wantClock {
				t.Errorf("Kickoff clock = %s, want %s", got, tt.wantClock)
			}
			if fx.Kickoff.Location().String() != "Asia/Jerusalem" {
				t.Errorf("Kickoff zone = %s, want Asia/Jerusalem", fx.Kickoff.Location())
			}
		})
	}
}

func TestNormalizer_Normalize_unknownMonthDefaultsToJanuary(t *testing.T) {
	n := testNormalizer(t)

	fx, err := n.Normalize(&Raw{Day: "5", MonthLabel: "???", Time: "12:00", Competition: "ליגה"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if fx.Kickoff.Month() != time.January {
		t.Errorf("Kickoff month = %v, want January fallback", fx.Kickoff.Month())
	}
}

func TestNormalizer_Normalize_skipsWithoutTitle(t *testing.T) {
	n := testNormalizer(t)

	_, err := n.Normalize(&Raw{Day: "5", MonthLabel: "אוג", Time: "12:00"})
	if !errors.Is(err, ErrNoTitle) {
		t.Errorf("Normalize() error = %v, want ErrNoTitle", err)
	}
}

func TestNormalizer_Normalize_badFields(t *testing.T) {
	n := testNormalizer(t)

	tests := []struct {
		name string
		raw  Raw
	}{
		{"bad day", Raw{Day: "seven", MonthLabel: "אוג", Time: "12:00", Competition: "ליגה"}},
		{"bad time", Raw{Day: "7", MonthLabel: "אוג", Time: "noon", Competition: "ליגה"}},
		{"hour out of range", Raw{Day: "7", MonthLabel: "אוג", Time: "25:00", Competition: "ליגה"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := n.Normalize(&tt.raw); err == nil {
				t.Error("Normalize() expected error, got nil")
			}
		})
	}
}

func TestNormalizer_Normalize_baseTitleAndKey(t *testing.T) {
	n := testNormalizer(t)

	raw := Raw{
		Day: "7", MonthLabel: "אוג", Time: "19:00",
		HomeTeam: "מכבי", AwayTeam: "ראקוב", Competition: "קונפרנס ליג",
		Tentative: "(לא סופי)",
	}
	fx, err := n.Normalize(&raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if fx.BaseTitle != "ראקוב vs מכבי" {
		t.Errorf("BaseTitle = %q, want away-first matchup without competition", fx.BaseTitle)
	}
	if fx.Key != raw.DedupeKey() {
		t.Errorf("Key = %q, want %q", fx.Key, raw.DedupeKey())
	}
	if fx.Tentative != "(לא סופי)" {
		t.Errorf("Tentative = %q, want raw marker preserved", fx.Tentative)
	}
}
