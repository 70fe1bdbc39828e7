package fixture

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint computes a deterministic digest over a scrape batch, used only
// for change detection between runs. The batch is sorted lexicographically by
// (month label, day, time) first, so any permutation of the same fixtures
// hashes identically. The sort is reproducible, not chronological; that is
// sufficient for equality comparison.
func Fingerprint(fixtures []Raw) string {
	sorted := make([]Raw, len(fixtures))
	copy(sorted, fixtures)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.MonthLabel != b.MonthLabel {
			return a.MonthLabel < b.MonthLabel
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Time < b.Time
	})

	var sb strings.Builder
	for _, f := range sorted {
		sb.WriteString(f.Day + "-" + f.MonthLabel + "-" + f.Time + "-")
		sb.WriteString(f.HomeTeam + "-" + f.AwayTeam + "-" + f.Venue + "-")
		sb.WriteString(f.Competition + "-" + f.Tentative)
	}

	h := sha1.New()
	h.Write([]byte(sb.String()))
	return fmt.Sprintf("%x", h.Sum(nil))
}
