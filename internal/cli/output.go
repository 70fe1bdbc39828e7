package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ymichaeli/fixture-sync/internal/fixture"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ListingResult contains the scraped schedule to be output
type ListingResult struct {
	CheckedAt time.Time          `json:"checked_at"`
	Fixtures  []fixture.Canonical `json:"fixtures"`
}

// WriteListing writes the schedule in the specified format, ordered by
// kickoff time.
func WriteListing(w io.Writer, result *ListingResult, format OutputFormat) error {
	sort.Slice(result.Fixtures, func(i, j int) bool {
		return result.Fixtures[i].Kickoff.Before(result.Fixtures[j].Kickoff)
	})

	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *ListingResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *ListingResult) error {
	if len(result.Fixtures) == 0 {
		fmt.Fprintln(w, "No upcoming fixtures found.")
		return nil
	}

	for _, fx := range result.Fixtures {
		fmt.Fprintf(w, "%s  %s\n", fx.Kickoff.Format("Mon 02/01 15:04"), fx.Title)
		fmt.Fprintf(w, "                  %s\n", fx.Venue)
	}
	fmt.Fprintf(w, "\nTotal: %d fixtures\n", len(result.Fixtures))
	return nil
}
