// Package fixture defines the fixture records flowing through the sync
// pipeline and the logic that turns scraped fields into calendar-ready
// entries.
//
// A fixture moves through two shapes: Raw holds the fields exactly as they
// appear on the club website (display day, locale month label, UTC kickoff
// time), and Canonical holds the normalized result (zoned kickoff, display
// title, fixed duration). The package also computes the change-detection
// fingerprint over a scrape batch.
package fixture
