// Package storage persists the sync state between runs.
//
// The state is a single JSON file holding the fingerprint of the last synced
// scrape, the sync timestamp, the created event IDs keyed by fixture, and
// the last match count. Writes go through a temp file and rename so a crash
// mid-write never leaves a truncated state behind.
package storage
