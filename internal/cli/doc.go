// Package cli implements the command-line interface for fixture-sync.
//
// The cli package provides the Cobra-based CLI with commands for one-shot
// syncing, scheduled watching, listing the scraped schedule (text/JSON),
// tentative-time annotation, and calendar setup. It wires the scraper,
// normalizer, reconciler and state storage together; each command is a thin
// shell around one pipeline entry point.
package cli
