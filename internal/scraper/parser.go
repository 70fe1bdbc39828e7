package scraper

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ymichaeli/fixture-sync/internal/fixture"
)

// parseFixtureRow extracts one fixture's raw fields from a single match row.
// Every field is located structurally through the row's class layout; a
// missing required field fails the whole row so the caller can drop it and
// move on.
func (s *Scraper) parseFixtureRow(row *goquery.Selection) (*fixture.Raw, error) {
	dateCell := row.Find("div.bg-grayMediumLight").First()
	if dateCell.Length() == 0 {
		return nil, errors.New("missing date cell")
	}

	day := strings.TrimSpace(dateCell.Find("span.text-4xl").First().Text())
	if day == "" {
		return nil, errors.New("missing day of month")
	}

	monthLabel := strings.TrimSpace(dateCell.Find("span.text-xl").First().Text())
	if monthLabel == "" {
		return nil, errors.New("missing month label")
	}

	timeLabel := strings.TrimSpace(row.Find("div.text-4xl").First().Text())
	if timeLabel == "" {
		return nil, errors.New("missing kickoff time")
	}

	competition := strings.TrimSpace(row.Find(`div.h-6 span.lg\:text-xl`).First().Text())
	if competition == "" {
		return nil, errors.New("missing competition")
	}
	competition = s.rewriteCompetition(competition)

	venue := s.unknownVenue
	if venueSpan := row.Find("div.h-6 span.text-grayLight").First(); venueSpan.Length() > 0 {
		venue = strings.TrimSpace(venueSpan.Text())
	}

	// Team names occupy the second and third lg:text-xl spans, away side
	// first. A row without that layout (e.g. a cup draw placeholder) keeps
	// both empty; never just one.
	var homeTeam, awayTeam string
	if teamSpans := row.Find(`span.lg\:text-xl`); teamSpans.Length() >= 3 {
		awayTeam = s.normalizeTeam(strings.TrimSpace(teamSpans.Eq(1).Text()))
		homeTeam = s.normalizeTeam(strings.TrimSpace(teamSpans.Eq(2).Text()))
	}

	return &fixture.Raw{
		Day:         day,
		MonthLabel:  monthLabel,
		Time:        timeLabel,
		Competition: competition,
		Venue:       venue,
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		Tentative:   s.tentativeMarker(dateCell.Text()),
	}, nil
}

// tentativeMarker scans a date cell's text for the not-final token and
// returns the bracketed annotation around it. When the token appears outside
// any brackets the token itself is returned, trimmed, so the signal is never
// lost.
func (s *Scraper) tentativeMarker(dateText string) string {
	if s.tentativeToken == "" || !strings.Contains(dateText, s.tentativeToken) {
		return ""
	}
	if m := s.bracketRe.FindString(dateText); m != "" {
		return m
	}
	return strings.TrimSpace(s.tentativeToken)
}

// normalizeTeam swaps a long-form club name for its configured short form.
// Running this at parse time keeps dedupe keys consistent across windows.
func (s *Scraper) normalizeTeam(name string) string {
	if short, ok := s.clubNames[name]; ok {
		return short
	}
	return name
}

// rewriteCompetition applies the configured alias table; a label containing
// an alias key is replaced wholesale by the alias value.
func (s *Scraper) rewriteCompetition(label string) string {
	for token, replacement := range s.aliases {
		if strings.Contains(label, token) {
			return replacement
		}
	}
	return label
}
