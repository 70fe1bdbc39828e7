// Package scraper fetches the club website's match listing and extracts raw
// fixtures from it.
//
// The listing page loads further matches through a client-side "Load More"
// control, so a single request never returns the full schedule. Instead of
// driving a browser, the scraper issues one request per configured date
// window (today, today+120 days, ...); each window independently returns a
// materially complete listing for its range and the union, deduplicated by
// fixture key, is the complete schedule.
package scraper
