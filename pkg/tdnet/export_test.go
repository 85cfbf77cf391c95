package tdnet

import (
	"io"
	"time"

	"golang.org/x/net/html"
)

// ParsePageForTest exposes the listing-row parser to external tests without
// requiring a live TDnet endpoint.
func ParsePageForTest(r io.Reader, date time.Time) ([]DisclosureRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return parseListingPage(doc, date)
}
