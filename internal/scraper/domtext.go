package scraper

import (
	"regexp"
	"strings"
)

// When nothing usable comes off the network, the rendered page text itself is
// mined for offer-shaped lines. This is the path of last resort and only
// recognizes a few well-known phrasings.

var (
	sekLinePattern       = regexp.MustCompile(`^(.+?),\s*SEK\s*([\d.]+)$`)
	memberLinePattern    = regexp.MustCompile(`^(.+?),\s*Medlemspris$`)
	trailingPricePattern = regexp.MustCompile(`^(.+?)\s+(\d+)[:\-]+\s*$`)
)

// ParseVisibleText scans rendered page text line by line for offers.
func ParseVisibleText(store, text string) []OfferRecord {
	var records []OfferRecord

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var name, price string
		if m := sekLinePattern.FindStringSubmatch(line); m != nil {
			name, price = m[1], m[2]+":-"
		} else if m := memberLinePattern.FindStringSubmatch(line); m != nil {
			name, price = m[1], "Medlemspris"
		} else if m := trailingPricePattern.FindStringSubmatch(line); m != nil {
			name, price = m[1], m[2]+":-"
		} else {
			continue
		}

		name = strings.TrimSpace(name)
		if n := len([]rune(name)); n <= 2 || n >= 100 {
			continue
		}

		records = append(records, OfferRecord{Store: store, Name: name, Price: price})
	}
	return records
}
